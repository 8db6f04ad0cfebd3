package service

import (
	"context"
	"errors"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/streak"
	"solveit_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	UserRepo     *repository.UserRepository
	QuestionRepo *repository.QuestionRepository
	ProgressRepo *repository.ProgressRepository
	Streak       *StreakService
	Calendar     *streak.Calendar
}

func NewProgressService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	progressRepo *repository.ProgressRepository,
	streakService *StreakService,
	calendar *streak.Calendar,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		UserRepo:     userRepo,
		QuestionRepo: questionRepo,
		ProgressRepo: progressRepo,
		Streak:       streakService,
		Calendar:     calendar,
	}
}

// UpdateStatus sets the user's status on a question. Marking a question DONE also
// records today's completion for the streak, in the same transaction.
func (s *ProgressService) UpdateStatus(ctx context.Context, userID, questionID string, status model.ProgressStatus) (*model.ProgressUpdate, error) {
	if !status.Valid() {
		return nil, util.ErrInvalidStatus
	}

	if _, err := s.QuestionRepo.FindByID(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, storageError("load question", err)
	}

	now := s.Calendar.Now()
	today := s.Calendar.DayOf(now)
	update := &model.ProgressUpdate{}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		progress := s.ProgressRepo.WithTx(tx)

		if err := users.EnsureExists(ctx, newGuestUser(userID)); err != nil {
			return storageError("ensure user", err)
		}

		record, err := progress.LockOrCreate(ctx, userID, questionID)
		if err != nil {
			return storageError("load progress", err)
		}

		record.CompletedAt = nextCompletedAt(record, status, now)
		record.Status = status
		if err := progress.Save(ctx, record); err != nil {
			return storageError("save progress", err)
		}
		update.Progress = record

		if status == model.StatusDone {
			counters, err := s.Streak.RecordCompletionTx(ctx, tx, userID, questionID, today)
			if err != nil {
				return err
			}
			update.Streak = *counters
			return nil
		}

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			return storageError("load user", err)
		}
		update.Streak = model.StreakCounters{
			CurrentStreak: s.Streak.DisplayStreak(user, today),
			LongestStreak: user.LongestStreak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return update, nil
}

// nextCompletedAt is set on the move into DONE, kept while the record stays DONE and
// cleared when it leaves DONE.
func nextCompletedAt(record *model.Progress, status model.ProgressStatus, now time.Time) *time.Time {
	if status != model.StatusDone {
		return nil
	}
	if record.Status == model.StatusDone && record.CompletedAt != nil {
		return record.CompletedAt
	}
	t := now
	return &t
}
