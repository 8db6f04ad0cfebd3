package service

import (
	"context"
	"errors"
	"fmt"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/streak"
	"solveit_backend/internal/util"
	"solveit_backend/pkg/logger"
	"solveit_backend/pkg/monitoring"
	"solveit_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StreakService owns every write to the streak columns of a user.
type StreakService struct {
	DB            *gorm.DB
	UserRepo      *repository.UserRepository
	StreakLogRepo *repository.StreakLogRepository
	ProgressRepo  *repository.ProgressRepository
	Calendar      *streak.Calendar
}

func NewStreakService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	streakLogRepo *repository.StreakLogRepository,
	progressRepo *repository.ProgressRepository,
	calendar *streak.Calendar,
) *StreakService {
	return &StreakService{
		DB:            db,
		UserRepo:      userRepo,
		StreakLogRepo: streakLogRepo,
		ProgressRepo:  progressRepo,
		Calendar:      calendar,
	}
}

// RecordCompletion counts a DONE question towards the user's streak for day in its
// own transaction. The first qualifying event of a day advances the streak, every
// later one (including concurrent ones) is a no-op that returns the stored counters.
func (s *StreakService) RecordCompletion(ctx context.Context, userID, questionID string, day streak.Day) (*model.StreakCounters, error) {
	var counters *model.StreakCounters
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		counters, err = s.RecordCompletionTx(ctx, tx, userID, questionID, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	return counters, nil
}

// RecordCompletionTx is RecordCompletion inside the caller's transaction. The ledger
// insert decides which caller owns the day; only that caller touches the counters.
func (s *StreakService) RecordCompletionTx(ctx context.Context, tx *gorm.DB, userID, questionID string, day streak.Day) (*model.StreakCounters, error) {
	ctx, span := tracing.Tracer.Start(ctx, "streak.RecordCompletion")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("day", day.String()),
	)

	users := s.UserRepo.WithTx(tx)
	logs := s.StreakLogRepo.WithTx(tx)
	progress := s.ProgressRepo.WithTx(tx)

	record, err := progress.FindByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotStreakQualifying
		}
		return nil, storageError("load progress", err)
	}
	if record.Status != model.StatusDone {
		return nil, util.ErrNotStreakQualifying
	}

	if err := users.EnsureExists(ctx, newGuestUser(userID)); err != nil {
		return nil, storageError("ensure user", err)
	}

	won, err := logs.TryCreate(ctx, userID, day.Time())
	if err != nil {
		return nil, storageError("insert streak log", err)
	}

	user, err := users.LockByID(ctx, userID)
	if err != nil {
		return nil, storageError("lock user", err)
	}

	if !won {
		monitoring.StreakTransitions.WithLabelValues(string(streak.TransitionDuplicate)).Inc()
		span.SetAttributes(attribute.String("transition", string(streak.TransitionDuplicate)))
		return countersOf(user), nil
	}

	next, transition := streak.Advance(StateOf(user), day)
	monitoring.StreakTransitions.WithLabelValues(string(transition)).Inc()
	span.SetAttributes(attribute.String("transition", string(transition)))

	if transition != streak.TransitionUnchanged {
		lastActive := next.LastActive.Time()
		if err := users.UpdateStreak(ctx, userID, next.CurrentStreak, next.LongestStreak, &lastActive); err != nil {
			return nil, storageError("update streak", err)
		}
		user.CurrentStreak = next.CurrentStreak
		user.LongestStreak = next.LongestStreak
		user.LastActiveDate = &lastActive
	}

	logger.Log.Debug("Streak recorded",
		zap.String("user_id", userID),
		zap.String("day", day.String()),
		zap.String("transition", string(transition)),
		zap.Int("current_streak", user.CurrentStreak),
	)

	return countersOf(user), nil
}

// DisplayStreak is the streak a reader should see on today. It never writes.
func (s *StreakService) DisplayStreak(user *model.User, today streak.Day) int {
	return streak.Display(StateOf(user), today)
}

// StateOf extracts the streak aggregate from a user row.
func StateOf(user *model.User) streak.State {
	state := streak.State{
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
	}
	if user.LastActiveDate != nil {
		day := streak.FromStored(*user.LastActiveDate)
		state.LastActive = &day
	}
	return state
}

func countersOf(user *model.User) *model.StreakCounters {
	return &model.StreakCounters{
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
	}
}

// newGuestUser is the row created for an id seen for the first time, as happens in
// guest mode. The placeholder email keeps the unique index satisfied.
func newGuestUser(userID string) *model.User {
	return &model.User{
		UUIDBase: model.UUIDBase{ID: userID},
		Name:     "Guest",
		Email:    userID + "@guest.local",
	}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, util.ErrStorageUnavailable, err)
}
