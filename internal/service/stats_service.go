package service

import (
	"context"
	"errors"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/streak"
	"solveit_backend/internal/util"

	"gorm.io/gorm"
)

type StatsService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	Streak       *StreakService
	Calendar     *streak.Calendar
}

func NewStatsService(userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository, streakService *StreakService, calendar *streak.Calendar) *StatsService {
	return &StatsService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		Streak:       streakService,
		Calendar:     calendar,
	}
}

// GetStats builds the dashboard for userID. It only reads: a lapsed streak shows as
// 0 here while the stored counter waits for the daily sweep.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	records, err := s.ProgressRepo.ListByStatus(ctx, userID, model.StatusDone, model.StatusRevising)
	if err != nil {
		return nil, err
	}

	var topics []string
	solved := 0
	revising := make([]model.Question, 0)
	for _, record := range records {
		switch record.Status {
		case model.StatusDone:
			solved++
			if record.Question != nil {
				topics = append(topics, record.Question.Topic)
			}
		case model.StatusRevising:
			if record.Question != nil {
				revising = append(revising, *record.Question)
			}
		}
	}

	return &model.UserStats{
		CurrentStreak:     s.Streak.DisplayStreak(user, s.Calendar.Today()),
		LongestStreak:     user.LongestStreak,
		TotalSolved:       solved,
		TopicMastery:      streak.TallyTopics(topics, util.TopicMasteryLimit),
		RevisingQuestions: revising,
	}, nil
}
