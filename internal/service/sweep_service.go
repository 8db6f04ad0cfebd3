package service

import (
	"context"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/streak"
	"solveit_backend/pkg/logger"
	"solveit_backend/pkg/monitoring"
	"solveit_backend/pkg/tracing"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const sweepGuardTTL = 48 * time.Hour

// SweepService zeroes streaks that lapsed before a given day.
type SweepService struct {
	UserRepo *repository.UserRepository
	// Redis is optional. When set it keeps the sweep to one run per day across
	// instances and triggers.
	Redis    *redis.Client
	Calendar *streak.Calendar
}

func NewSweepService(userRepo *repository.UserRepository, rdb *redis.Client, calendar *streak.Calendar) *SweepService {
	return &SweepService{
		UserRepo: userRepo,
		Redis:    rdb,
		Calendar: calendar,
	}
}

// RunToday sweeps as of the current day in the streak timezone.
func (s *SweepService) RunToday(ctx context.Context) (*model.SweepResult, error) {
	return s.Run(ctx, s.Calendar.Today())
}

// Run resets current_streak to 0 for every user whose last active day is before
// asOf - 1. Longest streaks and last active days are left alone, so running it
// again for the same day changes nothing.
func (s *SweepService) Run(ctx context.Context, asOf streak.Day) (*model.SweepResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "streak.DailyResetSweep")
	defer span.End()
	span.SetAttributes(attribute.String("day", asOf.String()))

	result := &model.SweepResult{Day: asOf.String()}

	acquired := s.acquireGuard(ctx, asOf)
	if !acquired {
		logger.Log.Info("Daily streak sweep already ran", zap.String("day", asOf.String()))
		monitoring.SweepRuns.WithLabelValues("skipped").Inc()
		result.Skipped = true
		return result, nil
	}

	cutoff := streak.SweepCutoff(asOf)
	count, err := s.UserRepo.ResetLapsedStreaks(ctx, cutoff.Time())
	if err != nil {
		s.releaseGuard(ctx, asOf)
		monitoring.SweepRuns.WithLabelValues("failed").Inc()
		logger.Log.Error("Daily streak sweep failed",
			zap.String("day", asOf.String()),
			zap.Error(err),
		)
		return nil, storageError("reset lapsed streaks", err)
	}

	monitoring.SweepRuns.WithLabelValues("completed").Inc()
	monitoring.SweepResets.Add(float64(count))
	span.SetAttributes(attribute.Int64("reset_count", count))
	logger.Log.Info("Daily streak sweep completed",
		zap.String("day", asOf.String()),
		zap.String("cutoff", cutoff.String()),
		zap.Int64("reset_count", count),
	)

	result.ResetCount = count
	return result, nil
}

func sweepGuardKey(day streak.Day) string {
	return "solveit:sweep:" + day.String()
}

// acquireGuard reports whether this call should run the sweep. Without Redis, or
// when Redis fails, it always says yes.
func (s *SweepService) acquireGuard(ctx context.Context, day streak.Day) bool {
	if s.Redis == nil {
		return true
	}
	ok, err := s.Redis.SetNX(ctx, sweepGuardKey(day), time.Now().Unix(), sweepGuardTTL).Result()
	if err != nil {
		logger.Log.Warn("Sweep guard unavailable, running sweep anyway",
			zap.String("day", day.String()),
			zap.Error(err),
		)
		return true
	}
	return ok
}

// releaseGuard lets the next trigger retry a failed sweep.
func (s *SweepService) releaseGuard(ctx context.Context, day streak.Day) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, sweepGuardKey(day)).Err(); err != nil {
		logger.Log.Warn("Failed to release sweep guard", zap.String("day", day.String()), zap.Error(err))
	}
}
