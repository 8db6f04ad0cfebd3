package app

import (
	"context"
	"solveit_backend/pkg/logger"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const sweepTimeout = 5 * time.Minute

// startScheduler registers the in-process daily sweep when enabled. The job fires
// at streak.sweep_at in the streak timezone.
func (a *App) startScheduler() error {
	if !a.Config.Streak.SweepEnabled {
		logger.Log.Info("In-process streak sweep disabled")
		return nil
	}

	s := gocron.NewScheduler(a.Calendar.Location())
	_, err := s.Every(1).Day().At(a.Config.Streak.SweepAt).Do(a.runScheduledSweep)
	if err != nil {
		return err
	}
	s.StartAsync()
	a.scheduler = s

	logger.Log.Info("Streak sweep scheduled",
		zap.String("at", a.Config.Streak.SweepAt),
		zap.String("timezone", a.Calendar.Location().String()),
	)
	return nil
}

func (a *App) stopScheduler() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}

// runScheduledSweep logs failures instead of returning them; the next day's run
// retries.
func (a *App) runScheduledSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := a.services.sweep.RunToday(ctx); err != nil {
		logger.Log.Error("Scheduled streak sweep failed", zap.Error(err))
	}
}
