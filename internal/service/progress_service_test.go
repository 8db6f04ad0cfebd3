package service

import (
	"context"
	"errors"
	"solveit_backend/internal/model"
	"solveit_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpdateStatusDoneRecordsStreak(t *testing.T) {
	f := newFixture(t)
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")

	update, err := f.progressSvc.UpdateStatus(context.Background(), "demo-user-id", q.ID, model.StatusDone)
	require.NoError(t, err)

	assert.Equal(t, model.StatusDone, update.Progress.Status)
	require.NotNil(t, update.Progress.CompletedAt)
	assert.Equal(t, 1, update.Streak.CurrentStreak)
	assert.Equal(t, 1, update.Streak.LongestStreak)

	u := f.reload(t, "demo-user-id")
	assert.Equal(t, "demo-user-id@guest.local", u.Email)
	assert.EqualValues(t, 1, f.ledgerCount(t, "demo-user-id"))
}

func TestUpdateStatusCompletedAtLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")

	first, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusDone)
	require.NoError(t, err)
	completedAt := *first.Progress.CompletedAt

	f.setToday(day0.AddDays(1))
	again, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusDone)
	require.NoError(t, err)
	require.NotNil(t, again.Progress.CompletedAt)
	assert.True(t, completedAt.Equal(*again.Progress.CompletedAt), "staying DONE keeps the completion time")

	revising, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusRevising)
	require.NoError(t, err)
	assert.Nil(t, revising.Progress.CompletedAt)
	assert.Equal(t, 2, revising.Streak.CurrentStreak)
}

func TestUpdateStatusToggleSameDayCountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.company(t, "Acme")
	q1 := f.question(t, c.ID, "Two Sum", "Array")
	q2 := f.question(t, c.ID, "LRU Cache", "Design")

	for _, step := range []struct {
		question string
		status   model.ProgressStatus
	}{
		{q1.ID, model.StatusDone},
		{q1.ID, model.StatusPending},
		{q1.ID, model.StatusDone},
		{q2.ID, model.StatusDone},
	} {
		update, err := f.progressSvc.UpdateStatus(ctx, "u-1", step.question, step.status)
		require.NoError(t, err)
		assert.Equal(t, 1, update.Streak.CurrentStreak)
	}

	assert.EqualValues(t, 1, f.ledgerCount(t, "u-1"))
}

func TestUpdateStatusAcrossDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")

	want := []struct {
		offset           int
		current, longest int
	}{
		{0, 1, 1},
		{1, 2, 2},
		{2, 3, 3},
		{5, 1, 3},
	}
	for _, w := range want {
		f.setToday(day0.AddDays(w.offset))
		update, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusDone)
		require.NoError(t, err)
		assert.Equal(t, w.current, update.Streak.CurrentStreak, "day +%d", w.offset)
		assert.Equal(t, w.longest, update.Streak.LongestStreak, "day +%d", w.offset)
	}
}

func TestUpdateStatusNonDoneShowsDisplayStreak(t *testing.T) {
	f := newFixture(t)
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")
	f.user(t, "u-1", 5, 5, dayPtr(day0.AddDays(-4)))

	update, err := f.progressSvc.UpdateStatus(context.Background(), "u-1", q.ID, model.StatusRevising)
	require.NoError(t, err)
	assert.Equal(t, 0, update.Streak.CurrentStreak)
	assert.Equal(t, 5, update.Streak.LongestStreak)
	assert.EqualValues(t, 0, f.ledgerCount(t, "u-1"))
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")

	_, err := f.progressSvc.UpdateStatus(context.Background(), "u-1", q.ID, model.ProgressStatus("SOLVED"))
	assert.ErrorIs(t, err, util.ErrInvalidStatus)

	_, err = f.progressSvc.UpdateStatus(context.Background(), "u-1", "missing-question", model.StatusDone)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestUpdateStatusRollsBackWhenStreakWriteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")

	const hook = "test:fail_user_update"
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register(hook, func(db *gorm.DB) {
		if db.Statement.Table == "users" {
			db.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusDone)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrStorageUnavailable)

	assert.EqualValues(t, 0, f.ledgerCount(t, "u-1"), "ledger entry rolled back")
	_, err = f.progress.FindByUserAndQuestion(ctx, "u-1", q.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "progress record rolled back")

	require.NoError(t, f.db.Callback().Update().Remove(hook))

	update, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, 1, update.Streak.CurrentStreak)
	assert.Equal(t, 1, update.Streak.LongestStreak)
	assert.EqualValues(t, 1, f.ledgerCount(t, "u-1"))
	assert.Equal(t, model.StatusDone, update.Progress.Status)
}
