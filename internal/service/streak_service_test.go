package service

import (
	"context"
	"solveit_backend/internal/streak"
	"solveit_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = streak.NewDay(2024, time.March, 10)

func setupCompletion(t *testing.T) (*fixture, string, string) {
	f := newFixture(t)
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")
	f.markDone(t, "u-1", q.ID)
	return f, "u-1", q.ID
}

func TestRecordCompletionStartsStreak(t *testing.T) {
	f, userID, questionID := setupCompletion(t)

	counters, err := f.streak.RecordCompletion(context.Background(), userID, questionID, day0)
	require.NoError(t, err)

	assert.Equal(t, 1, counters.CurrentStreak)
	assert.Equal(t, 1, counters.LongestStreak)

	u := f.reload(t, userID)
	require.NotNil(t, u.LastActiveDate)
	assert.Equal(t, day0.String(), streak.FromStored(*u.LastActiveDate).String())
	assert.EqualValues(t, 1, f.ledgerCount(t, userID))
}

func TestRecordCompletionSameDayIsIdempotent(t *testing.T) {
	f, userID, questionID := setupCompletion(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		counters, err := f.streak.RecordCompletion(ctx, userID, questionID, day0)
		require.NoError(t, err)
		assert.Equal(t, 1, counters.CurrentStreak)
	}

	assert.EqualValues(t, 1, f.ledgerCount(t, userID))
	assert.Equal(t, 1, f.reload(t, userID).CurrentStreak)
}

func TestRecordCompletionConsecutiveDays(t *testing.T) {
	f, userID, questionID := setupCompletion(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		counters, err := f.streak.RecordCompletion(ctx, userID, questionID, day0.AddDays(i))
		require.NoError(t, err)
		assert.Equal(t, i+1, counters.CurrentStreak)
		assert.Equal(t, i+1, counters.LongestStreak)
	}
	assert.EqualValues(t, 4, f.ledgerCount(t, userID))
}

func TestRecordCompletionGapResets(t *testing.T) {
	f, userID, questionID := setupCompletion(t)
	ctx := context.Background()

	_, err := f.streak.RecordCompletion(ctx, userID, questionID, day0)
	require.NoError(t, err)
	_, err = f.streak.RecordCompletion(ctx, userID, questionID, day0.AddDays(1))
	require.NoError(t, err)

	counters, err := f.streak.RecordCompletion(ctx, userID, questionID, day0.AddDays(4))
	require.NoError(t, err)
	assert.Equal(t, 1, counters.CurrentStreak)
	assert.Equal(t, 2, counters.LongestStreak)
}

func TestRecordCompletionEarlierDayLeavesCounters(t *testing.T) {
	f, userID, questionID := setupCompletion(t)
	ctx := context.Background()

	_, err := f.streak.RecordCompletion(ctx, userID, questionID, day0)
	require.NoError(t, err)

	counters, err := f.streak.RecordCompletion(ctx, userID, questionID, day0.AddDays(-3))
	require.NoError(t, err)
	assert.Equal(t, 1, counters.CurrentStreak)

	u := f.reload(t, userID)
	assert.Equal(t, day0.String(), streak.FromStored(*u.LastActiveDate).String())
}

func TestRecordCompletionRequiresDoneProgress(t *testing.T) {
	f := newFixture(t)
	c := f.company(t, "Acme")
	q := f.question(t, c.ID, "Two Sum", "Array")

	_, err := f.streak.RecordCompletion(context.Background(), "u-2", q.ID, day0)
	assert.ErrorIs(t, err, util.ErrNotStreakQualifying)
	assert.EqualValues(t, 0, f.ledgerCount(t, "u-2"))
}

// SQLite runs with a single connection, so these callers are serialised. The test
// covers repeated same-day callers; the ledger insert itself is covered in the
// repository tests.
func TestRecordCompletionRepeatedCallersSameDay(t *testing.T) {
	f, userID, questionID := setupCompletion(t)

	const callers = 12
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.streak.RecordCompletion(context.Background(), userID, questionID, day0)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, f.ledgerCount(t, userID))
	u := f.reload(t, userID)
	assert.Equal(t, 1, u.CurrentStreak)
	assert.Equal(t, 1, u.LongestStreak)
}

func TestDisplayStreakDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u-3", 4, 6, dayPtr(day0))

	assert.Equal(t, 4, f.streak.DisplayStreak(u, day0.AddDays(1)))
	assert.Equal(t, 0, f.streak.DisplayStreak(u, day0.AddDays(2)))
	assert.Equal(t, 4, f.reload(t, "u-3").CurrentStreak)
}
