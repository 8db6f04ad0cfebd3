package service

import (
	"context"
	"solveit_backend/internal/model"
	"solveit_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatsTopicMastery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.company(t, "Acme")

	topics := map[string]int{"A": 3, "B": 5, "C": 1}
	for _, topic := range []string{"A", "B", "C"} {
		for i := 0; i < topics[topic]; i++ {
			q := f.question(t, c.ID, topic+"-question-"+string(rune('a'+i)), topic)
			_, err := f.progressSvc.UpdateStatus(ctx, "u-1", q.ID, model.StatusDone)
			require.NoError(t, err)
		}
	}
	revise := f.question(t, c.ID, "Hard One", "D")
	_, err := f.progressSvc.UpdateStatus(ctx, "u-1", revise.ID, model.StatusRevising)
	require.NoError(t, err)

	stats, err := f.stats.GetStats(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, 9, stats.TotalSolved)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, []model.TopicCount{{Name: "B", Value: 5}, {Name: "A", Value: 3}, {Name: "C", Value: 1}}, stats.TopicMastery)
	require.Len(t, stats.RevisingQuestions, 1)
	assert.Equal(t, "Hard One", stats.RevisingQuestions[0].Title)
}

func TestGetStatsShowsLapsedStreakAsZero(t *testing.T) {
	f := newFixture(t)
	f.user(t, "u-1", 4, 9, dayPtr(day0.AddDays(-3)))

	stats, err := f.stats.GetStats(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 9, stats.LongestStreak)
	assert.Equal(t, 4, f.reload(t, "u-1").CurrentStreak, "reads never write")
}

func TestGetStatsKeepsYesterdaysStreak(t *testing.T) {
	f := newFixture(t)
	f.user(t, "u-1", 4, 4, dayPtr(day0.AddDays(-1)))

	stats, err := f.stats.GetStats(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.CurrentStreak)
}

func TestGetStatsEmptyUser(t *testing.T) {
	f := newFixture(t)
	f.user(t, "u-1", 0, 0, nil)

	stats, err := f.stats.GetStats(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSolved)
	assert.Empty(t, stats.TopicMastery)
	assert.NotNil(t, stats.RevisingQuestions)
}

func TestGetStatsUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.stats.GetStats(context.Background(), "nobody")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
