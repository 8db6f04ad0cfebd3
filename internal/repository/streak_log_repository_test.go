package repository

import (
	"context"
	"solveit_backend/internal/config"
	"solveit_backend/internal/model"
	"solveit_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&model.User{UUIDBase: model.UUIDBase{ID: id}, Name: id, Email: id + "@example.com"}).Error)
}

func TestTryCreateOnlyFirstTransactionWins(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u-1")
	repo := NewStreakLogRepository(db)
	ctx := context.Background()
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	var results []bool
	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			won, err := repo.WithTx(tx).TryCreate(ctx, "u-1", day)
			results = append(results, won)
			return err
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []bool{true, false}, results)
	count, err := repo.CountByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTryCreateAfterRollbackWinsAgain(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u-1")
	repo := NewStreakLogRepository(db)
	ctx := context.Background()
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	tx := db.Begin()
	won, err := repo.WithTx(tx).TryCreate(ctx, "u-1", day)
	require.NoError(t, err)
	assert.True(t, won)
	require.NoError(t, tx.Rollback().Error)

	won, err = repo.TryCreate(ctx, "u-1", day)
	require.NoError(t, err)
	assert.True(t, won, "a rolled back entry does not claim the day")

	won, err = repo.TryCreate(ctx, "u-1", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, won, "the next day is a separate entry")
}
