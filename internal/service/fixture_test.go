package service

import (
	"context"
	"solveit_backend/internal/config"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/streak"
	"solveit_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture is a fully wired service layer over a private in-memory database.
type fixture struct {
	db *gorm.DB

	users     *repository.UserRepository
	logs      *repository.StreakLogRepository
	companies *repository.CompanyRepository
	questions *repository.QuestionRepository
	progress  *repository.ProgressRepository

	streak      *StreakService
	sweep       *SweepService
	stats       *StatsService
	progressSvc *ProgressService
	companySvc  *CompanyService
	auth        *AuthService
	ingest      *IngestService
}

var testNow = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:        db,
		users:     repository.NewUserRepository(db),
		logs:      repository.NewStreakLogRepository(db),
		companies: repository.NewCompanyRepository(db),
		questions: repository.NewQuestionRepository(db),
		progress:  repository.NewProgressRepository(db),
	}

	calendar := streak.NewFixedCalendar(time.UTC, testNow)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "service-test-secret", ExpireTime: time.Hour}}

	f.streak = NewStreakService(db, f.users, f.logs, f.progress, calendar)
	f.sweep = NewSweepService(f.users, nil, calendar)
	f.stats = NewStatsService(f.users, f.progress, f.streak, calendar)
	f.progressSvc = NewProgressService(db, f.users, f.questions, f.progress, f.streak, calendar)
	f.companySvc = NewCompanyService(f.companies, f.questions, f.progress)
	f.auth = NewAuthService(f.users, cfg)
	f.ingest = NewIngestService(f.companies, f.questions)
	return f
}

// setToday moves every clock of the fixture to the given day at 15:00 UTC.
func (f *fixture) setToday(day streak.Day) {
	calendar := streak.NewFixedCalendar(time.UTC, day.Time().Add(15*time.Hour))
	f.streak.Calendar = calendar
	f.sweep.Calendar = calendar
	f.stats.Calendar = calendar
	f.progressSvc.Calendar = calendar
}

func (f *fixture) company(t *testing.T, name string) *model.Company {
	t.Helper()
	c, err := f.companies.Upsert(context.Background(), name, Slugify(name))
	require.NoError(t, err)
	return c
}

func (f *fixture) question(t *testing.T, companyID, title, topic string) *model.Question {
	t.Helper()
	q := model.Question{
		CompanyID:   companyID,
		Title:       title,
		Topic:       topic,
		Frequency:   "50.0",
		LeetcodeURL: "https://leetcode.com/problems/" + Slugify(title),
	}
	_, err := f.questions.UpsertBatch(context.Background(), []model.Question{q})
	require.NoError(t, err)

	var stored model.Question
	require.NoError(t, f.db.Where("company_id = ? AND title = ?", companyID, title).First(&stored).Error)
	return &stored
}

// user stores a user with the given streak state.
func (f *fixture) user(t *testing.T, id string, current, longest int, lastActive *streak.Day) *model.User {
	t.Helper()
	u := &model.User{
		UUIDBase:      model.UUIDBase{ID: id},
		Name:          "Test " + id,
		Email:         id + "@example.com",
		CurrentStreak: current,
		LongestStreak: longest,
	}
	if lastActive != nil {
		at := lastActive.Time()
		u.LastActiveDate = &at
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// markDone writes a DONE progress record without going through the streak path.
func (f *fixture) markDone(t *testing.T, userID, questionID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.users.EnsureExists(ctx, newGuestUser(userID)))
	p, err := f.progress.LockOrCreate(ctx, userID, questionID)
	require.NoError(t, err)
	now := testNow
	p.Status = model.StatusDone
	p.CompletedAt = &now
	require.NoError(t, f.progress.Save(ctx, p))
}

func (f *fixture) reload(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) ledgerCount(t *testing.T, userID string) int64 {
	t.Helper()
	n, err := f.logs.CountByUser(context.Background(), userID)
	require.NoError(t, err)
	return n
}

func dayPtr(d streak.Day) *streak.Day { return &d }
