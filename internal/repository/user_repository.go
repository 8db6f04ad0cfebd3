package repository

import (
	"context"
	"solveit_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, err
}

// EnsureExists inserts a user with zero counters unless one with the same id
// already exists. It never modifies an existing row.
func (r *UserRepository) EnsureExists(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user).Error
}

// LockByID loads the user and holds a row lock until the surrounding transaction
// ends. Drivers without row locks (SQLite) serialise writers anyway.
func (r *UserRepository) LockByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&user).Error
	return &user, err
}

// UpdateStreak persists the streak columns only.
func (r *UserRepository) UpdateStreak(ctx context.Context, id string, current, longest int, lastActive *time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_streak":   current,
			"longest_streak":   longest,
			"last_active_date": lastActive,
		}).Error
}

// ResetLapsedStreaks zeroes current_streak for every user last active before
// cutoff in a single statement, so it never overwrites a concurrent per-user write
// with a stale value.
func (r *UserRepository) ResetLapsedStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("last_active_date < ? AND current_streak > ?", cutoff, 0).
		Update("current_streak", 0)
	return result.RowsAffected, result.Error
}
