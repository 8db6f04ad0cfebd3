package repository

import (
	"context"
	"solveit_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakLogRepository struct {
	DB *gorm.DB
}

func NewStreakLogRepository(db *gorm.DB) *StreakLogRepository {
	return &StreakLogRepository{DB: db}
}

func (r *StreakLogRepository) WithTx(tx *gorm.DB) *StreakLogRepository {
	return &StreakLogRepository{DB: tx}
}

// TryCreate inserts the (user, day) entry. It reports false when the entry already
// existed, which is how concurrent callers learn they lost the race.
func (r *StreakLogRepository) TryCreate(ctx context.Context, userID string, day time.Time) (bool, error) {
	entry := &model.StreakLog{UserID: userID, Date: day}
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *StreakLogRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.StreakLog{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
