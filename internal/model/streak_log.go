package model

import (
	"time"
)

// StreakLog marks that a user's streak was already evaluated for a day.
// (user_id, date) is unique; rows are only ever inserted.
// swagger:model StreakLog
type StreakLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_streak_log_user_date" json:"userId"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_streak_log_user_date" json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func (StreakLog) TableName() string {
	return "streak_logs"
}
