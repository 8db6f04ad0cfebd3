package model

import (
	"time"
)

type ProgressStatus string

const (
	StatusPending  ProgressStatus = "PENDING"
	StatusDone     ProgressStatus = "DONE"
	StatusRevising ProgressStatus = "REVISING"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusRevising:
		return true
	}
	return false
}

// Progress is a user's status on one question.
// swagger:model Progress
type Progress struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_question" json:"userId"`
	QuestionID  string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_question;index" json:"questionId"`
	Status      ProgressStatus `gorm:"size:16;not null;default:'PENDING'" json:"status"`
	CompletedAt *time.Time     `json:"completedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (Progress) TableName() string {
	return "progress"
}
