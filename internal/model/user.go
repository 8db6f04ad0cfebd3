package model

import (
	"time"
)

// swagger:model User
type User struct {
	UUIDBase
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:100" json:"-"`

	// Streak aggregate. Only the streak service writes these columns.
	CurrentStreak  int        `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak  int        `gorm:"not null;default:0" json:"longestStreak"`
	LastActiveDate *time.Time `gorm:"type:date;index" json:"lastActiveDate,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is what auth endpoints return.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
