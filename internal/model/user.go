package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a staff account, independent of any restaurant.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:128;not null"`
	Email        string    `gorm:"uniqueIndex;size:256;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	PushToken    *string   `gorm:"size:256"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Token returns the push token or "" when none is registered.
func (u *User) Token() string {
	if u.PushToken == nil {
		return ""
	}
	return *u.PushToken
}
