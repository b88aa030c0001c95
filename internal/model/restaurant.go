package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant is a tenant. Staff join it with the current invite code.
type Restaurant struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Name       string    `gorm:"size:128;not null"`
	InviteCode string    `gorm:"uniqueIndex;size:16;not null"`
	OwnerID    string    `gorm:"size:36;not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Membership binds a user to a restaurant with a single role.
type Membership struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"size:36;not null;uniqueIndex:idx_member_user_restaurant,priority:1"`
	RestaurantID string    `gorm:"size:36;not null;uniqueIndex:idx_member_user_restaurant,priority:2;index:idx_member_restaurant_role,priority:1"`
	Role         Role      `gorm:"size:16;not null;index:idx_member_restaurant_role,priority:2"`
	IsOnline     bool      `gorm:"not null"`
	LastSeen     time.Time `gorm:"not null"`
	JoinedAt     time.Time `gorm:"not null"`
}

func (Membership) TableName() string {
	return "restaurant_members"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
