package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType is a quick-send template shown as a button in the client.
type NotificationType struct {
	ID           string `gorm:"primaryKey;size:36"`
	RestaurantID string `gorm:"size:36;not null;index"`
	Title        string `gorm:"size:128;not null"`
	Icon         string `gorm:"size:16;not null"`
	Color        string `gorm:"size:16;not null"`
	Order        int    `gorm:"column:sort_order;not null"`
}

func (t *NotificationType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
