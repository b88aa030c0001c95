package model

import "time"

// RateLimitAction names the operation an attempt is counted against.
type RateLimitAction string

const (
	ActionLogin        RateLimitAction = "login"
	ActionSignup       RateLimitAction = "signup"
	ActionMessage      RateLimitAction = "message"
	ActionNotification RateLimitAction = "notification"
)

// RateLimitRecord is one attempt inside a sliding window.
type RateLimitRecord struct {
	ID         int64           `gorm:"primaryKey"`
	Identifier string          `gorm:"size:256;not null;index:idx_rate_identifier_action,priority:1"`
	Action     RateLimitAction `gorm:"size:16;not null;index:idx_rate_identifier_action,priority:2"`
	Timestamp  time.Time       `gorm:"not null;index"`
}
