package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority tells the recipient how quickly a notification needs attention.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityUrgent   Priority = "urgent"
	PriorityQuestion Priority = "question"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityUrgent, PriorityQuestion:
		return true
	}
	return false
}

// Category groups notifications by subject.
type Category string

const (
	CategoryOrder Category = "order"
	CategoryHelp  Category = "help"
	CategoryInfo  Category = "info"
	CategoryStock Category = "stock"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryOrder, CategoryHelp, CategoryInfo, CategoryStock:
		return true
	}
	return false
}

// Notification is an append-only message between staff members. After insert only
// the read set and PushSent change.
//
// ToUserID and ToRole are the persisted form of a Target; exactly one of them is
// non-nil. Use NewNotification and Target instead of touching them directly.
type Notification struct {
	ID           string    `gorm:"primaryKey;size:36"`
	RestaurantID string    `gorm:"size:36;not null;index;index:idx_notifications_role,priority:1;index:idx_notifications_priority,priority:1;index:idx_notifications_to_user,priority:1"`
	FromUserID   string    `gorm:"size:36;not null"`
	ToUserID     *string   `gorm:"size:36;index:idx_notifications_to_user,priority:2"`
	ToRole       *string   `gorm:"size:16;index:idx_notifications_role,priority:2"`
	Title        string    `gorm:"size:256;not null"`
	Message      *string   `gorm:"size:1024"`
	Priority     Priority  `gorm:"size:16;not null;index:idx_notifications_priority,priority:2"`
	Category     Category  `gorm:"size:16;not null"`
	PushSent     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;index"`

	Reads []NotificationRead `gorm:"foreignKey:NotificationID"`
}

// NotificationRead records that a user acknowledged a notification. The composite
// key makes a repeated read a no-op.
type NotificationRead struct {
	NotificationID string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"primaryKey;size:36"`
	ReadAt         time.Time `gorm:"not null"`
}

// NewNotification builds an unsent, unread notification for target.
func NewNotification(restaurantID, fromUserID string, target Target, title string, message *string, priority Priority, category Category) *Notification {
	n := &Notification{
		RestaurantID: restaurantID,
		FromUserID:   fromUserID,
		Title:        title,
		Message:      message,
		Priority:     priority,
		Category:     category,
	}
	switch target.Kind() {
	case TargetDirect:
		id := target.UserID()
		n.ToUserID = &id
	case TargetRole:
		role := string(target.Role())
		n.ToRole = &role
	case TargetBroadcast:
		all := RoleAll
		n.ToRole = &all
	}
	return n
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Target rebuilds the addressing variant from the stored columns.
func (n *Notification) Target() Target {
	switch {
	case n.ToUserID != nil:
		return Direct(*n.ToUserID)
	case n.ToRole != nil && *n.ToRole == RoleAll:
		return Broadcast()
	case n.ToRole != nil:
		return ForRole(Role(*n.ToRole))
	}
	return Target{}
}

// ReadBy returns the ids of users who have read the notification, in read order.
// Reads must be loaded.
func (n *Notification) ReadBy() []string {
	ids := make([]string, 0, len(n.Reads))
	for _, r := range n.Reads {
		ids = append(ids, r.UserID)
	}
	return ids
}

// IsReadBy reports whether userID is in the loaded read set.
func (n *Notification) IsReadBy(userID string) bool {
	for _, r := range n.Reads {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// MessageText returns the optional message or "".
func (n *Notification) MessageText() string {
	if n.Message == nil {
		return ""
	}
	return *n.Message
}
