package notification

import (
	"context"
	"errors"
	"fmt"

	"staffcall-backend/internal/model"
	"staffcall-backend/internal/store"
)

// Recipient is a user addressed by a notification. PushToken is empty when the
// user never registered a device.
type Recipient struct {
	UserID    string
	PushToken string
}

type recipientStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUsersByID(ctx context.Context, ids []string) (map[string]model.User, error)
	ListMembers(ctx context.Context, restaurantID string) ([]model.Membership, error)
}

// Resolver turns a notification's target into concrete recipients.
type Resolver struct {
	store recipientStore
}

func NewResolver(s recipientStore) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns every user the notification is addressed to, sender included.
// An unknown direct recipient yields an empty list, not an error.
func (r *Resolver) Resolve(ctx context.Context, n *model.Notification) ([]Recipient, error) {
	target := n.Target()
	if target.Kind() == model.TargetDirect {
		user, err := r.store.GetUser(ctx, target.UserID())
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve direct recipient: %w", err)
		}
		return []Recipient{{UserID: user.ID, PushToken: user.Token()}}, nil
	}

	members, err := r.store.ListMembers(ctx, n.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", n.RestaurantID, err)
	}

	var ids []string
	for _, m := range members {
		if target.Matches(m.UserID, m.Role) {
			ids = append(ids, m.UserID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := r.store.GetUsersByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}

	recipients := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		user, ok := users[id]
		if !ok {
			continue
		}
		recipients = append(recipients, Recipient{UserID: id, PushToken: user.Token()})
	}
	return recipients, nil
}

// PushTokens returns the device tokens of recipients, skipping the sender and
// anyone without a token.
func PushTokens(recipients []Recipient, senderID string) []string {
	var tokens []string
	for _, r := range recipients {
		if r.UserID == senderID || r.PushToken == "" {
			continue
		}
		tokens = append(tokens, r.PushToken)
	}
	return tokens
}

// UserIDs returns the ids of recipients other than the sender.
func UserIDs(recipients []Recipient, senderID string) []string {
	var ids []string
	for _, r := range recipients {
		if r.UserID != senderID {
			ids = append(ids, r.UserID)
		}
	}
	return ids
}
