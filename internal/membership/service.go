package membership

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/model"
	"staffcall-backend/internal/parse"
	"staffcall-backend/internal/store"
)

type membershipStore interface {
	store.RestaurantStore
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUsersByID(ctx context.Context, ids []string) (map[string]model.User, error)
}

// Created is returned by CreateRestaurant.
type Created struct {
	RestaurantID string `json:"restaurantId"`
	InviteCode   string `json:"inviteCode"`
}

// UserRestaurant is one restaurant in a user's list.
type UserRestaurant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	InviteCode  string     `json:"inviteCode"`
	Role        model.Role `json:"role"`
	IsOwner     bool       `json:"isOwner"`
	MemberCount int64      `json:"memberCount"`
}

// Member is a membership joined with the member's account.
type Member struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName"`
	UserEmail string     `json:"userEmail"`
	Role      model.Role `json:"role"`
	IsOnline  bool       `json:"isOnline"`
	LastSeen  time.Time  `json:"lastSeen"`
	JoinedAt  time.Time  `json:"joinedAt"`
	PushToken *string    `json:"pushToken,omitempty"`
}

// Service manages restaurants, invite codes and memberships.
type Service struct {
	store   membershipStore
	newCode CodeGenerator
	now     func() time.Time
}

func NewService(s membershipStore) *Service {
	return &Service{
		store:   s,
		newCode: RandomInviteCode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetCodeGenerator replaces the invite code source, for tests.
func (s *Service) SetCodeGenerator(gen CodeGenerator) {
	s.newCode = gen
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// uniqueInviteCode re-rolls until the generator yields a code no restaurant holds.
func (s *Service) uniqueInviteCode(ctx context.Context) (string, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := s.newCode()
		exists, err := s.store.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		log.Printf("Invite code collision on attempt %d, retrying", attempt)
	}
}

// CreateRestaurant creates a restaurant with a fresh invite code and makes ownerID
// its owner.
func (s *Service) CreateRestaurant(ctx context.Context, name, ownerID string) (*Created, error) {
	name = parse.Name(name)
	if name == "" {
		return nil, apperr.ErrRestaurantNameNeeded
	}
	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	restaurant := &model.Restaurant{Name: name, InviteCode: code, OwnerID: ownerID, CreatedAt: now}
	owner := &model.Membership{UserID: ownerID, Role: model.RoleOwner, IsOnline: true, LastSeen: now, JoinedAt: now}
	if err := s.store.CreateRestaurant(ctx, restaurant, owner); err != nil {
		return nil, err
	}
	log.Printf("Restaurant %s created by %s", restaurant.ID, ownerID)
	return &Created{RestaurantID: restaurant.ID, InviteCode: code}, nil
}

// JoinRestaurant adds userID to the restaurant holding inviteCode. The owner role
// cannot be joined.
func (s *Service) JoinRestaurant(ctx context.Context, userID, inviteCode string, role model.Role) (string, error) {
	if !role.Joinable() {
		return "", apperr.ErrInvalidRole
	}
	code, ok := parse.InviteCode(inviteCode)
	if !ok {
		return "", apperr.ErrRestaurantNotFound
	}
	restaurant, err := s.store.GetRestaurantByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.ErrRestaurantNotFound
		}
		return "", err
	}

	_, err = s.store.GetMembership(ctx, userID, restaurant.ID)
	switch {
	case err == nil:
		return "", apperr.ErrAlreadyMember
	case !errors.Is(err, store.ErrNotFound):
		return "", err
	}

	now := s.now()
	err = s.store.CreateMembership(ctx, &model.Membership{
		UserID:       userID,
		RestaurantID: restaurant.ID,
		Role:         role,
		IsOnline:     true,
		LastSeen:     now,
		JoinedAt:     now,
	})
	if err != nil {
		return "", err
	}
	return restaurant.ID, nil
}

// GetByInviteCode looks up the restaurant currently holding code.
func (s *Service) GetByInviteCode(ctx context.Context, inviteCode string) (*model.Restaurant, error) {
	code, ok := parse.InviteCode(inviteCode)
	if !ok {
		return nil, apperr.ErrRestaurantNotFound
	}
	r, err := s.store.GetRestaurantByInviteCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrRestaurantNotFound
	}
	return r, err
}

func (s *Service) GetRestaurant(ctx context.Context, restaurantID string) (*model.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrRestaurantNotFound
	}
	return r, err
}

// ListUserRestaurants returns every restaurant userID belongs to, in join order.
func (s *Service) ListUserRestaurants(ctx context.Context, userID string) ([]UserRestaurant, error) {
	memberships, err := s.store.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []UserRestaurant{}
	if len(memberships) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.RestaurantID)
	}
	restaurants, err := s.store.GetRestaurantsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountMembers(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, m := range memberships {
		r, ok := restaurants[m.RestaurantID]
		if !ok {
			continue
		}
		out = append(out, UserRestaurant{
			ID:          r.ID,
			Name:        r.Name,
			InviteCode:  r.InviteCode,
			Role:        m.Role,
			IsOwner:     r.OwnerID == userID,
			MemberCount: counts[r.ID],
		})
	}
	return out, nil
}

// ListMembers returns the restaurant's members with their account details.
// Memberships whose user no longer exists are skipped.
func (s *Service) ListMembers(ctx context.Context, restaurantID string) ([]Member, error) {
	memberships, err := s.store.ListMembers(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	out := []Member{}
	if len(memberships) == 0 {
		return out, nil
	}

	userIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.store.GetUsersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, m := range memberships {
		u, ok := users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, Member{
			ID:        m.ID,
			UserID:    m.UserID,
			UserName:  u.Name,
			UserEmail: u.Email,
			Role:      m.Role,
			IsOnline:  m.IsOnline,
			LastSeen:  m.LastSeen,
			JoinedAt:  m.JoinedAt,
			PushToken: u.PushToken,
		})
	}
	return out, nil
}

// ownedRestaurant loads a restaurant and checks that userID owns it.
func (s *Service) ownedRestaurant(ctx context.Context, restaurantID, userID string, notOwner error) (*model.Restaurant, error) {
	r, err := s.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != userID {
		return nil, notOwner
	}
	return r, nil
}

// RefreshInviteCode gives the restaurant a new code. The old one stops matching at once.
func (s *Service) RefreshInviteCode(ctx context.Context, restaurantID, userID string) (string, error) {
	if _, err := s.ownedRestaurant(ctx, restaurantID, userID, apperr.ErrNotOwnerInviteCode); err != nil {
		return "", err
	}
	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateInviteCode(ctx, restaurantID, code); err != nil {
		return "", fmt.Errorf("failed to refresh invite code: %w", err)
	}
	return code, nil
}

func (s *Service) RenameRestaurant(ctx context.Context, restaurantID, userID, name string) error {
	if _, err := s.ownedRestaurant(ctx, restaurantID, userID, apperr.ErrNotOwnerRename); err != nil {
		return err
	}
	name = parse.Name(name)
	if name == "" {
		return apperr.ErrRestaurantNameNeeded
	}
	return s.store.RenameRestaurant(ctx, restaurantID, name)
}

// UpdatePresence records a heartbeat. Users without a membership are ignored.
func (s *Service) UpdatePresence(ctx context.Context, userID, restaurantID string, online bool) error {
	_, err := s.store.UpdatePresence(ctx, userID, restaurantID, online, s.now())
	return err
}
