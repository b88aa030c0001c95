package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/model"
	"staffcall-backend/internal/parse"
	"staffcall-backend/internal/ratelimit"
	"staffcall-backend/internal/store"
)

type accountStore interface {
	store.UserStore
	store.SubscriptionStore
}

type attemptLimiter interface {
	Check(ctx context.Context, identifier string, action model.RateLimitAction) (ratelimit.Status, error)
	Record(ctx context.Context, identifier string, action model.RateLimitAction) error
}

// Profile is a user without credentials.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PushToken *string   `json:"pushToken,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service handles signup, login and device registration.
type Service struct {
	store    accountStore
	limiter  attemptLimiter
	hashCost int
	now      func() time.Time
}

func NewService(s accountStore, limiter attemptLimiter) *Service {
	return &Service{
		store:    s,
		limiter:  limiter,
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *Service) checkLimit(ctx context.Context, identifier string, action model.RateLimitAction, what string) error {
	status, err := s.limiter.Check(ctx, identifier, action)
	if err != nil {
		return err
	}
	if !status.Allowed {
		return ratelimit.Exceeded(what, status.ResetAt)
	}
	return nil
}

func (s *Service) record(ctx context.Context, identifier string, action model.RateLimitAction) {
	if err := s.limiter.Record(ctx, identifier, action); err != nil {
		log.Printf("Failed to record %s attempt for %s: %v", action, identifier, err)
	}
}

// Signup creates an account and returns its id. Only successful signups count
// against the signup limit.
func (s *Service) Signup(ctx context.Context, name, email, password string) (string, error) {
	identifier, validEmail := parse.Email(email)
	if err := s.checkLimit(ctx, identifier, model.ActionSignup, "kayıt denemesi"); err != nil {
		return "", err
	}

	name = parse.Name(name)
	if parse.NameLength(name) < 2 {
		return "", apperr.ErrNameTooShort
	}
	if !validEmail {
		return "", apperr.ErrInvalidEmail
	}
	switch parse.Password(password) {
	case parse.PasswordTooShort:
		return "", apperr.ErrPasswordTooShort
	case parse.PasswordNoUpper:
		return "", apperr.ErrPasswordNoUpper
	case parse.PasswordNoLower:
		return "", apperr.ErrPasswordNoLower
	case parse.PasswordNoDigit:
		return "", apperr.ErrPasswordNoDigit
	}

	_, err := s.store.GetUserByEmail(ctx, identifier)
	switch {
	case err == nil:
		return "", apperr.ErrEmailTaken
	case !errors.Is(err, store.ErrNotFound):
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Name: name, Email: identifier, PasswordHash: string(hash), CreatedAt: s.now()}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", err
	}
	s.record(ctx, identifier, model.ActionSignup)
	return user.ID, nil
}

// Login returns the id of the account matching the credentials. Failed attempts
// count against the login limit.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	identifier, validEmail := parse.Email(email)
	if err := s.checkLimit(ctx, identifier, model.ActionLogin, "giriş denemesi"); err != nil {
		return "", err
	}

	if !validEmail {
		s.record(ctx, identifier, model.ActionLogin)
		return "", apperr.ErrInvalidEmail
	}
	if password == "" {
		return "", apperr.ErrPasswordRequired
	}

	user, err := s.store.GetUserByEmail(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		s.record(ctx, identifier, model.ActionLogin)
		return "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.record(ctx, identifier, model.ActionLogin)
		return "", apperr.ErrInvalidCredentials
	}
	return user.ID, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return &Profile{ID: u.ID, Name: u.Name, Email: u.Email, PushToken: u.PushToken, CreatedAt: u.CreatedAt}, nil
}

// SavePushToken replaces the user's device token.
func (s *Service) SavePushToken(ctx context.Context, userID, token string) error {
	err := s.store.SetPushToken(ctx, userID, token)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.ErrUserNotFound
	}
	return err
}

// SaveWebPushSubscription registers a browser subscription. An endpoint already
// registered moves to userID with the new keys.
func (s *Service) SaveWebPushSubscription(ctx context.Context, userID, endpoint, p256dh, auth string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.store.UpsertPushSubscription(ctx, &model.PushSubscription{
		Endpoint:  endpoint,
		UserID:    userID,
		P256DH:    p256dh,
		Auth:      auth,
		CreatedAt: s.now(),
	})
}

func (s *Service) DeleteWebPushSubscription(ctx context.Context, endpoint string) error {
	return s.store.DeletePushSubscription(ctx, endpoint)
}
