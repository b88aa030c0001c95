// Package ratelimit implements sliding-window attempt limits backed by stored
// attempt records, plus the periodic sweep that prunes them.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/model"
)

// Limit caps the attempts allowed within Window.
type Limit struct {
	MaxAttempts int
	Window      time.Duration
}

// Limits holds the window for every action.
var Limits = map[model.RateLimitAction]Limit{
	model.ActionLogin:        {MaxAttempts: 5, Window: 15 * time.Minute},
	model.ActionSignup:       {MaxAttempts: 3, Window: time.Hour},
	model.ActionMessage:      {MaxAttempts: 100, Window: time.Minute},
	model.ActionNotification: {MaxAttempts: 50, Window: time.Minute},
}

// LongestWindow returns the widest window in Limits; older records no longer count.
func LongestWindow() time.Duration {
	var longest time.Duration
	for _, l := range Limits {
		if l.Window > longest {
			longest = l.Window
		}
	}
	return longest
}

// Status is the outcome of a Check.
type Status struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type attemptStore interface {
	ListAttemptTimes(ctx context.Context, identifier string, action model.RateLimitAction, since time.Time) ([]time.Time, error)
	RecordAttempt(ctx context.Context, record *model.RateLimitRecord) error
	DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Limiter checks and records attempts. Check and Record are separate calls, so
// concurrent callers can overshoot a limit slightly.
type Limiter struct {
	store attemptStore
	now   func() time.Time
}

func New(s attemptStore) *Limiter {
	return &Limiter{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock overrides the time source, for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// Check counts the attempts inside the action's window. ResetAt is when the oldest
// of them leaves the window, or now plus the window when there are none.
func (l *Limiter) Check(ctx context.Context, identifier string, action model.RateLimitAction) (Status, error) {
	limit, ok := Limits[action]
	if !ok {
		return Status{}, fmt.Errorf("unknown rate limit action %q", action)
	}
	now := l.now()
	times, err := l.store.ListAttemptTimes(ctx, identifier, action, now.Add(-limit.Window))
	if err != nil {
		return Status{}, err
	}

	oldest := now
	if len(times) > 0 {
		oldest = times[0]
	}
	return Status{
		Allowed:   len(times) < limit.MaxAttempts,
		Remaining: max(0, limit.MaxAttempts-len(times)),
		ResetAt:   oldest.Add(limit.Window),
	}, nil
}

// Exceeded builds the user-facing error for a blocked action. what names the
// attempts, e.g. "giriş denemesi".
func Exceeded(what string, resetAt time.Time) error {
	return apperr.New(apperr.KindRateLimited,
		fmt.Sprintf("Çok fazla %s. Lütfen %s sonra tekrar deneyin.", what, resetAt.In(time.Local).Format("15:04:05")))
}

// Record stores one attempt at the current time.
func (l *Limiter) Record(ctx context.Context, identifier string, action model.RateLimitAction) error {
	return l.store.RecordAttempt(ctx, &model.RateLimitRecord{
		Identifier: identifier,
		Action:     action,
		Timestamp:  l.now(),
	})
}

// Sweep deletes records older than the longest window.
func (l *Limiter) Sweep(ctx context.Context) (int64, error) {
	return l.store.DeleteAttemptsBefore(ctx, l.now().Add(-LongestWindow()))
}

// RunSweeper sweeps once immediately and then every interval until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	log.Printf("Starting rate limit sweeper, interval %s", interval)
	l.sweepOnce(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Rate limit sweeper shutting down.")
			return
		case <-timer.C:
			l.sweepOnce(ctx)
			timer.Reset(interval)
		}
	}
}

func (l *Limiter) sweepOnce(ctx context.Context) {
	deleted, err := l.Sweep(ctx)
	if err != nil {
		log.Printf("Rate limit sweep failed: %v", err)
		return
	}
	log.Printf("Rate limit sweep removed %d records", deleted)
}
