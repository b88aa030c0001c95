package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staffcall-backend/internal/db/dbtest"
	"staffcall-backend/internal/model"
	"staffcall-backend/internal/push"
	"staffcall-backend/internal/store"
)

type fixture struct {
	store      store.Store
	restaurant *model.Restaurant
	owner      *model.User
	waiter     *model.User
	kitchen    *model.User
}

func strPtr(s string) *string { return &s }

// newFixture seeds a restaurant with an owner and a waiter that have push tokens
// and a kitchen member without one.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewGormStore(dbtest.Open(t))
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	mkUser := func(name string, token *string) *model.User {
		u := &model.User{Name: name, Email: name + "@example.com", PasswordHash: "x", PushToken: token}
		require.NoError(t, s.CreateUser(ctx, u))
		return u
	}
	f := &fixture{
		store:   s,
		owner:   mkUser("Ayşe", strPtr("ExponentPushToken[owner]")),
		waiter:  mkUser("Mehmet", strPtr("ExponentPushToken[waiter]")),
		kitchen: mkUser("Zeynep", nil),
	}

	f.restaurant = &model.Restaurant{Name: "Lokanta", InviteCode: "AB12CD", OwnerID: f.owner.ID}
	require.NoError(t, s.CreateRestaurant(ctx, f.restaurant, &model.Membership{
		UserID: f.owner.ID, Role: model.RoleOwner, IsOnline: true, LastSeen: now, JoinedAt: now,
	}))
	for i, m := range []struct {
		user *model.User
		role model.Role
	}{{f.waiter, model.RoleWaiter}, {f.kitchen, model.RoleKitchen}} {
		joined := now.Add(time.Duration(i+1) * time.Minute)
		require.NoError(t, s.CreateMembership(ctx, &model.Membership{
			UserID: m.user.ID, RestaurantID: f.restaurant.ID, Role: m.role, LastSeen: joined, JoinedAt: joined,
		}))
	}
	return f
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDispatcher) Dispatch(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

type gatewayCall struct {
	tokens []string
	msg    push.Message
}

type mockGateway struct {
	mu     sync.Mutex
	calls  []gatewayCall
	called chan struct{}
	// fail makes every send report all tokens as failed.
	fail bool
}

func newMockGateway() *mockGateway {
	return &mockGateway{called: make(chan struct{}, 16)}
}

func (g *mockGateway) SendBulk(ctx context.Context, tokens []string, msg push.Message) push.Result {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{tokens: tokens, msg: msg})
	g.mu.Unlock()
	g.called <- struct{}{}
	if g.fail {
		return push.Result{Success: false, FailedCount: len(tokens)}
	}
	return push.Result{Success: true, SentCount: len(tokens)}
}

func (g *mockGateway) Calls() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gatewayCall(nil), g.calls...)
}

type mockBrowser struct {
	mu   sync.Mutex
	subs []model.PushSubscription
	msgs []push.Message
}

func (b *mockBrowser) SendAll(ctx context.Context, subs []model.PushSubscription, msg push.Message) push.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subs...)
	b.msgs = append(b.msgs, msg)
	return push.Result{Success: true, SentCount: len(subs)}
}
