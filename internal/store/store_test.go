package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"staffcall-backend/internal/db/dbtest"
	"staffcall-backend/internal/model"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_MarkPushSent(t *testing.T) {
	testCases := []struct {
		name         string
		rowsAffected int64
		expected     bool
	}{
		{name: "first attempt flips the flag", rowsAffected: 1, expected: true},
		{name: "flag already set", rowsAffected: 0, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newMockDB(t)
			s := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "push_sent"=$1 WHERE id = $2 AND push_sent = $3`)).
				WithArgs(true, "n1", false).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
			mock.ExpectCommit()

			flipped, err := s.MarkPushSent(context.Background(), "n1")
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, flipped)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_DeleteAttemptsBefore(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "rate_limit_records" WHERE timestamp < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()

	deleted, err := s.DeleteAttemptsBefore(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func seedUser(t *testing.T, s Store, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestGormStore_RestaurantAndMemberships(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t))
	owner := seedUser(t, s, "owner")
	waiter := seedUser(t, s, "waiter")
	now := time.Now().UTC()

	r := &model.Restaurant{Name: "Lokanta", InviteCode: "AB12CD", OwnerID: owner.ID}
	ownerMembership := &model.Membership{UserID: owner.ID, Role: model.RoleOwner, IsOnline: true, LastSeen: now, JoinedAt: now}
	require.NoError(t, s.CreateRestaurant(ctx, r, ownerMembership))
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, r.ID, ownerMembership.RestaurantID)

	found, err := s.GetRestaurantByInviteCode(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, r.ID, found.ID)

	_, err = s.GetRestaurantByInviteCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := s.InviteCodeExists(ctx, "AB12CD")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.CreateMembership(ctx, &model.Membership{
		UserID: waiter.ID, RestaurantID: r.ID, Role: model.RoleWaiter, LastSeen: now, JoinedAt: now.Add(time.Second),
	}))
	// The unique (user, restaurant) index rejects a second membership.
	assert.Error(t, s.CreateMembership(ctx, &model.Membership{
		UserID: waiter.ID, RestaurantID: r.ID, Role: model.RoleBar, LastSeen: now, JoinedAt: now,
	}))

	members, err := s.ListMembers(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, model.RoleOwner, members[0].Role)
	assert.Equal(t, model.RoleWaiter, members[1].Role)

	counts, err := s.CountMembers(ctx, []string{r.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[r.ID])

	ok, err := s.UpdatePresence(ctx, waiter.ID, r.ID, false, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	m, err := s.GetMembership(ctx, waiter.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, m.IsOnline)

	ok, err = s.UpdatePresence(ctx, "nobody", r.ID, true, now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpdateInviteCode(ctx, r.ID, "NEW123"))
	_, err = s.GetRestaurantByInviteCode(ctx, "AB12CD")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.RenameRestaurant(ctx, "missing", "x"), ErrNotFound)
}

func TestGormStore_NotificationsAndReads(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t))
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	create := func(target model.Target, title string, offset int) *model.Notification {
		n := model.NewNotification("r1", "sender", target, title, nil, model.PriorityNormal, model.CategoryInfo)
		n.CreatedAt = base.Add(time.Duration(offset) * time.Second)
		require.NoError(t, s.CreateNotification(ctx, n))
		return n
	}

	create(model.ForRole(model.RoleWaiter), "w1", 1)
	w2 := create(model.ForRole(model.RoleWaiter), "w2", 2)
	create(model.Broadcast(), "all", 3)
	create(model.Direct("u1"), "direct", 4)
	other := model.NewNotification("r2", "sender", model.Direct("u1"), "elsewhere", nil, model.PriorityNormal, model.CategoryInfo)
	require.NoError(t, s.CreateNotification(ctx, other))

	waiterList, err := s.ListRoleNotifications(ctx, "r1", "waiter", 0)
	require.NoError(t, err)
	require.Len(t, waiterList, 2)
	assert.Equal(t, "w2", waiterList[0].Title, "newest first")

	limited, err := s.ListRoleNotifications(ctx, "r1", "waiter", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "w2", limited[0].Title)

	all, err := s.ListRoleNotifications(ctx, "r1", model.RoleAll, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	direct, err := s.ListDirectNotifications(ctx, "r1", "u1", 0)
	require.NoError(t, err)
	require.Len(t, direct, 1, "direct notifications are scoped to the restaurant")
	assert.Equal(t, "direct", direct[0].Title)

	added, err := s.AddReader(ctx, w2.ID, "u1", base)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddReader(ctx, w2.ID, "u1", base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, added, "re-reading is a no-op")

	loaded, err := s.GetNotification(ctx, w2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, loaded.ReadBy())
	assert.False(t, loaded.PushSent)

	flipped, err := s.MarkPushSent(ctx, w2.ID)
	require.NoError(t, err)
	assert.True(t, flipped)
	flipped, err = s.MarkPushSent(ctx, w2.ID)
	require.NoError(t, err)
	assert.False(t, flipped)

	_, err = s.GetNotification(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_RateLimitRecords(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t))
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{now.Add(-2 * time.Hour), now.Add(-10 * time.Minute), now.Add(-time.Minute)} {
		require.NoError(t, s.RecordAttempt(ctx, &model.RateLimitRecord{Identifier: "a@b.co", Action: model.ActionLogin, Timestamp: ts}))
	}
	require.NoError(t, s.RecordAttempt(ctx, &model.RateLimitRecord{Identifier: "a@b.co", Action: model.ActionSignup, Timestamp: now}))

	times, err := s.ListAttemptTimes(ctx, "a@b.co", model.ActionLogin, now.Add(-15*time.Minute))
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, times[0].Before(times[1]))

	deleted, err := s.DeleteAttemptsBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGormStore_PushSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t))

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", UserID: "u1", P256DH: "k1", Auth: "a1"}
	require.NoError(t, s.UpsertPushSubscription(ctx, sub))
	moved := &model.PushSubscription{Endpoint: "https://push.example/1", UserID: "u2", P256DH: "k2", Auth: "a2"}
	require.NoError(t, s.UpsertPushSubscription(ctx, moved))

	subs, err := s.ListPushSubscriptions(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, subs)

	subs, err = s.ListPushSubscriptions(ctx, []string{"u2"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "k2", subs[0].P256DH)

	require.NoError(t, s.DeletePushSubscription(ctx, "https://push.example/1"))
	subs, err = s.ListPushSubscriptions(ctx, []string{"u2"})
	require.NoError(t, err)
	assert.Empty(t, subs)
}
