package notificationtype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/db/dbtest"
	"staffcall-backend/internal/model"
	"staffcall-backend/internal/store"
)

func setup(t *testing.T) (*Service, *model.Restaurant) {
	t.Helper()
	s := store.NewGormStore(dbtest.Open(t))
	r := &model.Restaurant{Name: "Lokanta", InviteCode: "AB12CD", OwnerID: "owner"}
	require.NoError(t, s.CreateRestaurant(context.Background(), r, &model.Membership{UserID: "owner", Role: model.RoleOwner}))
	return NewService(s), r
}

func TestService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc, r := setup(t)

	require.NoError(t, svc.CreateDefaults(ctx, r.ID, "waiter"), "non-owners are ignored")
	types, err := svc.List(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, types)

	require.NoError(t, svc.CreateDefaults(ctx, "missing", "owner"))

	require.NoError(t, svc.CreateDefaults(ctx, r.ID, "owner"))
	types, err = svc.List(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, types, len(Defaults))
	for i, d := range Defaults {
		assert.Equal(t, d.Title, types[i].Title)
		assert.Equal(t, d.Icon, types[i].Icon)
		assert.Equal(t, d.Color, types[i].Color)
		assert.Equal(t, i, types[i].Order)
	}
	assert.Equal(t, "Moladayım", types[0].Title)
	assert.Equal(t, "#9C27B0", types[4].Color)
}

func TestService_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, r := setup(t)
	require.NoError(t, svc.CreateDefaults(ctx, r.ID, "owner"))

	_, err := svc.Create(ctx, r.ID, "waiter", Template{Title: "Buz Bitti", Icon: "🧊", Color: "#00BCD4"})
	assert.ErrorIs(t, err, apperr.ErrNotOwnerCreateType)
	_, err = svc.Create(ctx, r.ID, "owner", Template{Title: "  "})
	assert.ErrorIs(t, err, apperr.ErrTitleRequired)
	_, err = svc.Create(ctx, "missing", "owner", Template{Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrRestaurantNotFound)

	created, err := svc.Create(ctx, r.ID, "owner", Template{Title: "Buz Bitti", Icon: "🧊", Color: "#00BCD4"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, len(Defaults), created.Order, "appended after existing types")

	_, err = svc.Delete(ctx, created.ID, "waiter")
	assert.ErrorIs(t, err, apperr.ErrNotOwnerDeleteType)

	deleted, err := svc.Delete(ctx, created.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, r.ID, deleted.RestaurantID)

	_, err = svc.Delete(ctx, created.ID, "owner")
	assert.ErrorIs(t, err, apperr.ErrNotificationTypeNotFound)

	types, err := svc.List(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, types, len(Defaults))
}
