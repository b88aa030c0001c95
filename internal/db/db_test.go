package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffcall-backend/config"
	"staffcall-backend/internal/model"
)

func TestInit_SQLite(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:dbinit?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	for _, table := range []any{
		&model.User{}, &model.Restaurant{}, &model.Membership{}, &model.NotificationType{},
		&model.Notification{}, &model.NotificationRead{}, &model.RateLimitRecord{}, &model.PushSubscription{},
	} {
		assert.True(t, gormDB.Migrator().HasTable(table))
	}
	assert.True(t, gormDB.Migrator().HasIndex(&model.Membership{}, "idx_member_user_restaurant"))
	assert.True(t, gormDB.Migrator().HasIndex(&model.Notification{}, "idx_notifications_role"))
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
