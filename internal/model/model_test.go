package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTarget(t *testing.T) {
	testCases := []struct {
		name     string
		toUserID string
		toRole   string
		expected Target
		ok       bool
	}{
		{name: "direct", toUserID: "u1", expected: Direct("u1"), ok: true},
		{name: "role", toRole: "waiter", expected: ForRole(RoleWaiter), ok: true},
		{name: "broadcast", toRole: "all", expected: Broadcast(), ok: true},
		{name: "both set", toUserID: "u1", toRole: "waiter", ok: false},
		{name: "neither set", ok: false},
		{name: "unknown role", toRole: "chef", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target, ok := ParseTarget(tc.toUserID, tc.toRole)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, target)
				assert.True(t, target.Valid())
			}
		})
	}
}

func TestTargetMatches(t *testing.T) {
	assert.True(t, Direct("u1").Matches("u1", RoleOwner))
	assert.False(t, Direct("u1").Matches("u2", RoleOwner))
	assert.True(t, ForRole(RoleKitchen).Matches("u2", RoleKitchen))
	assert.False(t, ForRole(RoleKitchen).Matches("u2", RoleBar))
	assert.True(t, Broadcast().Matches("anyone", RoleBar))
	assert.False(t, Target{}.Matches("u1", RoleOwner))
}

func TestNotificationTargetRoundTrip(t *testing.T) {
	for _, target := range []Target{Direct("u9"), ForRole(RoleBar), Broadcast()} {
		n := NewNotification("r1", "u1", target, "Sipariş Hazır", nil, PriorityNormal, CategoryOrder)
		assert.Equal(t, target, n.Target(), target.Kind().String())
		assert.False(t, n.ToUserID != nil && n.ToRole != nil, "only one addressing column may be set")
	}
}

func TestRoleJoinable(t *testing.T) {
	assert.False(t, RoleOwner.Joinable())
	for _, r := range []Role{RoleManager, RoleWaiter, RoleKitchen, RoleBar} {
		assert.True(t, r.Joinable(), string(r))
	}
	assert.False(t, Role("all").Valid())
}
