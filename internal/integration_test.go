package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"staffcall-backend/config"
	"staffcall-backend/internal/account"
	"staffcall-backend/internal/api"
	"staffcall-backend/internal/db/dbtest"
	"staffcall-backend/internal/membership"
	"staffcall-backend/internal/notification"
	"staffcall-backend/internal/notificationtype"
	"staffcall-backend/internal/push"
	"staffcall-backend/internal/ratelimit"
	"staffcall-backend/internal/store"
)

type gatewayPush struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
}

// TestStaffCallLifecycle drives a restaurant from signup to a read notification
// through the HTTP API, with push delivery going to a fake gateway.
func TestStaffCallLifecycle(t *testing.T) {
	// --- Test Setup ---

	// 1. A fake push gateway that records every batch it receives.
	received := make(chan []gatewayPush, 4)
	gatewayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []gatewayPush
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		received <- batch

		tickets := make([]map[string]string, len(batch))
		for i := range tickets {
			tickets[i] = map[string]string{"status": "ok"}
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": tickets}))
	}))
	defer gatewayServer.Close()

	// 2. Wire the services the way the daemon does, on a throwaway database.
	gin.SetMode(gin.TestMode)
	appStore := store.NewGormStore(dbtest.Open(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := notification.NewWorkerPool(2, 8, appStore, notification.NewResolver(appStore), push.NewGateway(gatewayServer.URL, 5*time.Second))
	pool.Start(ctx)

	limiter := ratelimit.New(appStore)
	accounts := account.NewService(appStore, limiter)
	accounts.SetHashCost(bcrypt.MinCost)
	notifications := notification.NewService(appStore, pool)
	notifications.SetLimiter(limiter)

	router := api.NewRouter(api.Services{
		Accounts:      accounts,
		Memberships:   membership.NewService(appStore),
		Notifications: notifications,
		Types:         notificationtype.NewService(appStore),
	}, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60})

	call := func(t *testing.T, method, path string, body any) map[string]any {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Less(t, w.Code, 300, "%s %s: %s", method, path, w.Body.String())
		if w.Body.Len() == 0 || w.Body.Bytes()[0] != '{' {
			return nil
		}
		var out map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	// 3. Three staff members, two of them with devices.
	signup := func(name, email, token string) string {
		id := call(t, http.MethodPost, "/api/users", gin.H{"name": name, "email": email, "password": "Guclu123"})["userId"].(string)
		if token != "" {
			call(t, http.MethodPut, "/api/users/"+id+"/push_token", gin.H{"token": token})
		}
		return id
	}
	ownerID := signup("Ayşe", "ayse@lokanta.com", "ExponentPushToken[owner]")
	waiterID := signup("Mehmet", "mehmet@lokanta.com", "ExponentPushToken[waiter]")
	kitchenID := signup("Zeynep", "zeynep@lokanta.com", "")

	var restaurantID string
	var notificationID string

	// --- Step 1: The owner opens a restaurant and the staff join ---
	t.Run("Step 1: Staff Join With The Invite Code", func(t *testing.T) {
		created := call(t, http.MethodPost, "/api/restaurants", gin.H{"name": "Lokanta", "ownerId": ownerID})
		restaurantID = created["restaurantId"].(string)
		code := created["inviteCode"].(string)

		call(t, http.MethodPost, "/api/memberships", gin.H{"userId": waiterID, "inviteCode": code, "role": "waiter"})
		call(t, http.MethodPost, "/api/memberships", gin.H{"userId": kitchenID, "inviteCode": code, "role": "kitchen"})
	})

	// --- Step 2: The kitchen calls the waiters ---
	t.Run("Step 2: Role Notification Is Pushed To Waiters Only", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/api/restaurants/"+restaurantID+"/notifications", gin.H{
			"fromUserId": kitchenID,
			"toRole":     "waiter",
			"title":      "Masa 5 hazır",
			"priority":   "urgent",
			"category":   "order",
		})
		notificationID = resp["notificationId"].(string)

		select {
		case batch := <-received:
			require.Len(t, batch, 1)
			assert.Equal(t, "ExponentPushToken[waiter]", batch[0].To)
			assert.Equal(t, "Zeynep: Masa 5 hazır", batch[0].Title)
			assert.Equal(t, notification.DefaultBody, batch[0].Body)
			assert.Equal(t, notificationID, batch[0].Data["notificationId"])
			assert.Equal(t, "urgent", batch[0].Data["priority"])
		case <-time.After(5 * time.Second):
			t.Fatal("no push reached the gateway")
		}

		require.Eventually(t, func() bool {
			n, err := appStore.GetNotification(context.Background(), notificationID)
			return err == nil && n.PushSent
		}, 5*time.Second, 20*time.Millisecond)
	})

	// --- Step 3: The waiter reads it ---
	t.Run("Step 3: Waiter Reads The Notification", func(t *testing.T) {
		unreadPath := "/api/restaurants/" + restaurantID + "/notifications/unread_count?user_id=" + waiterID + "&role=waiter"
		assert.Equal(t, float64(1), call(t, http.MethodGet, unreadPath, nil)["count"])

		call(t, http.MethodPost, "/api/notifications/"+notificationID+"/read", gin.H{"userId": waiterID})
		call(t, http.MethodPost, "/api/notifications/"+notificationID+"/read", gin.H{"userId": waiterID})

		assert.Equal(t, float64(0), call(t, http.MethodGet, unreadPath, nil)["count"])

		n, err := appStore.GetNotification(context.Background(), notificationID)
		require.NoError(t, err)
		assert.Equal(t, []string{waiterID}, n.ReadBy())
	})

	// The owner was never addressed, so the gateway saw nothing else.
	select {
	case batch := <-received:
		t.Fatalf("unexpected push batch: %+v", batch)
	default:
	}
}
