package push

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"staffcall-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

type subscriptionRemover interface {
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// WebPush delivers messages to browser subscriptions and prunes expired ones.
type WebPush struct {
	options *webpush.Options
	sender  NotificationSender
	subs    subscriptionRemover
}

// NewWebPush creates a browser push dispatcher. options carries the VAPID keys.
func NewWebPush(options *webpush.Options, subs subscriptionRemover) *WebPush {
	return &WebPush{
		options: options,
		sender:  &WebPushSender{},
		subs:    subs,
	}
}

// SetSender replaces the transport, for tests.
func (w *WebPush) SetSender(sender NotificationSender) {
	w.sender = sender
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (w *WebPush) PublicKey() string {
	if w == nil || w.options == nil {
		return ""
	}
	return w.options.VAPIDPublicKey
}

type webPushPayload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// SendAll sends msg to every subscription. Subscriptions answered with 410 Gone are deleted.
func (w *WebPush) SendAll(ctx context.Context, subs []model.PushSubscription, msg Message) Result {
	if len(subs) == 0 {
		return Result{Success: true}
	}

	payload, err := json.Marshal(webPushPayload{Title: msg.Title, Body: msg.Body, Data: msg.Data})
	if err != nil {
		log.Printf("Failed to marshal web push payload: %v", err)
		return Result{Success: false, FailedCount: len(subs)}
	}

	result := Result{Success: true}
	for _, sub := range subs {
		if w.sendOne(ctx, sub, payload) {
			result.SentCount++
		} else {
			result.FailedCount++
		}
	}
	return result
}

func (w *WebPush) sendOne(ctx context.Context, sub model.PushSubscription, payload []byte) bool {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := w.sender.Send(payload, wpSub, w.options)
	if err != nil {
		log.Printf("Error sending web push to %s: %v", sub.Endpoint, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := w.subs.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return false
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
