package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"staffcall-backend/internal/model"
	"staffcall-backend/internal/push"
	"staffcall-backend/internal/store"
)

// DefaultBody is the push body used when a notification carries no message.
const DefaultBody = "Yeni bildirim"

// BulkSender delivers one message to many device tokens.
type BulkSender interface {
	SendBulk(ctx context.Context, tokens []string, msg push.Message) push.Result
}

// BrowserSender delivers one message to many browser subscriptions.
type BrowserSender interface {
	SendAll(ctx context.Context, subs []model.PushSubscription, msg push.Message) push.Result
}

type deliveryStore interface {
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListPushSubscriptions(ctx context.Context, userIDs []string) ([]model.PushSubscription, error)
	MarkPushSent(ctx context.Context, notificationID string) (bool, error)
}

// WorkerPool manages a pool of workers that deliver pushes for new notifications.
type WorkerPool struct {
	size     int
	jobs     chan string
	stop     chan struct{}
	stopOnce sync.Once
	overflow sync.WaitGroup
	store    deliveryStore
	resolver *Resolver
	gateway  BulkSender
	browser  BrowserSender
}

// NewWorkerPool creates a new worker pool. Browser push stays off until SetBrowserSender.
func NewWorkerPool(size, queueSize int, s deliveryStore, resolver *Resolver, gateway BulkSender) *WorkerPool {
	return &WorkerPool{
		size:     size,
		jobs:     make(chan string, queueSize),
		stop:     make(chan struct{}),
		store:    s,
		resolver: resolver,
		gateway:  gateway,
	}
}

// SetBrowserSender enables web push delivery alongside the gateway.
func (wp *WorkerPool) SetBrowserSender(b BrowserSender) {
	wp.browser = b
}

// Start launches the worker goroutines. Cancelling ctx stops them and releases
// any Dispatch still waiting for queue space.
func (wp *WorkerPool) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		wp.stopOnce.Do(func() { close(wp.stop) })
	}()
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case notificationID := <-wp.jobs:
			log.Printf("Worker %d delivering notification %s", id, notificationID)
			wp.deliver(ctx, notificationID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a delivery job without blocking the caller. When the queue is
// full the job waits in its own goroutine until a slot frees up or the pool stops.
// Jobs dispatched before Start wait in the same way.
func (wp *WorkerPool) Dispatch(notificationID string) {
	select {
	case wp.jobs <- notificationID:
	default:
		wp.overflow.Add(1)
		go func() {
			defer wp.overflow.Done()
			select {
			case wp.jobs <- notificationID:
			case <-wp.stop:
				log.Printf("Dropping delivery of notification %s: worker pool stopped", notificationID)
			}
		}()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// deliver resolves recipients for one notification, pushes to them and marks the
// notification as sent. Failures are logged; the job is never retried.
func (wp *WorkerPool) deliver(ctx context.Context, notificationID string) {
	n, err := wp.store.GetNotification(ctx, notificationID)
	if err != nil {
		log.Printf("Skipping delivery of notification %s: %v", notificationID, err)
		return
	}
	sender, err := wp.store.GetUser(ctx, n.FromUserID)
	if err != nil {
		log.Printf("Skipping delivery of notification %s: sender %s: %v", notificationID, n.FromUserID, err)
		return
	}

	recipients, err := wp.resolver.Resolve(ctx, n)
	if err != nil {
		log.Printf("Error resolving recipients for notification %s: %v", notificationID, err)
		return
	}
	tokens := PushTokens(recipients, sender.ID)

	var subs []model.PushSubscription
	if wp.browser != nil {
		if userIDs := UserIDs(recipients, sender.ID); len(userIDs) > 0 {
			subs, err = wp.store.ListPushSubscriptions(ctx, userIDs)
			if err != nil {
				log.Printf("Error fetching browser subscriptions for notification %s: %v", notificationID, err)
				subs = nil
			}
		}
	}

	if len(tokens) == 0 && len(subs) == 0 {
		return
	}

	msg := BuildMessage(sender, n)
	var g errgroup.Group
	if len(tokens) > 0 {
		g.Go(func() error {
			res := wp.gateway.SendBulk(ctx, tokens, msg)
			log.Printf("Notification %s: gateway sent=%d failed=%d", notificationID, res.SentCount, res.FailedCount)
			return nil
		})
	}
	if len(subs) > 0 {
		g.Go(func() error {
			res := wp.browser.SendAll(ctx, subs, msg)
			log.Printf("Notification %s: web push sent=%d failed=%d", notificationID, res.SentCount, res.FailedCount)
			return nil
		})
	}
	_ = g.Wait()

	if _, err := wp.store.MarkPushSent(ctx, notificationID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to mark notification %s as pushed: %v", notificationID, err)
	}
}

// BuildMessage renders the push content for a notification sent by sender.
func BuildMessage(sender *model.User, n *model.Notification) push.Message {
	body := n.MessageText()
	if body == "" {
		body = DefaultBody
	}
	return push.Message{
		Title: fmt.Sprintf("%s: %s", sender.Name, n.Title),
		Body:  body,
		Data: map[string]any{
			"notificationId": n.ID,
			"restaurantId":   n.RestaurantID,
			"priority":       string(n.Priority),
		},
	}
}
