// Package notifications publishes blog domain events over Redis pub/sub.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/middleware"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EventsChannel is the Redis channel all blog events are published on.
const EventsChannel = "blog:events"

// Event types.
const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

// Event is the envelope written to EventsChannel.
type Event struct {
	Type       string              `json:"type"`
	Payload    jsoniter.RawMessage `json:"payload"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Notifier publishes events into Redis. A Notifier without a client is a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier using the provided Redis client, which may be nil.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish encodes payload into an Event and sends it to EventsChannel.
func (n *Notifier) Publish(ctx context.Context, eventType string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	msg, err := json.Marshal(Event{Type: eventType, Payload: body, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return n.rdb.Publish(ctx, EventsChannel, msg).Err()
}

// publishTimeout bounds a background publish once the request that caused it
// has returned.
const publishTimeout = 3 * time.Second

// PublishAsync publishes in the background without failing the caller; errors
// are only logged. The request context's values are kept but its cancellation
// is not, so the event survives the end of the request.
func (n *Notifier) PublishAsync(ctx context.Context, eventType string, payload any) {
	if n == nil || n.rdb == nil {
		return
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := n.Publish(bg, eventType, payload); err != nil {
			middleware.Logger.WarnContext(bg, "failed to publish event",
				slog.String("type", eventType),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Subscribe delivers decoded events to onEvent until ctx is cancelled. The
// subscription is confirmed before Subscribe returns.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, EventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed event", slog.String("error", err.Error()))
					continue
				}
				deliver(onEvent, ev)
			}
		}
	}()
	return nil
}

func deliver(onEvent func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.Error("panic in event subscriber",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	onEvent(ev)
}
