// Package notifications fans listing events out to realtime subscribers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"nestaway/internal/middleware"
	"nestaway/internal/models"

	"github.com/redis/go-redis/v9"
)

// ListingsChannel carries listing_created events between API instances.
const ListingsChannel = "listings:created"

// EventListingCreated is the type tag of a new listing event.
const EventListingCreated = "listing_created"

// ListingEvent is the message delivered to feed subscribers.
type ListingEvent struct {
	Type     string           `json:"type"`
	Property *models.Property `json:"property"`
}

// EncodeListingCreated renders the feed message for property.
func EncodeListingCreated(property *models.Property) ([]byte, error) {
	return json.Marshal(ListingEvent{Type: EventListingCreated, Property: property})
}

// Publisher announces newly created listings.
type Publisher interface {
	PublishListingCreated(ctx context.Context, property *models.Property) error
}

// Notifier publishes listing events into Redis so every instance's hub sees them.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishListingCreated sends a listing_created event. A nil client is a no-op.
func (n *Notifier) PublishListingCreated(ctx context.Context, property *models.Property) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := EncodeListingCreated(property)
	if err != nil {
		return fmt.Errorf("marshal listing event: %w", err)
	}
	return n.rdb.Publish(ctx, ListingsChannel, payload).Err()
}

// StartListingSubscriber subscribes to ListingsChannel and calls onMessage for
// each payload until ctx is cancelled.
func (n *Notifier) StartListingSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ListingsChannel)
	// Wait for the subscription to be confirmed so early publishes are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ListingsChannel, err)
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
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in listing subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
