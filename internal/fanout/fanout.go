//go:generate mockgen -package=fanout -destination=mock_fanout.go -source=fanout.go

// Package fanout carries new-bid events from the bid-accept path to notification persistence.
// Delivery is at-least-once: consumers must tolerate duplicates and reordering.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	model "bid-ledger/internal/models"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrUnknownTopic = errors.New("unknown topic")

// Event is the payload published for every accepted bid
type Event struct {
	BidID       string    `msgpack:"bid_id"`
	ItemID      string    `msgpack:"item_id"`
	UserID      string    `msgpack:"user_id"`
	Price       string    `msgpack:"price"`
	Message     string    `msgpack:"message"`
	PublishedAt time.Time `msgpack:"published_at"`
}

// NewBidEvent builds the fanout event for an accepted bid
func NewBidEvent(bid model.Bid, now time.Time) Event {
	return Event{
		BidID:       bid.BidID,
		ItemID:      bid.ItemID,
		UserID:      bid.UserID,
		Price:       bid.Price.Text(),
		Message:     fmt.Sprintf("New bid for item %s at price %s", bid.ItemID, bid.Price.Text()),
		PublishedAt: now.UTC(),
	}
}

// Encode serializes an event with msgpack
func Encode(e Event) ([]byte, error) {
	b, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}
	return b, nil
}

// Decode deserializes a msgpack event
func Decode(payload []byte) (Event, error) {
	var e Event
	if err := msgpack.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("msgpack unmarshal error: %w", err)
	}
	return e, nil
}

// Transport publishes payloads to a topic
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Handler processes a batch of delivered events. Returning an error asks for redelivery.
type Handler func(ctx context.Context, events []Event) error

// Subscriber delivers events to a handler until ctx is cancelled
type Subscriber interface {
	Run(ctx context.Context, handler Handler) error
}

// sleep waits for d or until ctx is done; false means ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
