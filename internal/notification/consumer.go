package notification

import (
	"context"
	"fmt"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/fanout"
	model "bid-ledger/internal/models"
	"bid-ledger/utils"
)

// Consumer writes one notification per delivered fanout event.
// Duplicate deliveries produce duplicate notifications.
type Consumer struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

type ConsumerOption func(*Consumer)

// WithConsumerTimeout bounds every store write
func WithConsumerTimeout(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.timeout = d
	}
}

// WithConsumerClock overrides the notification timestamp source
func WithConsumerClock(now func() time.Time) ConsumerOption {
	return func(c *Consumer) {
		c.now = now
	}
}

func NewConsumer(store Store, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		store:   store,
		timeout: 3 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume persists the batch; the first failed write fails the whole batch so the
// transport redelivers it
func (c *Consumer) Consume(ctx context.Context, events []fanout.Event) error {
	for _, event := range events {
		n := model.Notification{
			NotificationID: utils.GenerateID(),
			Timestamp:      c.now().UTC(),
			Message:        event.Message,
		}

		if err := c.save(ctx, n); err != nil {
			return fmt.Errorf("consume event for bid %s: %w", event.BidID, err)
		}

		utils.Debug("notification stored", map[string]any{
			"notification_id": n.NotificationID,
			"bid_id":          event.BidID,
			"item_id":         event.ItemID,
		})
	}
	return nil
}

func (c *Consumer) save(ctx context.Context, n model.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.store.Save(ctx, n); err != nil {
		return biddingerrors.Unavailable("save notification", err)
	}
	return nil
}
