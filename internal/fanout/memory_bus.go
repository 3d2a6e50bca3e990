package fanout

import (
	"context"
	"fmt"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/utils"
)

// MemoryBus is an in-process Transport and Subscriber for a single topic.
// A failed batch is retried after the retry delay until it succeeds or ctx ends.
type MemoryBus struct {
	topic      string
	queue      chan []byte
	batchSize  int
	retryDelay time.Duration
}

func NewMemoryBus(topic string, capacity, batchSize int, retryDelay time.Duration) *MemoryBus {
	if capacity <= 0 {
		capacity = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &MemoryBus{
		topic:      topic,
		queue:      make(chan []byte, capacity),
		batchSize:  batchSize,
		retryDelay: retryDelay,
	}
}

// Publish queues the payload, waiting for room until ctx ends
func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic != b.topic {
		return fmt.Errorf("memory bus publish to %q: %w", topic, ErrUnknownTopic)
	}
	select {
	case b.queue <- payload:
		return nil
	case <-ctx.Done():
		return biddingerrors.Unavailable("memory bus publish", ctx.Err())
	}
}

// Run delivers queued events in batches until ctx is cancelled
func (b *MemoryBus) Run(ctx context.Context, handler Handler) error {
	for {
		var first []byte
		select {
		case <-ctx.Done():
			return nil
		case first = <-b.queue:
		}

		events := b.decodeBatch(first)
		for len(events) > 0 {
			err := handler(ctx, events)
			if err == nil {
				break
			}
			utils.Warn("fanout delivery failed, retrying batch", map[string]any{
				"topic": b.topic,
				"count": len(events),
				"error": err.Error(),
			})
			if !sleep(ctx, b.retryDelay) {
				return nil
			}
		}
	}
}

// decodeBatch collects the first payload plus whatever else is already queued
func (b *MemoryBus) decodeBatch(first []byte) []Event {
	payloads := [][]byte{first}
	for len(payloads) < b.batchSize {
		select {
		case p := <-b.queue:
			payloads = append(payloads, p)
			continue
		default:
		}
		break
	}

	events := make([]Event, 0, len(payloads))
	for _, p := range payloads {
		e, err := Decode(p)
		if err != nil {
			utils.Error("dropping undecodable fanout payload", map[string]any{"topic": b.topic, "error": err.Error()})
			continue
		}
		events = append(events, e)
	}
	return events
}
