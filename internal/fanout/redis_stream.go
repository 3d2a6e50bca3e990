package fanout

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/utils"

	"github.com/redis/go-redis/v9"
)

const (
	dataField     = "data"
	pendingCursor = "0"
	newCursor     = ">"
)

type redisStreamOptions struct {
	batchSize    int64
	blockTimeout time.Duration
	retryDelay   time.Duration
	ackTimeout   time.Duration
}

type RedisStreamOption func(*redisStreamOptions)

// WithBatchSize sets how many entries one XREADGROUP may return
func WithBatchSize(n int64) RedisStreamOption {
	return func(o *redisStreamOptions) {
		o.batchSize = n
	}
}

// WithBlockTimeout sets how long XREADGROUP blocks waiting for new entries
func WithBlockTimeout(d time.Duration) RedisStreamOption {
	return func(o *redisStreamOptions) {
		o.blockTimeout = d
	}
}

// WithRetryDelay sets the pause before pending entries are redelivered after a failure
func WithRetryDelay(d time.Duration) RedisStreamOption {
	return func(o *redisStreamOptions) {
		o.retryDelay = d
	}
}

// RedisStream is a Transport and Subscriber over a Redis Stream with a consumer group.
// Entries are acked only after the handler succeeds; failed batches stay pending and are
// re-read from the pending list, so a batch may be delivered more than once.
type RedisStream struct {
	client   *redis.Client
	topic    string
	group    string
	consumer string
	options  redisStreamOptions
}

func NewRedisStream(client *redis.Client, topic, group, consumer string, opts ...RedisStreamOption) (*RedisStream, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if topic == "" || group == "" || consumer == "" {
		return nil, errors.New("topic, group and consumer cannot be empty")
	}

	options := redisStreamOptions{
		batchSize:    10,
		blockTimeout: time.Second,
		retryDelay:   time.Second,
		ackTimeout:   3 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &RedisStream{
		client:   client,
		topic:    topic,
		group:    group,
		consumer: consumer,
		options:  options,
	}, nil
}

// Publish appends the payload to the topic's stream
func (s *RedisStream) Publish(ctx context.Context, topic string, payload []byte) error {
	const op = "redis.Stream.Publish"
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{dataField: base64.StdEncoding.EncodeToString(payload)},
	}).Err()
	if err != nil {
		return biddingerrors.Unavailable(op, err)
	}
	return nil
}

// Run consumes the stream as a group member until ctx is cancelled
func (s *RedisStream) Run(ctx context.Context, handler Handler) error {
	if err := s.ensureGroup(ctx); err != nil {
		return err
	}

	fields := map[string]any{"stream": s.topic, "group": s.group, "consumer": s.consumer}
	utils.Info("fanout consumer started", fields)
	defer utils.Info("fanout consumer stopped", fields)

	// start with entries delivered to this consumer but never acked
	cursor := pendingCursor
	for ctx.Err() == nil {
		messages, err := s.read(ctx, cursor)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			utils.Error("fanout read failed", map[string]any{"stream": s.topic, "error": err.Error()})
			sleep(ctx, s.options.retryDelay)
			continue
		}

		if len(messages) == 0 {
			cursor = newCursor
			continue
		}

		if err := s.deliver(ctx, messages, handler); err != nil {
			utils.Warn("fanout delivery failed, batch left pending for redelivery", map[string]any{
				"stream": s.topic,
				"count":  len(messages),
				"error":  err.Error(),
			})
			cursor = pendingCursor
			sleep(ctx, s.options.retryDelay)
		}
	}
	return nil
}

func (s *RedisStream) ensureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.topic, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return biddingerrors.Unavailable("redis.Stream.ensureGroup", err)
	}
	return nil
}

func (s *RedisStream) read(ctx context.Context, cursor string) ([]redis.XMessage, error) {
	streams, err := s.client.XReadGroup(ctx, s.readArgs(cursor)).Result()
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return streams[0].Messages, nil
}

func (s *RedisStream) readArgs(cursor string) *redis.XReadGroupArgs {
	return &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.topic, cursor},
		Count:    s.options.batchSize,
		Block:    s.options.blockTimeout,
	}
}

func (s *RedisStream) deliver(ctx context.Context, messages []redis.XMessage, handler Handler) error {
	events := make([]Event, 0, len(messages))
	ids := make([]string, 0, len(messages))

	for _, msg := range messages {
		event, err := decodeMessage(msg)
		if err != nil {
			utils.Error("undecodable fanout entry, moving to dead letter", map[string]any{
				"stream":    s.topic,
				"messageId": msg.ID,
				"error":     err.Error(),
			})
			if err := s.moveToDeadLetter(ctx, msg); err != nil {
				return err
			}
			continue
		}
		events = append(events, event)
		ids = append(ids, msg.ID)
	}

	if len(events) == 0 {
		return nil
	}
	if err := handler(ctx, events); err != nil {
		return err
	}

	// the handler's work is durable by now; ack even when shutdown has started
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.ackTimeout)
	defer cancel()
	if err := s.client.XAck(ackCtx, s.topic, s.group, ids...).Err(); err != nil {
		return biddingerrors.Unavailable("redis.Stream.ack", err)
	}
	return nil
}

func (s *RedisStream) moveToDeadLetter(ctx context.Context, msg redis.XMessage) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.topic + ":dead-letter",
		Values: msg.Values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to move message to dead letter queue: %w", err)
	}
	return s.client.XAck(ctx, s.topic, s.group, msg.ID).Err()
}

func decodeMessage(msg redis.XMessage) (Event, error) {
	raw, ok := msg.Values[dataField].(string)
	if !ok {
		return Event{}, fmt.Errorf("data field not found or invalid type")
	}
	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Event{}, fmt.Errorf("base64 decode error: %w", err)
	}
	return Decode(payload)
}
