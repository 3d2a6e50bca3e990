package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"bid-ledger/internal/fanout"
	model "bid-ledger/internal/models"
	"bid-ledger/utils"

	"github.com/smallnest/chanx"
)

var ErrPublisherClosed = errors.New("publisher is closed")

type publisherOptions struct {
	bufferSize int
	timeout    time.Duration
	now        func() time.Time
	onError    func(bid model.Bid, err error)
}

type PublisherOption func(*publisherOptions)

// WithPublisherBufferSize sets the initial capacity of the publish queue
func WithPublisherBufferSize(size int) PublisherOption {
	return func(o *publisherOptions) {
		o.bufferSize = size
	}
}

// WithPublisherTimeout bounds every transport publish
func WithPublisherTimeout(d time.Duration) PublisherOption {
	return func(o *publisherOptions) {
		o.timeout = d
	}
}

// WithPublisherClock overrides the event timestamp source
func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(o *publisherOptions) {
		o.now = now
	}
}

// WithPublisherErrorHandler receives every failed publish; the default logs it
func WithPublisherErrorHandler(fn func(bid model.Bid, err error)) PublisherOption {
	return func(o *publisherOptions) {
		o.onError = fn
	}
}

// Publisher emits a fanout event for every accepted bid from a background goroutine.
// OnBidAccepted never blocks the caller and never reports publish failures back to it.
type Publisher struct {
	transport fanout.Transport
	topic     string
	upstream  *chanx.UnboundedChan[model.Bid]
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	options   publisherOptions
}

func NewPublisher(transport fanout.Transport, topic string, opts ...PublisherOption) (*Publisher, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	options := publisherOptions{
		bufferSize: 100,
		timeout:    3 * time.Second,
		now:        time.Now,
		onError:    logPublishError,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Publisher{
		transport: transport,
		topic:     topic,
		closed:    true,
		options:   options,
	}, nil
}

// Start launches the background publishing goroutine
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		return
	}

	// the queue is closed through In on Close, which drains it before Out closes
	p.upstream = chanx.NewUnboundedChan[model.Bid](context.Background(), p.options.bufferSize)
	p.closed = false
	utils.Info("starting notification publisher", map[string]any{"topic": p.topic})

	out := p.upstream.Out
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for bid := range out {
			p.publish(bid)
		}
	}()
}

// OnBidAccepted queues the bid for publishing and returns immediately
func (p *Publisher) OnBidAccepted(bid model.Bid) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.options.onError(bid, ErrPublisherClosed)
		return
	}
	p.upstream.In <- bid
}

// Close stops accepting bids, publishes everything already queued, then returns
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.upstream.In)
	p.mu.Unlock()

	p.wg.Wait()
	utils.Info("notification publisher closed", map[string]any{"topic": p.topic})
}

func (p *Publisher) publish(bid model.Bid) {
	payload, err := fanout.Encode(fanout.NewBidEvent(bid, p.options.now()))
	if err != nil {
		p.options.onError(bid, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.options.timeout)
	defer cancel()

	if err := p.transport.Publish(ctx, p.topic, payload); err != nil {
		p.options.onError(bid, err)
		return
	}
	utils.Debug("bid notification published", map[string]any{"bid_id": bid.BidID, "topic": p.topic})
}

func logPublishError(bid model.Bid, err error) {
	utils.Error("failed to publish bid notification", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"error":   err.Error(),
	})
}
