//go:generate mockgen -package=notification -destination=mock_store.go -source=store.go

// Package notification turns fanout events into durable notifications and serves the recent feed.
package notification

import (
	"context"
	"sync"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"
)

// Store persists notifications. List returns the candidate set in no particular order.
type Store interface {
	Save(ctx context.Context, n model.Notification) error
	List(ctx context.Context) ([]model.Notification, error)
}

// MemoryStore is a concurrency-safe in-memory Store
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[string]model.Notification // key: notificationID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notifications: make(map[string]model.Notification)}
}

func (s *MemoryStore) Save(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return biddingerrors.Unavailable("save notification", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.NotificationID] = n
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, biddingerrors.Unavailable("list notifications", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	return out, nil
}
