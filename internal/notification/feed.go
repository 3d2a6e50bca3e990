package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	model "bid-ledger/internal/models"
)

const DefaultRecentLimit = 5

// Feed serves the most recent notifications
type Feed struct {
	store        Store
	defaultLimit int
	timeout      time.Duration
}

func NewFeed(store Store, defaultLimit int, timeout time.Duration) *Feed {
	if defaultLimit <= 0 {
		defaultLimit = DefaultRecentLimit
	}
	return &Feed{store: store, defaultLimit: defaultLimit, timeout: timeout}
}

// DefaultLimit is the page size used when the caller does not ask for one
func (f *Feed) DefaultLimit() int {
	return f.defaultLimit
}

// Recent returns up to limit notifications, newest first. The store's order is never trusted:
// the full candidate set is sorted before truncation.
func (f *Feed) Recent(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = f.defaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	all, err := f.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: failed to list notifications: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		return all[i].NotificationID > all[j].NotificationID
	})

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
