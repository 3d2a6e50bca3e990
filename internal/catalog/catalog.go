//go:generate mockgen -package=catalog -destination=mock_catalog.go -source=catalog.go

// Package catalog is the read-only view of auction item metadata this service consumes.
// Items are owned elsewhere; AddItem exists only to seed development environments.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"
)

// Catalog looks up auction items
type Catalog interface {
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
}

// MemoryCatalog is an in-memory Catalog
type MemoryCatalog struct {
	mu    sync.RWMutex
	items map[string]model.Item
}

func NewMemoryCatalog(items ...model.Item) *MemoryCatalog {
	c := &MemoryCatalog{items: make(map[string]model.Item, len(items))}
	for _, item := range items {
		c.items[item.ItemID] = item
	}
	return c
}

// AddItem adds or replaces an item
func (c *MemoryCatalog) AddItem(ctx context.Context, item model.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ItemID] = item
	return nil
}

func (c *MemoryCatalog) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, biddingerrors.Unavailable("get item "+itemID, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return item, nil
}

func (c *MemoryCatalog) ListItems(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, biddingerrors.Unavailable("list items", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]model.Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}
