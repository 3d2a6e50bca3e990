package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	fieldTitle          = "title"
	fieldDescription    = "description"
	fieldStartingPrice  = "starting_price"
	fieldAuctionEndTime = "auction_end_time"
)

// RedisCatalog reads items stored as hashes under "<prefix>item:<id>", indexed by the
// "<prefix>items" set.
type RedisCatalog struct {
	client *redis.Client
	prefix string
}

type RedisCatalogOption func(*RedisCatalog)

// WithKeyPrefix namespaces every key the catalog touches
func WithKeyPrefix(prefix string) RedisCatalogOption {
	return func(c *RedisCatalog) {
		c.prefix = prefix
	}
}

func NewRedisCatalog(client *redis.Client, opts ...RedisCatalogOption) *RedisCatalog {
	c := &RedisCatalog{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCatalog) itemKey(itemID string) string {
	return c.prefix + "item:" + itemID
}

func (c *RedisCatalog) indexKey() string {
	return c.prefix + "items"
}

// AddItem writes the item hash and registers it in the index
func (c *RedisCatalog) AddItem(ctx context.Context, item model.Item) error {
	const op = "redis.Catalog.AddItem"
	err := c.client.HSet(ctx, c.itemKey(item.ItemID),
		fieldTitle, item.Title,
		fieldDescription, item.Description,
		fieldStartingPrice, item.StartingPrice.Text(),
		fieldAuctionEndTime, item.AuctionEndTime.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return biddingerrors.Unavailable(op, err)
	}
	if err := c.client.SAdd(ctx, c.indexKey(), item.ItemID).Err(); err != nil {
		return biddingerrors.Unavailable(op, err)
	}
	return nil
}

func (c *RedisCatalog) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	const op = "redis.Catalog.GetItem"
	fields, err := c.client.HGetAll(ctx, c.itemKey(itemID)).Result()
	if err != nil {
		return model.Item{}, biddingerrors.Unavailable(op, err)
	}
	// Redis returns empty map when key doesn't exist
	if len(fields) == 0 {
		return model.Item{}, fmt.Errorf("%s: item %s: %w", op, itemID, biddingerrors.ErrItemNotFound)
	}
	return decodeItem(itemID, fields)
}

func (c *RedisCatalog) ListItems(ctx context.Context) ([]model.Item, error) {
	const op = "redis.Catalog.ListItems"
	ids, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		return nil, biddingerrors.Unavailable(op, err)
	}
	sort.Strings(ids)

	items := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		item, err := c.GetItem(ctx, id)
		if errors.Is(err, biddingerrors.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(itemID string, fields map[string]string) (model.Item, error) {
	end, err := time.Parse(time.RFC3339Nano, fields[fieldAuctionEndTime])
	if err != nil {
		return model.Item{}, fmt.Errorf("decode item %s: bad auction end time: %w", itemID, biddingerrors.ErrInternal)
	}

	item := model.Item{
		ItemID:         itemID,
		Title:          fields[fieldTitle],
		Description:    fields[fieldDescription],
		AuctionEndTime: end.UTC(),
	}
	if raw := fields[fieldStartingPrice]; raw != "" {
		if err := item.StartingPrice.UnmarshalJSON([]byte(raw)); err != nil {
			return model.Item{}, fmt.Errorf("decode item %s: bad starting price: %w", itemID, biddingerrors.ErrInternal)
		}
	}
	return item, nil
}
