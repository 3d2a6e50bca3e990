//go:generate mockgen -package=repository -destination=mock_repository.go -source=repository.go

package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"
	"bid-ledger/utils"
)

// Ledger defines the append-only bid storage of the auction system
type Ledger interface {
	Append(ctx context.Context, bid model.Bid) (model.Bid, error)
	ListByItem(ctx context.Context, itemID string) ([]model.Bid, error)
	ListByUser(ctx context.Context, userID string) ([]model.Bid, error)
	HighestBid(ctx context.Context, itemID string) (model.Bid, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of Ledger
type MemoryRepo struct {
	mu       sync.RWMutex
	bids     map[string][]model.Bid // key: itemID -> value: bids in append order
	userBids map[string][]model.Bid // key: userID -> value: bids in append order
	now      func() time.Time
}

// NewMemoryRepo creates a new in-memory ledger instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		bids:     make(map[string][]model.Bid),
		userBids: make(map[string][]model.Bid),
		now:      time.Now,
	}
}

// Append records a bid, filling in BidID and PlacedAt when the caller left them empty
func (r *MemoryRepo) Append(ctx context.Context, bid model.Bid) (model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return model.Bid{}, biddingerrors.Unavailable("append bid", err)
	}

	bid, err := prepareBid(bid, r.now)
	if err != nil {
		return model.Bid{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bids[bid.ItemID] = append(r.bids[bid.ItemID], bid)
	r.userBids[bid.UserID] = append(r.userBids[bid.UserID], bid)

	return bid, nil
}

// ListByItem returns all bids for an item
func (r *MemoryRepo) ListByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, biddingerrors.Unavailable("list bids for item "+itemID, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Bid{}, r.bids[itemID]...), nil
}

// ListByUser returns all bids a user placed across items
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, biddingerrors.Unavailable("list bids for user "+userID, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Bid{}, r.userBids[userID]...), nil
}

// HighestBid returns the top bid for an item under the ledger's total order
func (r *MemoryRepo) HighestBid(ctx context.Context, itemID string) (model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return model.Bid{}, biddingerrors.Unavailable("get highest bid for item "+itemID, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	winning, ok := HighestOf(r.bids[itemID])
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	return winning, nil
}

// prepareBid validates a bid and assigns its identity and timestamp when missing
func prepareBid(bid model.Bid, now func() time.Time) (model.Bid, error) {
	if bid.ItemID == "" || bid.UserID == "" {
		return model.Bid{}, fmt.Errorf("append bid: %w - missing itemID or userID", biddingerrors.ErrInvalidBid)
	}
	if err := bid.Price.Validate(); err != nil {
		return model.Bid{}, fmt.Errorf("append bid: %w", err)
	}

	if bid.BidID == "" {
		bid.BidID = utils.GenerateID()
	}
	if bid.PlacedAt.IsZero() {
		bid.PlacedAt = now().UTC()
	}
	return bid, nil
}
