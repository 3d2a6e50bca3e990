package bidding

import (
	"context"
	"fmt"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/catalog"
	"bid-ledger/internal/models"
	"bid-ledger/internal/repository"
	"bid-ledger/utils"
)

// BidPublisher is notified after a bid has been durably appended
type BidPublisher interface {
	OnBidAccepted(bid models.Bid)
}

type noopPublisher struct{}

func (noopPublisher) OnBidAccepted(models.Bid) {}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	ledger    repository.Ledger
	catalog   catalog.Catalog
	publisher BidPublisher
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*BiddingService)

// WithPublisher sets the new-bid notification publisher
func WithPublisher(p BidPublisher) Option {
	return func(s *BiddingService) {
		s.publisher = p
	}
}

// WithTimeout bounds every ledger and catalog call
func WithTimeout(d time.Duration) Option {
	return func(s *BiddingService) {
		s.timeout = d
	}
}

// WithClock overrides the time source used to decide whether an auction has closed
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) {
		s.now = now
	}
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(ledger repository.Ledger, items catalog.Catalog, opts ...Option) *BiddingService {
	s := &BiddingService{
		ledger:    ledger,
		catalog:   items,
		publisher: noopPublisher{},
		timeout:   3 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a user's bid for an item, then hands it to the publisher.
// The result depends only on the ledger write.
func (s *BiddingService) PlaceBid(ctx context.Context, itemID, userID, name, price string) (models.Bid, error) {
	if itemID == "" || userID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing itemID or userID", biddingerrors.ErrInvalidBid)
	}

	amount, err := models.ParsePrice(price)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bid, err := s.ledger.Append(ctx, models.Bid{
		ItemID:      itemID,
		UserID:      userID,
		DisplayName: name,
		Price:       amount,
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for item %s by user %s: %w", itemID, userID, err)
	}

	s.publisher.OnBidAccepted(bid)

	return bid, nil
}

// GetBidsForItem returns all bids for a specific item
func (s *BiddingService) GetBidsForItem(ctx context.Context, itemID string) ([]models.Bid, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bids, err := s.ledger.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid for a specific item
func (s *BiddingService) GetWinningBid(ctx context.Context, itemID string) (models.Bid, error) {
	if itemID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	winningBid, err := s.ledger.HighestBid(ctx, itemID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for item %s: %w", itemID, err)
	}

	return winningBid, nil
}

// GetItem returns catalog metadata for an item
func (s *BiddingService) GetItem(ctx context.Context, itemID string) (models.Item, error) {
	if itemID == "" {
		return models.Item{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return models.Item{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}
	return item, nil
}

// ListItems returns every catalog item
func (s *BiddingService) ListItems(ctx context.Context) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items: %w", err)
	}
	return items, nil
}

func logItemFailure(userID, itemID string, err error) {
	utils.Warn("service: outcome unresolved for item", map[string]any{
		"user_id": userID,
		"item_id": itemID,
		"error":   err.Error(),
	})
}
