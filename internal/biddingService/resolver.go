package bidding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/models"
	"bid-ledger/internal/repository"
)

// ResolveOutcomes classifies every item the user has bid on as ongoing, won or lost.
// One outcome is produced per item, sorted by item id. A failure on one item is reported on
// that item's outcome and never hides the others; only a failure to read the user's bids
// fails the whole call.
func (s *BiddingService) ResolveOutcomes(ctx context.Context, userID string) ([]models.Outcome, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidArgument)
	}

	bids, err := s.listByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve outcomes for user %s: %w", userID, err)
	}

	now := s.now()
	items := make(map[string]itemLookup)
	outcomes := make([]models.Outcome, 0, len(bids))

	for _, own := range representativeBids(bids) {
		outcome, err := s.resolveItem(ctx, own, now, items)
		if err != nil {
			logItemFailure(userID, own.ItemID, err)
			outcome = unresolved(own, err)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

type itemLookup struct {
	item models.Item
	err  error
}

func (s *BiddingService) resolveItem(ctx context.Context, own models.Bid, now time.Time, items map[string]itemLookup) (models.Outcome, error) {
	item, err := s.cachedItem(ctx, own.ItemID, items)
	if err != nil {
		return models.Outcome{}, err
	}

	highest, err := s.highestBid(ctx, own.ItemID)
	if err != nil {
		return models.Outcome{}, err
	}

	status := models.StatusOngoing
	if item.Closed(now) {
		status = models.StatusLost
		if highest.BidID == own.BidID {
			status = models.StatusWon
		}
	}

	price := highest.Price
	return models.Outcome{
		ItemID:      own.ItemID,
		Status:      status,
		BidID:       own.BidID,
		UserID:      highest.UserID,
		DisplayName: highest.DisplayName,
		Price:       &price,
	}, nil
}

// cachedItem fetches catalog metadata at most once per item per resolution pass
func (s *BiddingService) cachedItem(ctx context.Context, itemID string, items map[string]itemLookup) (models.Item, error) {
	if hit, ok := items[itemID]; ok {
		return hit.item, hit.err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item, err := s.catalog.GetItem(ctx, itemID)
	items[itemID] = itemLookup{item: item, err: err}
	return item, err
}

func (s *BiddingService) highestBid(ctx context.Context, itemID string) (models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.ledger.HighestBid(ctx, itemID)
}

func (s *BiddingService) listByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.ledger.ListByUser(ctx, userID)
}

// representativeBids keeps one bid per item: the user's best bid under the ledger order.
// If the user holds the item's highest bid, that is the bid kept, so "won" is decided by a
// single bid id comparison regardless of how many times the user bid.
func representativeBids(bids []models.Bid) []models.Bid {
	best := make(map[string]models.Bid, len(bids))
	for _, b := range bids {
		if cur, ok := best[b.ItemID]; !ok || repository.Outranks(b, cur) {
			best[b.ItemID] = b
		}
	}

	out := make([]models.Bid, 0, len(best))
	for _, b := range best {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

func unresolved(own models.Bid, err error) models.Outcome {
	reason := "item temporarily unavailable"
	if errors.Is(err, biddingerrors.ErrNotFound) {
		reason = "item not found"
	}
	return models.Outcome{
		ItemID: own.ItemID,
		Status: models.StatusUnresolved,
		BidID:  own.BidID,
		Error:  reason,
	}
}
