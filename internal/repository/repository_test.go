package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

// Helper to create a new Bid
func newBid(bidID, itemID, userID, price string, placedAt time.Time) model.Bid {
	return model.Bid{
		BidID:       bidID,
		ItemID:      itemID,
		UserID:      userID,
		DisplayName: userID + " name",
		Price:       model.MustPrice(price),
		PlacedAt:    placedAt,
	}
}

// ledgerFactories runs the same contract against every Ledger implementation
func ledgerFactories() map[string]func(t *testing.T) Ledger {
	return map[string]func(t *testing.T) Ledger{
		"memory": func(t *testing.T) Ledger { return NewMemoryRepo() },
		"gorm_sqlite": func(t *testing.T) Ledger {
			return newSQLiteRepo(t)
		},
	}
}

// requireSameBid compares prices by their exact decimal text, scale included
func requireSameBid(t *testing.T, want, got model.Bid) {
	t.Helper()
	require.Equal(t, want.BidID, got.BidID)
	require.Equal(t, want.ItemID, got.ItemID)
	require.Equal(t, want.UserID, got.UserID)
	require.Equal(t, want.DisplayName, got.DisplayName)
	require.Equal(t, want.Price.Text(), got.Price.Text())
	require.True(t, want.PlacedAt.Equal(got.PlacedAt), "placedAt %s != %s", want.PlacedAt, got.PlacedAt)
}

func bidIDs(bids []model.Bid) []string {
	ids := make([]string, 0, len(bids))
	for _, b := range bids {
		ids = append(ids, b.BidID)
	}
	return ids
}

// Test Append
func TestLedger_Append(t *testing.T) {
	for name, factory := range ledgerFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			tests := []struct {
				name      string
				bid       model.Bid
				wantError error
			}{
				{name: "valid_bid", bid: newBid("bid1", "item1", "user1", "100", baseTime)},
				{name: "decimal_price", bid: newBid("bid2", "item1", "user2", "10.50", baseTime.Add(time.Second))},
				{name: "price_beyond_float_precision", bid: newBid("bid7", "item1", "user4", "12345678901234567.89", baseTime.Add(2*time.Second))},
				{name: "past_timestamp", bid: newBid("bid3", "item1", "user3", "120", baseTime.Add(-24*time.Hour))},
				{name: "empty_itemID", bid: newBid("bid4", "", "user1", "100", baseTime), wantError: biddingerrors.ErrInvalidArgument},
				{name: "empty_userID", bid: newBid("bid5", "item1", "", "100", baseTime), wantError: biddingerrors.ErrInvalidArgument},
				{name: "zero_price", bid: model.Bid{BidID: "bid6", ItemID: "item1", UserID: "user1"}, wantError: biddingerrors.ErrInvalidPrice},
				{name: "price_out_of_range", bid: model.Bid{BidID: "bid8", ItemID: "item1", UserID: "user1", Price: model.NewPrice(decimal.New(1, 40))}, wantError: biddingerrors.ErrInvalidPrice},
			}

			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					stored, err := repo.Append(ctx, tc.bid)
					if tc.wantError != nil {
						require.ErrorIs(t, err, tc.wantError)
						return
					}
					require.NoError(t, err)
					requireSameBid(t, tc.bid, stored)

					bids, err := repo.ListByItem(ctx, tc.bid.ItemID)
					require.NoError(t, err)
					require.Contains(t, bidIDs(bids), tc.bid.BidID)
					for _, b := range bids {
						if b.BidID == tc.bid.BidID {
							requireSameBid(t, tc.bid, b)
						}
					}
				})
			}

			t.Run("assigns_identity_and_time", func(t *testing.T) {
				before := time.Now().UTC()
				stored, err := repo.Append(ctx, model.Bid{ItemID: "item9", UserID: "user9", Price: model.MustPrice("5")})
				require.NoError(t, err)
				require.NotEmpty(t, stored.BidID)
				require.WithinDuration(t, before, stored.PlacedAt, 2*time.Second)
			})
		})
	}
}

// Test ListByItem and ListByUser
func TestLedger_List(t *testing.T) {
	for name, factory := range ledgerFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			seed := []model.Bid{
				newBid("bid1", "item1", "user1", "100", baseTime),
				newBid("bid2", "item1", "user2", "150", baseTime.Add(time.Second)),
				newBid("bid3", "item2", "user1", "75", baseTime.Add(2*time.Second)),
				newBid("bid4", "item1", "user1", "175", baseTime.Add(3*time.Second)),
			}
			for _, b := range seed {
				_, err := repo.Append(ctx, b)
				require.NoError(t, err)
			}

			tests := []struct {
				name    string
				list    func() ([]model.Bid, error)
				wantIDs []string
			}{
				{name: "item_with_bids", list: func() ([]model.Bid, error) { return repo.ListByItem(ctx, "item1") }, wantIDs: []string{"bid1", "bid2", "bid4"}},
				{name: "item_without_bids", list: func() ([]model.Bid, error) { return repo.ListByItem(ctx, "itemX") }, wantIDs: []string{}},
				{name: "user_across_items", list: func() ([]model.Bid, error) { return repo.ListByUser(ctx, "user1") }, wantIDs: []string{"bid1", "bid3", "bid4"}},
				{name: "user_without_bids", list: func() ([]model.Bid, error) { return repo.ListByUser(ctx, "userX") }, wantIDs: []string{}},
			}

			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					bids, err := tc.list()
					require.NoError(t, err)
					require.NotNil(t, bids)
					require.Equal(t, tc.wantIDs, bidIDs(bids))
				})
			}
		})
	}
}

// Test HighestBid
func TestLedger_HighestBid(t *testing.T) {
	for name, factory := range ledgerFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			seed := []model.Bid{
				newBid("bid1", "item1", "user1", "100", baseTime),
				newBid("bid2", "item1", "user2", "150", baseTime.Add(time.Second)),
				// equal price: earlier placement wins
				newBid("bid-tie-late", "item2", "userB", "200", baseTime.Add(time.Minute)),
				newBid("bid-tie-early", "item2", "userA", "200.00", baseTime),
				// equal price and time: smaller bid id wins
				newBid("bid-b", "item3", "userB", "50", baseTime),
				newBid("bid-a", "item3", "userA", "50", baseTime),
				// decimal comparison, not lexical
				newBid("bid-nine", "item4", "user1", "9.99", baseTime),
				newBid("bid-ten", "item4", "user2", "10", baseTime.Add(time.Second)),
				// prices equal as float64: the exact decimal decides, not placement
				newBid("bid-88", "item5", "user1", "12345678901234567.88", baseTime),
				newBid("bid-89", "item5", "user2", "12345678901234567.89", baseTime.Add(time.Second)),
			}
			for _, b := range seed {
				_, err := repo.Append(ctx, b)
				require.NoError(t, err)
			}

			tests := []struct {
				name      string
				itemID    string
				wantBidID string
				wantError error
			}{
				{name: "highest_price", itemID: "item1", wantBidID: "bid2"},
				{name: "tie_earliest_wins", itemID: "item2", wantBidID: "bid-tie-early"},
				{name: "tie_smallest_id_wins", itemID: "item3", wantBidID: "bid-a"},
				{name: "decimal_order", itemID: "item4", wantBidID: "bid-ten"},
				{name: "exact_order_beyond_float_precision", itemID: "item5", wantBidID: "bid-89"},
				{name: "no_bids", itemID: "itemX", wantError: biddingerrors.ErrNoBids},
			}

			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					bid, err := repo.HighestBid(ctx, tc.itemID)
					if tc.wantError != nil {
						require.ErrorIs(t, err, tc.wantError)
						require.ErrorIs(t, err, biddingerrors.ErrNotFound)
						return
					}
					require.NoError(t, err)
					require.Equal(t, tc.wantBidID, bid.BidID)
				})
			}
		})
	}
}

func TestMemoryRepo_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	concurrentCount := 50

	for i := 0; i < concurrentCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := newBid(fmt.Sprintf("bid-%03d", i), "item1", fmt.Sprintf("user-%d", i), fmt.Sprintf("%d", 100+i), baseTime)
			_, err := repo.Append(ctx, b)
			require.NoError(t, err)
		}()
	}

	wg.Wait()

	bids, err := repo.ListByItem(ctx, "item1")
	require.NoError(t, err)
	require.Len(t, bids, concurrentCount)

	winning, err := repo.HighestBid(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("bid-%03d", concurrentCount-1), winning.BidID)
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	_, err := repo.Append(ctx, newBid("bid1", "item1", "user1", "10", baseTime))
	require.NoError(t, err)

	bids, err := repo.ListByItem(ctx, "item1")
	require.NoError(t, err)
	bids[0].BidID = "mutated"

	again, err := repo.ListByItem(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, "bid1", again[0].BidID)
}

func TestMemoryRepo_CancelledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Append(ctx, newBid("bid1", "item1", "user1", "10", baseTime))
	require.ErrorIs(t, err, biddingerrors.ErrUnavailable)

	_, err = repo.ListByUser(ctx, "user1")
	require.ErrorIs(t, err, biddingerrors.ErrUnavailable)

	_, err = repo.HighestBid(ctx, "item1")
	require.ErrorIs(t, err, biddingerrors.ErrUnavailable)
}
