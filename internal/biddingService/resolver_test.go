package bidding

import (
	"context"
	"errors"
	"testing"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/catalog"
	model "bid-ledger/internal/models"
	"bid-ledger/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var auctionEnd = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func seedLedger(t *testing.T, bids ...model.Bid) *repository.MemoryRepo {
	t.Helper()
	repo := repository.NewMemoryRepo()
	for _, b := range bids {
		_, err := repo.Append(context.Background(), b)
		require.NoError(t, err)
	}
	return repo
}

func placed(id, itemID, userID, name, price string, offset time.Duration) model.Bid {
	return model.Bid{
		BidID:       id,
		ItemID:      itemID,
		UserID:      userID,
		DisplayName: name,
		Price:       model.MustPrice(price),
		PlacedAt:    auctionEnd.Add(-time.Hour + offset),
	}
}

func TestBiddingService_ResolveOutcomes(t *testing.T) {
	items := catalog.NewMemoryCatalog(
		model.Item{ItemID: "X", Title: "Clock", StartingPrice: model.MustPrice("50"), AuctionEndTime: auctionEnd},
		model.Item{ItemID: "Y", Title: "Vase", StartingPrice: model.MustPrice("20"), AuctionEndTime: auctionEnd.Add(24 * time.Hour)},
	)
	ledger := seedLedger(t,
		placed("a-1", "X", "A", "Alice", "100", 0),
		placed("b-1", "X", "B", "Bob", "150", time.Minute),
		placed("a-2", "Y", "A", "Alice", "30", 2*time.Minute),
	)

	tests := []struct {
		name     string
		userID   string
		now      time.Time
		expected []model.Outcome
	}{
		{
			name:   "auction_open_is_ongoing_regardless_of_standing",
			userID: "A",
			now:    auctionEnd.Add(-time.Minute),
			expected: []model.Outcome{
				{ItemID: "X", Status: model.StatusOngoing, BidID: "a-1", UserID: "B", DisplayName: "Bob", Price: pricePtr("150")},
				{ItemID: "Y", Status: model.StatusOngoing, BidID: "a-2", UserID: "A", DisplayName: "Alice", Price: pricePtr("30")},
			},
		},
		{
			name:   "closed_auction_outbid_user_lost",
			userID: "A",
			now:    auctionEnd,
			expected: []model.Outcome{
				{ItemID: "X", Status: model.StatusLost, BidID: "a-1", UserID: "B", DisplayName: "Bob", Price: pricePtr("150")},
				{ItemID: "Y", Status: model.StatusOngoing, BidID: "a-2", UserID: "A", DisplayName: "Alice", Price: pricePtr("30")},
			},
		},
		{
			name:   "closed_auction_highest_bidder_won",
			userID: "B",
			now:    auctionEnd.Add(time.Hour),
			expected: []model.Outcome{
				{ItemID: "X", Status: model.StatusWon, BidID: "b-1", UserID: "B", DisplayName: "Bob", Price: pricePtr("150")},
			},
		},
		{
			name:     "user_without_bids",
			userID:   "C",
			now:      auctionEnd,
			expected: []model.Outcome{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			now := tc.now
			service := NewBiddingService(ledger, items, WithClock(func() time.Time { return now }))

			outcomes, err := service.ResolveOutcomes(context.Background(), tc.userID)
			require.NoError(t, err)
			requireOutcomes(t, tc.expected, outcomes)

			again, err := service.ResolveOutcomes(context.Background(), tc.userID)
			require.NoError(t, err)
			require.Equal(t, outcomes, again)
		})
	}
}

func TestBiddingService_ResolveOutcomes_RepeatedBidsOnOneItem(t *testing.T) {
	items := catalog.NewMemoryCatalog(model.Item{ItemID: "X", AuctionEndTime: auctionEnd})

	tests := []struct {
		name           string
		bids           []model.Bid
		expectedStatus model.OutcomeStatus
		expectedBidID  string
	}{
		{
			name: "later_raise_wins",
			bids: []model.Bid{
				placed("a-1", "X", "A", "Alice", "100", 0),
				placed("b-1", "X", "B", "Bob", "150", time.Minute),
				placed("a-2", "X", "A", "Alice", "200", 2*time.Minute),
			},
			expectedStatus: model.StatusWon,
			expectedBidID:  "a-2",
		},
		{
			name: "all_bids_outbid",
			bids: []model.Bid{
				placed("a-1", "X", "A", "Alice", "100", 0),
				placed("a-2", "X", "A", "Alice", "120", time.Minute),
				placed("b-1", "X", "B", "Bob", "150", 2*time.Minute),
			},
			expectedStatus: model.StatusLost,
			expectedBidID:  "a-2",
		},
		{
			name: "equal_price_earliest_bid_wins",
			bids: []model.Bid{
				placed("b-1", "X", "B", "Bob", "150", time.Minute),
				placed("a-1", "X", "A", "Alice", "150.00", 2*time.Minute),
			},
			expectedStatus: model.StatusLost,
			expectedBidID:  "a-1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service := NewBiddingService(seedLedger(t, tc.bids...), items,
				WithClock(func() time.Time { return auctionEnd }))

			outcomes, err := service.ResolveOutcomes(context.Background(), "A")
			require.NoError(t, err)
			require.Len(t, outcomes, 1)
			require.Equal(t, tc.expectedStatus, outcomes[0].Status)
			require.Equal(t, tc.expectedBidID, outcomes[0].BidID)
		})
	}
}

func TestBiddingService_ResolveOutcomes_Failures(t *testing.T) {
	userBids := []model.Bid{
		placed("a-1", "X", "A", "Alice", "100", 0),
		placed("a-2", "Y", "A", "Alice", "30", time.Minute),
		placed("a-3", "Z", "A", "Alice", "40", 2*time.Minute),
	}

	tests := []struct {
		name          string
		userID        string
		mockSetup     func(ledger *repository.MockLedger, items *catalog.MockCatalog)
		expectError   bool
		expectedError error
		expected      []model.Outcome
	}{
		{
			name:   "list_by_user_unavailable",
			userID: "A",
			mockSetup: func(ledger *repository.MockLedger, items *catalog.MockCatalog) {
				ledger.EXPECT().ListByUser(gomock.Any(), "A").
					Return(nil, biddingerrors.Unavailable("list bids by user", errors.New("timeout")))
			},
			expectError:   true,
			expectedError: biddingerrors.ErrUnavailable,
		},
		{
			name:   "per_item_failures_are_isolated",
			userID: "A",
			mockSetup: func(ledger *repository.MockLedger, items *catalog.MockCatalog) {
				ledger.EXPECT().ListByUser(gomock.Any(), "A").Return(userBids, nil)

				items.EXPECT().GetItem(gomock.Any(), "X").Return(model.Item{ItemID: "X", AuctionEndTime: auctionEnd}, nil).Times(1)
				items.EXPECT().GetItem(gomock.Any(), "Y").Return(model.Item{}, biddingerrors.ErrItemNotFound).Times(1)
				items.EXPECT().GetItem(gomock.Any(), "Z").Return(model.Item{ItemID: "Z", AuctionEndTime: auctionEnd}, nil).Times(1)

				ledger.EXPECT().HighestBid(gomock.Any(), "X").Return(userBids[0], nil)
				ledger.EXPECT().HighestBid(gomock.Any(), "Z").
					Return(model.Bid{}, biddingerrors.Unavailable("highest bid", errors.New("connection reset")))
			},
			expected: []model.Outcome{
				{ItemID: "X", Status: model.StatusWon, BidID: "a-1", UserID: "A", DisplayName: "Alice", Price: pricePtr("100")},
				{ItemID: "Y", Status: model.StatusUnresolved, BidID: "a-2", Error: "item not found"},
				{ItemID: "Z", Status: model.StatusUnresolved, BidID: "a-3", Error: "item temporarily unavailable"},
			},
		},
		{
			name:          "empty_user",
			userID:        "",
			mockSetup:     func(*repository.MockLedger, *catalog.MockCatalog) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidArgument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledger := repository.NewMockLedger(ctrl)
			items := catalog.NewMockCatalog(ctrl)
			service := NewBiddingService(ledger, items, WithClock(func() time.Time { return auctionEnd }))

			tc.mockSetup(ledger, items)

			outcomes, err := service.ResolveOutcomes(context.Background(), tc.userID)

			if tc.expectError {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			requireOutcomes(t, tc.expected, outcomes)
		})
	}
}

func pricePtr(text string) *model.Price {
	p := model.MustPrice(text)
	return &p
}

// requireOutcomes compares prices by value so scale differences do not matter
func requireOutcomes(t *testing.T, expected, actual []model.Outcome) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		want, got := expected[i], actual[i]
		require.Equal(t, want.ItemID, got.ItemID)
		require.Equal(t, want.Status, got.Status)
		require.Equal(t, want.BidID, got.BidID)
		require.Equal(t, want.UserID, got.UserID)
		require.Equal(t, want.DisplayName, got.DisplayName)
		require.Equal(t, want.Error, got.Error)
		if want.Price == nil {
			require.Nil(t, got.Price)
			continue
		}
		require.NotNil(t, got.Price)
		require.Zero(t, want.Price.Compare(*got.Price), "price %s != %s", want.Price.Text(), got.Price.Text())
	}
}
