package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/fanout"
	model "bid-ledger/internal/models"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConsumer_Consume(t *testing.T) {
	events := []fanout.Event{
		{BidID: "b1", ItemID: "item1", Message: "New bid for item item1 at price 100"},
		{BidID: "b2", ItemID: "item1", Message: "New bid for item item1 at price 150"},
	}

	tests := []struct {
		name        string
		mockSetup   func(store *MockStore, saved *[]model.Notification)
		expectError bool
		wantSaved   int
	}{
		{
			name: "saves_every_event",
			mockSetup: func(store *MockStore, saved *[]model.Notification) {
				store.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n model.Notification) error {
						*saved = append(*saved, n)
						return nil
					}).Times(2)
			},
			wantSaved: 2,
		},
		{
			name: "first_failure_fails_batch",
			mockSetup: func(store *MockStore, saved *[]model.Notification) {
				store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockStore(ctrl)
			var saved []model.Notification
			tc.mockSetup(store, &saved)

			consumer := NewConsumer(store,
				WithConsumerTimeout(time.Second),
				WithConsumerClock(func() time.Time { return t0 }),
			)

			err := consumer.Consume(context.Background(), events)
			if tc.expectError {
				require.ErrorIs(t, err, biddingerrors.ErrUnavailable)
				return
			}
			require.NoError(t, err)
			require.Len(t, saved, tc.wantSaved)
			for i, n := range saved {
				_, parseErr := uuid.Parse(n.NotificationID)
				require.NoError(t, parseErr)
				require.Equal(t, events[i].Message, n.Message)
				require.Equal(t, t0, n.Timestamp)
			}
			require.NotEqual(t, saved[0].NotificationID, saved[1].NotificationID)
		})
	}
}

func TestConsumer_DuplicateDeliveryKeepsBoth(t *testing.T) {
	store := NewMemoryStore()
	consumer := NewConsumer(store)
	event := fanout.Event{BidID: "b1", Message: "New bid for item item1 at price 100"}

	require.NoError(t, consumer.Consume(context.Background(), []fanout.Event{event}))
	require.NoError(t, consumer.Consume(context.Background(), []fanout.Event{event}))

	all, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}
