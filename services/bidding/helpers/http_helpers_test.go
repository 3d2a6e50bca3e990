package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"bid-ledger/internal/biddingerrors"

	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "item_not_found",
			err:             fmt.Errorf("service: %w", biddingerrors.ErrItemNotFound),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "item not found",
		},
		{
			name:            "no_bids",
			err:             fmt.Errorf("service: %w", biddingerrors.ErrNoBids),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "no bids found for item",
		},
		{
			name:            "invalid_price",
			err:             fmt.Errorf("service: %w", biddingerrors.ErrInvalidPrice),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "invalid price",
		},
		{
			name:            "invalid_bid",
			err:             fmt.Errorf("service: %w - missing itemID or userID", biddingerrors.ErrInvalidBid),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "invalid bid details",
		},
		{
			name:            "missing_user_query",
			err:             fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidArgument),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "invalid request",
		},
		{
			name:            "unavailable",
			err:             biddingerrors.Unavailable("list bids", context.DeadlineExceeded),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedMessage: "service temporarily unavailable",
		},
		{
			name:            "unknown",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, message := MapErrorToHTTP(tc.err)
			require.Equal(t, tc.expectedStatus, status)
			require.Equal(t, tc.expectedMessage, message)
		})
	}
}
