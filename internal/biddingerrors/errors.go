package biddingerrors

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("unavailable")
	ErrInternal        = errors.New("internal error")
)

// Repository-level errors
var (
	ErrItemNotFound = fmt.Errorf("item %w", ErrNotFound)
	ErrNoBids       = fmt.Errorf("no bids found for item: %w", ErrNotFound)
)

// business logic errors
var (
	ErrInvalidBid   = fmt.Errorf("invalid bid: %w", ErrInvalidArgument)
	ErrInvalidPrice = fmt.Errorf("invalid price: %w", ErrInvalidArgument)
)

// Unavailable wraps a backing store or transport failure so callers can treat it as retryable.
// Deadline and cancellation errors keep their identity alongside ErrUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: timeout: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
