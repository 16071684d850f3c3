package inventory

import "github.com/pkg/errors"

// Error kinds surfaced to the API layer. All are recoverable; the caller
// maps them to a user-visible message.
var (
	// ErrValidation covers an incomplete purchase header and a purchase
	// with no usable line items.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned for non-positive adjustment amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientStock is returned when an adjustment exceeds the
	// available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)
