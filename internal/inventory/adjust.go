package inventory

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

// Adjustment modes for UseQuantity.
const (
	ModeUnit   = "unit"
	ModeWeight = "weight"
)

// Adjuster applies manual stock operations to single pantry records.
type Adjuster struct {
	pantry PantryRepository
}

func NewAdjuster(pantry PantryRepository) *Adjuster {
	return &Adjuster{pantry: pantry}
}

// MarkOpened moves one sealed unit into the opened pool.
func (a *Adjuster) MarkOpened(ctx context.Context, recordID int64) (*domain.PantryRecord, error) {
	rec, err := a.pantry.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.QuantityClosed <= 0 {
		return nil, errors.Wrap(ErrInsufficientStock, "no closed items to open")
	}
	rec.QuantityClosed--
	rec.QuantityOpen++
	if err := a.pantry.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UseQuantity consumes stock from a record. Unit mode draws from the
// opened pool; weight mode draws kilograms, rounding the remainder to two
// decimal places.
func (a *Adjuster) UseQuantity(ctx context.Context, recordID int64, mode string, amount float64) (*domain.PantryRecord, error) {
	if amount <= 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "amount must be positive")
	}

	rec, err := a.pantry.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeUnit:
		n := int(math.Round(amount))
		if rec.QuantityOpen < n {
			return nil, errors.Wrap(ErrInsufficientStock, "not enough open items")
		}
		rec.QuantityOpen -= n
	case ModeWeight:
		if rec.QuantityWeight < amount {
			return nil, errors.Wrap(ErrInsufficientStock, "not enough kilograms available")
		}
		rec.QuantityWeight = math.Round((rec.QuantityWeight-amount)*100) / 100
	default:
		return nil, errors.Wrapf(ErrInvalidAmount, "unknown mode %q", mode)
	}

	if err := a.pantry.Save(ctx, rec); err != nil {
		return nil, err
	}

	zap.L().Debug("stock adjusted",
		zap.Int64("record_id", rec.ID),
		zap.String("mode", mode),
		zap.Float64("amount", amount))
	return rec, nil
}
