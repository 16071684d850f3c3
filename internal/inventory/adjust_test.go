package inventory

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

func TestMarkOpened(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, UserID: 1, ProductID: 1, QuantityClosed: 2, QuantityOpen: 1})
	a := NewAdjuster(pantry)

	rec, err := a.MarkOpened(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.QuantityClosed)
	assert.Equal(t, 2, rec.QuantityOpen)
}

func TestMarkOpenedWithoutClosedStock(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, UserID: 1, ProductID: 1, QuantityClosed: 0, QuantityOpen: 3})
	a := NewAdjuster(pantry)
	before := pantry.snapshot()

	_, err := a.MarkOpened(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, before, pantry.snapshot(), "failed adjustment leaves the record unchanged")
}

func TestUseQuantityRejectsNonPositiveAmount(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, QuantityOpen: 5})
	a := NewAdjuster(pantry)

	for _, amount := range []float64{0, -1} {
		_, err := a.UseQuantity(context.Background(), 1, ModeUnit, amount)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidAmount))
	}
}

func TestUseQuantityUnitMode(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, QuantityOpen: 2})
	a := NewAdjuster(pantry)

	rec, err := a.UseQuantity(context.Background(), 1, ModeUnit, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.QuantityOpen)

	_, err = a.UseQuantity(context.Background(), 1, ModeUnit, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
}

func TestUseQuantityWeightModeRoundsToTwoDecimals(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, QuantityWeight: 1.0})
	a := NewAdjuster(pantry)

	rec, err := a.UseQuantity(context.Background(), 1, ModeWeight, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.7, rec.QuantityWeight, "remainder is rounded to exactly two decimals")
}

func TestUseQuantityWeightModeInsufficient(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, QuantityWeight: 0.2})
	a := NewAdjuster(pantry)

	_, err := a.UseQuantity(context.Background(), 1, ModeWeight, 0.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
}

func TestUseQuantityUnknownMode(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 1, QuantityWeight: 1})
	a := NewAdjuster(pantry)

	_, err := a.UseQuantity(context.Background(), 1, "volume", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}
