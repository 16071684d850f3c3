package inventory

import (
	"context"
	"testing"

	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

var testCatalog = []domain.Product{
	{ID: 1, Name: "Milk", Brand: "Brand A", Category: "dairy", Unit: "1L", QuantityType: domain.QuantityTypeUnit},
	{ID: 2, Name: "Eggs", Brand: "Brand B", Category: "dairy", Unit: "12 pieces", QuantityType: domain.QuantityTypeUnit},
	{ID: 5, Name: "Beef", Brand: "Butcher X", Category: "meat", Unit: "kg", QuantityType: domain.QuantityTypeWeight},
}

func newTestReconciler(pantry *memPantry) *Reconciler {
	return NewReconciler(newMemProducts(testCatalog...), pantry, nil)
}

func validHeader() PurchaseHeader {
	return PurchaseHeader{StoreName: "Migros", PurchaseDate: "2025-11-20"}
}

func TestApplyRejectsIncompleteHeader(t *testing.T) {
	pantry := newMemPantry()
	r := newTestReconciler(pantry)

	_, err := r.Apply(context.Background(), 1, PurchaseHeader{StoreName: "  ", PurchaseDate: "2025-11-20"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = r.Apply(context.Background(), 1, PurchaseHeader{StoreName: "Migros"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Empty(t, pantry.snapshot())
}

func TestApplyRejectsPurchaseWithNoValidItems(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 10, UserID: 1, ProductID: 1, QuantityClosed: 2, MinDesired: 1})
	r := newTestReconciler(pantry)
	before := pantry.snapshot()

	lines := []PurchaseLine{
		{ProductID: 999, Quantity: "2", UnitType: "unit"},  // unknown product
		{ProductID: 1, Quantity: "abc", UnitType: "unit"},  // unparseable quantity
		{ProductID: 1, Quantity: "-3", UnitType: "unit"},   // non-positive
	}
	_, err := r.Apply(context.Background(), 1, validHeader(), lines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, before, pantry.snapshot(), "failed purchase must leave the store untouched")
}

func TestApplyCreatesRecordWithDefaults(t *testing.T) {
	pantry := newMemPantry()
	r := newTestReconciler(pantry)

	recs, err := r.Apply(context.Background(), 1, validHeader(), []PurchaseLine{
		{ProductID: 5, Quantity: "1,5", UnitType: "kg", ExpiryDate: "2025-11-26"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(5), rec.ProductID)
	assert.InDelta(t, 1.5, rec.QuantityWeight, 1e-9)
	assert.Equal(t, 0.5, rec.MinDesired)
	assert.Equal(t, "2025-11-26", rec.ExpiresAt)
	assert.Equal(t, 0, rec.QuantityClosed)
	assert.Equal(t, 0, rec.QuantityOpen)
}

func TestApplyUnitDefaultsAndRounding(t *testing.T) {
	pantry := newMemPantry()
	r := newTestReconciler(pantry)

	recs, err := r.Apply(context.Background(), 1, validHeader(), []PurchaseLine{
		{ProductID: 1, Quantity: "3.7", UnitType: "unit"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 4, recs[0].QuantityClosed, "unit quantities round to the nearest integer")
	assert.Equal(t, float64(1), recs[0].MinDesired)
}

func TestApplyGramsNormalizeToKilograms(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 20, UserID: 1, ProductID: 5, QuantityWeight: 1.0, MinDesired: 0.5})
	r := newTestReconciler(pantry)

	recs, err := r.Apply(context.Background(), 1, validHeader(), []PurchaseLine{
		{ProductID: 5, Quantity: "500", UnitType: "g"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 1.5, recs[0].QuantityWeight, 1e-9)
}

func TestApplyAccumulatesIntoClosedStock(t *testing.T) {
	pantry := newMemPantry(domain.PantryRecord{ID: 30, UserID: 1, ProductID: 1, QuantityClosed: 1, QuantityOpen: 2, MinDesired: 3})
	r := newTestReconciler(pantry)

	recs, err := r.Apply(context.Background(), 1, validHeader(), []PurchaseLine{
		{ProductID: 1, Quantity: "2", UnitType: "unit"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].QuantityClosed, "new purchases always arrive sealed")
	assert.Equal(t, 2, recs[0].QuantityOpen)
	assert.Equal(t, float64(3), recs[0].MinDesired, "existing threshold is preserved")
}

func TestApplyExpiryMergeEarliestWins(t *testing.T) {
	orders := [][]string{
		{"2025-12-01", "2025-11-20"},
		{"2025-11-20", "2025-12-01"},
	}
	for _, dates := range orders {
		pantry := newMemPantry()
		r := newTestReconciler(pantry)

		lines := []PurchaseLine{
			{ProductID: 1, Quantity: "1", UnitType: "unit", ExpiryDate: dates[0]},
			{ProductID: 1, Quantity: "1", UnitType: "unit", ExpiryDate: dates[1]},
		}
		recs, err := r.Apply(context.Background(), 1, validHeader(), lines)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "2025-11-20", recs[0].ExpiresAt, "earliest expiry wins regardless of merge order")
	}
}

func TestApplySkipsInvalidLinesButKeepsValidOnes(t *testing.T) {
	pantry := newMemPantry()
	r := newTestReconciler(pantry)

	recs, err := r.Apply(context.Background(), 1, validHeader(), []PurchaseLine{
		{ProductID: 999, Quantity: "2", UnitType: "unit"},
		{ProductID: 2, Quantity: "6", UnitType: "unit"},
		{ProductID: 2, Quantity: "zero", UnitType: "unit"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(2), recs[0].ProductID)
	assert.Equal(t, 6, recs[0].QuantityClosed)
}

func TestApplyQuantityDeltaMatchesContribution(t *testing.T) {
	pantry := newMemPantry(
		domain.PantryRecord{ID: 40, UserID: 1, ProductID: 1, QuantityClosed: 2, QuantityOpen: 1, MinDesired: 1},
		domain.PantryRecord{ID: 41, UserID: 1, ProductID: 5, QuantityWeight: 0.75, MinDesired: 0.5},
	)
	r := newTestReconciler(pantry)

	products, _ := newMemProducts(testCatalog...).ListAll(context.Background())
	beforeRecs, _ := pantry.ListByUser(context.Background(), 1)
	before := NewQuery(products, beforeRecs, testNow())

	_, err := r.Apply(context.Background(), 1, validHeader(), []PurchaseLine{
		{ProductID: 1, Quantity: "3", UnitType: "unit"},
		{ProductID: 5, Quantity: "250", UnitType: "g"},
	})
	require.NoError(t, err)

	afterRecs, _ := pantry.ListByUser(context.Background(), 1)
	after := NewQuery(products, afterRecs, testNow())

	for _, rec := range afterRecs {
		var prev domain.PantryRecord
		for _, b := range beforeRecs {
			if b.ID == rec.ID {
				prev = b
			}
		}
		delta := after.CurrentQuantity(rec) - before.CurrentQuantity(prev)
		switch rec.ProductID {
		case 1:
			assert.InDelta(t, 3, delta, 1e-9)
		case 5:
			assert.InDelta(t, 0.25, delta, 1e-9)
		}
	}
}

func TestApplyPublishesPurchaseEvent(t *testing.T) {
	pantry := newMemPantry()
	bus := evbus.New()

	var got PurchaseEvent
	require.NoError(t, bus.Subscribe(TopicPurchaseApplied, func(ev PurchaseEvent) {
		got = ev
	}))

	r := NewReconciler(newMemProducts(testCatalog...), pantry, bus)
	_, err := r.Apply(context.Background(), 7, PurchaseHeader{StoreName: " Migros ", PurchaseDate: "2025-11-20"}, []PurchaseLine{
		{ProductID: 5, Quantity: "1,5", UnitType: "kg", ExpiryDate: "2025-11-26"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "Migros", got.StoreName, "store name is trimmed in the outbound event")
	assert.Equal(t, "2025-11-20", got.PurchaseDate)
	require.Len(t, got.Items, 1)
	assert.InDelta(t, 1.5, got.Items[0].Quantity, 1e-9, "event carries the normalized quantity")
	assert.Equal(t, "2025-11-26", got.Items[0].ExpiryDate)
}
