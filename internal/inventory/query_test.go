package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

func testNow() time.Time {
	return time.Date(2025, 11, 24, 15, 30, 0, 0, time.UTC)
}

func queryFixture() *Query {
	records := []domain.PantryRecord{
		{ID: 1, UserID: 1, ProductID: 1, QuantityClosed: 1, QuantityOpen: 0, MinDesired: 3, ExpiresAt: "2025-11-30"},
		{ID: 2, UserID: 1, ProductID: 2, QuantityClosed: 2, QuantityOpen: 0, MinDesired: 6, ExpiresAt: "2025-12-05"},
		{ID: 3, UserID: 1, ProductID: 1, QuantityClosed: 0, QuantityOpen: 2, MinDesired: 4, ExpiresAt: "2025-11-27"},
		{ID: 4, UserID: 1, ProductID: 5, QuantityWeight: 1.0, MinDesired: 0.5, ExpiresAt: "2025-11-26"},
	}
	return NewQuery(testCatalog, records, testNow())
}

func TestCurrentQuantity(t *testing.T) {
	q := queryFixture()

	assert.Equal(t, float64(1), q.CurrentQuantity(domain.PantryRecord{ProductID: 1, QuantityClosed: 1}))
	assert.Equal(t, float64(3), q.CurrentQuantity(domain.PantryRecord{ProductID: 1, QuantityClosed: 1, QuantityOpen: 2}))
	assert.Equal(t, 1.25, q.CurrentQuantity(domain.PantryRecord{ProductID: 5, QuantityWeight: 1.25, QuantityClosed: 9}))
	assert.Equal(t, float64(0), q.CurrentQuantity(domain.PantryRecord{ProductID: 999, QuantityClosed: 5}),
		"missing catalog product counts as zero, never panics")
}

func TestLowStock(t *testing.T) {
	q := queryFixture()

	low := q.LowStock()
	ids := recordIDs(low)
	// record 1: qty 1 < 3, record 2: qty 2 < 6, record 3: qty 2 < 4; record 4: 1.0 >= 0.5
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
}

func TestExpiringSoonHorizon(t *testing.T) {
	q := queryFixture()

	// now = 2025-11-24: record 4 (26th, 2d), record 3 (27th, 3d) within 5 days;
	// record 1 (30th, 6d) and record 2 (dec 5) outside.
	soon := q.ExpiringSoon(5)
	assert.ElementsMatch(t, []int64{3, 4}, recordIDs(soon))
}

func TestExpiringSoonIncludesTodayAndPast(t *testing.T) {
	records := []domain.PantryRecord{
		{ID: 1, ProductID: 1, ExpiresAt: "2025-11-24"}, // today
		{ID: 2, ProductID: 1, ExpiresAt: "2025-11-01"}, // already expired
		{ID: 3, ProductID: 1, ExpiresAt: ""},           // unknown: never expiring
	}
	q := NewQuery(testCatalog, records, testNow())
	assert.ElementsMatch(t, []int64{1, 2}, recordIDs(q.ExpiringSoon(5)))
}

func TestOpenUnitCountExcludesWeightTracked(t *testing.T) {
	records := []domain.PantryRecord{
		{ID: 1, ProductID: 1, QuantityOpen: 2},
		{ID: 2, ProductID: 2, QuantityOpen: 3},
		{ID: 3, ProductID: 5, QuantityOpen: 7}, // weight-tracked, excluded
	}
	q := NewQuery(testCatalog, records, testNow())
	assert.Equal(t, 5, q.OpenUnitCount())
}

func TestFilterAndSortSearchMatchesNameAndBrand(t *testing.T) {
	q := queryFixture()

	byName := q.FilterAndSort(FilterOptions{Search: "mil", SortKey: SortByName})
	assert.ElementsMatch(t, []int64{1, 3}, recordIDs(byName))

	byBrand := q.FilterAndSort(FilterOptions{Search: "BUTCHER", SortKey: SortByName})
	assert.ElementsMatch(t, []int64{4}, recordIDs(byBrand))
}

func TestFilterAndSortTypeFilter(t *testing.T) {
	q := queryFixture()

	weightOnly := q.FilterAndSort(FilterOptions{TypeFilter: "weight"})
	assert.ElementsMatch(t, []int64{4}, recordIDs(weightOnly))

	all := q.FilterAndSort(FilterOptions{TypeFilter: "all"})
	assert.Len(t, all, 4)
}

func TestFilterAndSortOrderings(t *testing.T) {
	q := queryFixture()

	byName := q.FilterAndSort(FilterOptions{SortKey: SortByName})
	names := make([]string, 0, len(byName))
	for _, rec := range byName {
		p, _ := q.Product(rec)
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Beef", "Eggs", "Milk", "Milk"}, names)

	byQuantity := q.FilterAndSort(FilterOptions{SortKey: SortByQuantity})
	assert.Equal(t, int64(2), byQuantity[0].ID, "largest quantity first")

	byExpiry := q.FilterAndSort(FilterOptions{SortKey: SortByExpiry})
	assert.Equal(t, []int64{4, 3, 1, 2}, recordIDs(byExpiry))
}

func TestFilterAndSortMissingExpirySortsLast(t *testing.T) {
	records := []domain.PantryRecord{
		{ID: 1, ProductID: 1, ExpiresAt: ""},
		{ID: 2, ProductID: 2, ExpiresAt: "2025-12-01"},
	}
	q := NewQuery(testCatalog, records, testNow())
	sorted := q.FilterAndSort(FilterOptions{SortKey: SortByExpiry})
	assert.Equal(t, []int64{2, 1}, recordIDs(sorted))
}

func TestOpenItemsView(t *testing.T) {
	q := queryFixture()

	open := q.OpenItems(FilterOptions{SortKey: SortByExpiry})
	require.Len(t, open, 1)
	assert.Equal(t, int64(3), open[0].ID)

	none := q.OpenItems(FilterOptions{Search: "beef"})
	assert.Empty(t, none, "weight-tracked products never appear in the open view")
}

func TestCategoryDistribution(t *testing.T) {
	q := queryFixture()
	dist := q.CategoryDistribution()
	assert.Equal(t, map[string]int{"dairy": 3, "meat": 1}, dist)
}

func TestStockBarsScaling(t *testing.T) {
	records := []domain.PantryRecord{
		{ID: 1, ProductID: 1, QuantityClosed: 10},
		{ID: 2, ProductID: 2, QuantityClosed: 5},
		{ID: 3, ProductID: 5, QuantityWeight: 0.1},
	}
	q := NewQuery(testCatalog, records, testNow())

	bars := q.StockBars()
	require.Len(t, bars, 3)
	assert.Equal(t, 100, bars[0].Percent)
	assert.Equal(t, 50, bars[1].Percent)
	assert.Equal(t, 8, bars[2].Percent, "small stocks are floored so they stay visible")
}

func recordIDs(recs []domain.PantryRecord) []int64 {
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}
