package inventory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

// maxDateSentinel sorts records without an expiry date last.
const maxDateSentinel = "9999-12-31"

// Sort keys accepted by FilterAndSort.
const (
	SortByName     = "name"
	SortByQuantity = "quantity"
	SortByExpiry   = "expiry"
)

// FilterOptions narrows and orders a pantry view.
type FilterOptions struct {
	Search     string // case-insensitive substring on product name or brand
	TypeFilter string // all | unit | weight
	SortKey    string // name | quantity | expiry
}

// StockBar is one column of the dashboard stock chart, scaled against the
// largest quantity in the set.
type StockBar struct {
	Record   domain.PantryRecord `json:"record"`
	Product  domain.Product      `json:"product"`
	Quantity float64             `json:"quantity"`
	Percent  int                 `json:"percent"`
}

// Query derives dashboard metrics and filtered views from a snapshot of
// the catalog and one user's pantry records. It never mutates its inputs.
type Query struct {
	products map[int64]domain.Product
	records  []domain.PantryRecord
	now      time.Time
	coll     *collate.Collator
}

func NewQuery(products []domain.Product, records []domain.PantryRecord, now time.Time) *Query {
	index := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return &Query{
		products: index,
		records:  records,
		now:      now,
		coll:     collate.New(language.Und, collate.IgnoreCase),
	}
}

// Product resolves a record's catalog entry.
func (q *Query) Product(rec domain.PantryRecord) (domain.Product, bool) {
	p, ok := q.products[rec.ProductID]
	return p, ok
}

// CurrentQuantity returns kilograms for weight-tracked products and
// closed+open counts for unit-tracked ones. A record whose product is
// missing from the catalog counts as zero.
func (q *Query) CurrentQuantity(rec domain.PantryRecord) float64 {
	product, ok := q.products[rec.ProductID]
	if !ok {
		return 0
	}
	if product.IsWeightTracked() {
		return rec.QuantityWeight
	}
	return float64(rec.QuantityClosed + rec.QuantityOpen)
}

// LowStock returns records whose current quantity is below the desired minimum.
func (q *Query) LowStock() []domain.PantryRecord {
	var out []domain.PantryRecord
	for _, rec := range q.records {
		if q.CurrentQuantity(rec) < rec.MinDesired {
			out = append(out, rec)
		}
	}
	return out
}

// ExpiringSoon returns records expiring within horizonDays calendar days.
// A record expiring today or already past counts as expiring.
func (q *Query) ExpiringSoon(horizonDays int) []domain.PantryRecord {
	var out []domain.PantryRecord
	for _, rec := range q.records {
		d, ok := q.daysUntil(rec.ExpiresAt)
		if ok && d <= horizonDays {
			out = append(out, rec)
		}
	}
	return out
}

// OpenUnitCount sums opened units across unit-tracked products.
// Weight-tracked products have no "open" concept and are excluded.
func (q *Query) OpenUnitCount() int {
	sum := 0
	for _, rec := range q.records {
		if product, ok := q.products[rec.ProductID]; ok && !product.IsWeightTracked() {
			sum += rec.QuantityOpen
		}
	}
	return sum
}

// TotalProducts returns the number of tracked pantry records.
func (q *Query) TotalProducts() int {
	return len(q.records)
}

// CategoryDistribution counts records per product category.
func (q *Query) CategoryDistribution() map[string]int {
	dist := make(map[string]int)
	for _, rec := range q.records {
		product, ok := q.products[rec.ProductID]
		if !ok {
			continue
		}
		category := product.Category
		if category == "" {
			category = "Other"
		}
		dist[category]++
	}
	return dist
}

// StockBars returns chart columns with heights scaled to the largest
// quantity; columns are floored at 8% so small stocks stay visible.
func (q *Query) StockBars() []StockBar {
	var bars []StockBar
	var quantities []float64
	for _, rec := range q.records {
		product, ok := q.products[rec.ProductID]
		if !ok {
			continue
		}
		qty := q.CurrentQuantity(rec)
		bars = append(bars, StockBar{Record: rec, Product: product, Quantity: qty})
		quantities = append(quantities, qty)
	}
	max, err := stats.Max(quantities)
	if err != nil || max < 1 {
		max = 1
	}
	for i := range bars {
		percent := int(math.Round(bars[i].Quantity / max * 100))
		if percent < 8 {
			percent = 8
		}
		bars[i].Percent = percent
	}
	return bars
}

// FilterAndSort applies search, type filter and ordering to the snapshot.
func (q *Query) FilterAndSort(opt FilterOptions) []domain.PantryRecord {
	items := q.filter(q.records, opt.Search, opt.TypeFilter)
	q.sortRecords(items, opt.SortKey)
	return items
}

// OpenItems returns unit-tracked records with opened stock, searched and
// sorted the same way as the all-products view.
func (q *Query) OpenItems(opt FilterOptions) []domain.PantryRecord {
	var opened []domain.PantryRecord
	for _, rec := range q.records {
		product, ok := q.products[rec.ProductID]
		if ok && !product.IsWeightTracked() && rec.QuantityOpen > 0 {
			opened = append(opened, rec)
		}
	}
	items := q.filter(opened, opt.Search, "")
	q.sortRecords(items, opt.SortKey)
	return items
}

func (q *Query) filter(records []domain.PantryRecord, search, typeFilter string) []domain.PantryRecord {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.PantryRecord, 0, len(records))
	for _, rec := range records {
		product, ok := q.products[rec.ProductID]
		if !ok {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(product.Name), term) &&
			!strings.Contains(strings.ToLower(product.Brand), term) {
			continue
		}
		if typeFilter != "" && typeFilter != "all" && product.QuantityType != typeFilter {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (q *Query) sortRecords(items []domain.PantryRecord, sortKey string) {
	sort.SliceStable(items, func(i, j int) bool {
		switch sortKey {
		case SortByQuantity:
			return q.CurrentQuantity(items[i]) > q.CurrentQuantity(items[j])
		case SortByExpiry:
			return expiryOrDefault(items[i]) < expiryOrDefault(items[j])
		default:
			pi, _ := q.products[items[i].ProductID]
			pj, _ := q.products[items[j].ProductID]
			return q.coll.CompareString(pi.Name, pj.Name) < 0
		}
	})
}

func expiryOrDefault(rec domain.PantryRecord) string {
	if rec.ExpiresAt == "" {
		return maxDateSentinel
	}
	return rec.ExpiresAt
}

// daysUntil returns the calendar-day distance from now to an ISO date.
func (q *Query) daysUntil(isoDate string) (int, bool) {
	if isoDate == "" {
		return 0, false
	}
	target, err := time.ParseInLocation("2006-01-02", isoDate, q.now.Location())
	if err != nil {
		return 0, false
	}
	today := time.Date(q.now.Year(), q.now.Month(), q.now.Day(), 0, 0, 0, 0, q.now.Location())
	return int(target.Sub(today).Hours() / 24), true
}
