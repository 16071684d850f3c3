package inventory

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
)

// TopicPurchaseApplied is published after a purchase has been merged into
// the pantry store. Subscribers (outbox, metrics) must not assume the
// publish blocks the merge: delivery upstream is best effort.
const TopicPurchaseApplied = "pantry.purchase.applied"

// PurchaseHeader describes where and when a purchase happened.
type PurchaseHeader struct {
	StoreName    string `json:"storeName"`
	PurchaseDate string `json:"purchaseDate"`
}

// PurchaseLine is one raw row of the purchase form. Quantity is kept as
// entered, comma decimal separators included.
type PurchaseLine struct {
	ProductID  int64  `json:"productId"`
	Quantity   string `json:"quantity"`
	UnitType   string `json:"unitType"` // unit | kg | g | ml | L; only g changes the math
	ExpiryDate string `json:"expiryDate"`
}

// NormalizedLine is a validated line with the quantity resolved to the
// product's tracking unit (count or kilograms).
type NormalizedLine struct {
	ProductID  int64   `json:"productId"`
	Quantity   float64 `json:"quantity"`
	UnitType   string  `json:"unitType"`
	ExpiryDate string  `json:"expiryDate,omitempty"`
}

// PurchaseEvent is the outbound record of an applied purchase.
type PurchaseEvent struct {
	UserID       int64            `json:"userId"`
	StoreName    string           `json:"storeName"`
	PurchaseDate string           `json:"purchaseDate"`
	Items        []NormalizedLine `json:"items"`
}

// Reconciler merges purchase submissions into the pantry record store.
type Reconciler struct {
	products ProductRepository
	pantry   PantryRepository
	bus      evbus.Bus
}

func NewReconciler(products ProductRepository, pantry PantryRepository, bus evbus.Bus) *Reconciler {
	return &Reconciler{products: products, pantry: pantry, bus: bus}
}

// Apply validates and merges a purchase for the given user. The merge is
// all-or-nothing: nothing is persisted unless the header is complete and
// at least one line item is valid. On success the updated records are
// returned and a PurchaseEvent is published for upstream delivery.
func (r *Reconciler) Apply(ctx context.Context, userID int64, header PurchaseHeader, lines []PurchaseLine) ([]domain.PantryRecord, error) {
	storeName := strings.TrimSpace(header.StoreName)
	purchaseDate, dateOK := normalizeISODate(header.PurchaseDate)
	if storeName == "" || !dateOK {
		return nil, errors.Wrap(ErrValidation, "header incomplete")
	}

	// Staged working copies, keyed by product. Mutations happen here and
	// are only written back once the whole purchase has been validated.
	staged := make(map[int64]*domain.PantryRecord)
	var ordered []*domain.PantryRecord
	var items []NormalizedLine

	for _, line := range lines {
		product, err := r.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			continue // unknown product: skip the line
		}

		quantity, err := parseQuantity(line.Quantity)
		if err != nil || quantity <= 0 {
			continue
		}

		if product.IsWeightTracked() {
			if line.UnitType == "g" {
				quantity = quantity / 1000
			}
		} else {
			// unit-tracked stock is always whole counts
			quantity = math.Round(quantity)
		}

		expiry, _ := normalizeISODate(line.ExpiryDate)

		items = append(items, NormalizedLine{
			ProductID:  product.ID,
			Quantity:   quantity,
			UnitType:   line.UnitType,
			ExpiryDate: expiry,
		})

		rec, ok := staged[product.ID]
		if !ok {
			existing, err := r.pantry.GetByUserAndProduct(ctx, userID, product.ID)
			switch {
			case err == nil:
				copied := *existing
				rec = &copied
			case errors.Is(err, gorm.ErrRecordNotFound):
				rec = &domain.PantryRecord{
					ID:         common.UUIDint64(),
					UserID:     userID,
					ProductID:  product.ID,
					MinDesired: defaultMinDesired(product),
				}
			default:
				return nil, err
			}
			staged[product.ID] = rec
			ordered = append(ordered, rec)
		}

		if product.IsWeightTracked() {
			rec.QuantityWeight += quantity
		} else {
			rec.QuantityClosed += int(quantity)
		}

		// earliest-wins expiry merge, lexical ISO compare
		if expiry != "" && (rec.ExpiresAt == "" || expiry < rec.ExpiresAt) {
			rec.ExpiresAt = expiry
		}
	}

	if len(items) == 0 {
		return nil, errors.Wrap(ErrValidation, "no valid items")
	}

	if err := r.pantry.SaveAll(ctx, ordered); err != nil {
		return nil, err
	}

	if r.bus != nil {
		r.bus.Publish(TopicPurchaseApplied, PurchaseEvent{
			UserID:       userID,
			StoreName:    storeName,
			PurchaseDate: purchaseDate,
			Items:        items,
		})
	}

	zap.L().Info("purchase reconciled",
		zap.Int64("user_id", userID),
		zap.String("store", storeName),
		zap.Int("items", len(items)),
		zap.Int("records", len(ordered)))

	result := make([]domain.PantryRecord, 0, len(ordered))
	for _, rec := range ordered {
		result = append(result, *rec)
	}
	return result, nil
}

func defaultMinDesired(product *domain.Product) float64 {
	if product.IsWeightTracked() {
		return 0.5
	}
	return 1
}

// parseQuantity accepts locale comma decimals ("1,5") as well as periods.
func parseQuantity(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return strconv.ParseFloat(normalized, 64)
}

// normalizeISODate parses a date leniently and reduces it to YYYY-MM-DD.
// An empty or unparseable input yields ("", false).
func normalizeISODate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
