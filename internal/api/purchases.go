package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elifnazdmn/HomeStock-Web/internal/inventory"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
	"github.com/elifnazdmn/HomeStock-Web/pkg/metrics"
)

type purchasePayload struct {
	StoreName    string                   `json:"storeName" validate:"required"`
	PurchaseDate string                   `json:"purchaseDate" validate:"required"`
	Items        []inventory.PurchaseLine `json:"items" validate:"required,min=1"`
}

// createPurchase merges a purchase form into the caller's pantry. The
// merge is all-or-nothing; upstream delivery happens asynchronously
// through the outbox and never blocks the response.
func createPurchase(c echo.Context) error {
	session := webserver.CurrentSession(c)
	if session == nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session", nil)
	}

	var payload purchasePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse purchase body", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Store, date and at least one item are required", err.Error())
	}

	db := webserver.GetDB(c)
	reconciler := inventory.NewReconciler(
		inventory.NewGormProductRepository(db),
		inventory.NewGormPantryRepository(db),
		eventBus,
	)

	header := inventory.PurchaseHeader{
		StoreName:    payload.StoreName,
		PurchaseDate: payload.PurchaseDate,
	}
	records, err := reconciler.Apply(c.Request().Context(), session.UserID, header, payload.Items)
	if err != nil {
		return failFromError(c, err)
	}

	metrics.IncrCounter("homestock_purchase_applied", 1)
	return ok(c, map[string]interface{}{
		"records": records,
	})
}
