package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/inventory"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
)

const defaultExpiryHorizonDays = 5

// pathUserID resolves the :userId parameter and enforces that non-admin
// sessions only ever see their own pantry. On failure the error response
// has already been written and the second return is false.
func pathUserID(c echo.Context) (int64, bool) {
	userID := cast.ToInt64(c.Param("userId"))
	if userID <= 0 {
		_ = fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid user id", nil)
		return 0, false
	}
	session := webserver.CurrentSession(c)
	if session == nil {
		_ = fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session", nil)
		return 0, false
	}
	if session.Role != domain.RoleAdmin && session.UserID != userID {
		_ = fail(c, http.StatusForbidden, "FORBIDDEN", "Pantry belongs to another user", nil)
		return 0, false
	}
	return userID, true
}

// failFromError maps domain errors onto the error envelope.
func failFromError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for this operation", err.Error())
	case errors.Is(err, inventory.ErrInvalidAmount):
		return fail(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount is not usable", err.Error())
	case errors.Is(err, inventory.ErrValidation):
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation", err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error", err.Error())
	}
}

// newPantryQuery snapshots one user's records plus the catalog.
func newPantryQuery(c echo.Context, userID int64) (*inventory.Query, []domain.PantryRecord, error) {
	ctx := c.Request().Context()
	db := webserver.GetDB(c)
	products, err := inventory.NewGormProductRepository(db).ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := inventory.NewGormPantryRepository(db).ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return inventory.NewQuery(products, records, time.Now()), records, nil
}

func filterOptions(c echo.Context) inventory.FilterOptions {
	return inventory.FilterOptions{
		Search:     c.QueryParam("search"),
		TypeFilter: c.QueryParam("type"),
		SortKey:    c.QueryParam("sort"),
	}
}

func expiryHorizonDays() int {
	horizon := cast.ToInt(webserver.SettingsString("pantry", "ExpiryHorizonDays"))
	if horizon <= 0 {
		return defaultExpiryHorizonDays
	}
	return horizon
}

// listPantry returns the raw pantry records of one user.
func listPantry(c echo.Context) error {
	userID, authorized := pathUserID(c)
	if !authorized {
		return nil
	}
	records, err := inventory.NewGormPantryRepository(webserver.GetDB(c)).
		ListByUser(c.Request().Context(), userID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, records)
}

// pantryDashboard aggregates the home-view metrics in one response.
func pantryDashboard(c echo.Context) error {
	userID, authorized := pathUserID(c)
	if !authorized {
		return nil
	}
	query, _, err := newPantryQuery(c, userID)
	if err != nil {
		return failFromError(c, err)
	}
	horizon := expiryHorizonDays()
	return ok(c, map[string]interface{}{
		"totalProducts":        query.TotalProducts(),
		"lowStock":             query.LowStock(),
		"expiringSoon":         query.ExpiringSoon(horizon),
		"expiryHorizonDays":    horizon,
		"openUnitCount":        query.OpenUnitCount(),
		"categoryDistribution": query.CategoryDistribution(),
		"stockBars":            query.StockBars(),
	})
}

// pantryItem pairs a record with its resolved product and display quantity.
type pantryItem struct {
	Record   domain.PantryRecord `json:"record"`
	Product  domain.Product      `json:"product"`
	Quantity float64             `json:"quantity"`
}

func toItems(query *inventory.Query, records []domain.PantryRecord) []pantryItem {
	items := make([]pantryItem, 0, len(records))
	for _, rec := range records {
		product, found := query.Product(rec)
		if !found {
			continue
		}
		items = append(items, pantryItem{
			Record:   rec,
			Product:  product,
			Quantity: query.CurrentQuantity(rec),
		})
	}
	return items
}

// listPantryItems is the searchable, sortable all-products view.
func listPantryItems(c echo.Context) error {
	userID, authorized := pathUserID(c)
	if !authorized {
		return nil
	}
	query, _, err := newPantryQuery(c, userID)
	if err != nil {
		return failFromError(c, err)
	}
	records := query.FilterAndSort(filterOptions(c))
	return ok(c, toItems(query, records))
}

// listOpenItems shows unit-tracked records with opened stock.
func listOpenItems(c echo.Context) error {
	userID, authorized := pathUserID(c)
	if !authorized {
		return nil
	}
	query, _, err := newPantryQuery(c, userID)
	if err != nil {
		return failFromError(c, err)
	}
	records := query.OpenItems(filterOptions(c))
	return ok(c, toItems(query, records))
}

// ownedRecord loads a pantry record and checks the session may touch it.
// On failure the error response has already been written.
func ownedRecord(c echo.Context, repo inventory.PantryRepository) (*domain.PantryRecord, bool) {
	recordID := cast.ToInt64(c.Param("id"))
	if recordID <= 0 {
		_ = fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid record id", nil)
		return nil, false
	}
	rec, err := repo.GetByID(c.Request().Context(), recordID)
	if err != nil {
		_ = failFromError(c, err)
		return nil, false
	}
	session := webserver.CurrentSession(c)
	if session == nil || (session.Role != domain.RoleAdmin && session.UserID != rec.UserID) {
		_ = fail(c, http.StatusForbidden, "FORBIDDEN", "Record belongs to another user", nil)
		return nil, false
	}
	return rec, true
}

// markOpened moves one sealed unit of a record into the opened pool.
func markOpened(c echo.Context) error {
	repo := inventory.NewGormPantryRepository(webserver.GetDB(c))
	rec, authorized := ownedRecord(c, repo)
	if !authorized {
		return nil
	}
	updated, err := inventory.NewAdjuster(repo).MarkOpened(c.Request().Context(), rec.ID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, updated)
}

type usePayload struct {
	Mode   string  `json:"mode" validate:"required,oneof=unit weight"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// useQuantity consumes stock from one record.
func useQuantity(c echo.Context) error {
	var payload usePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request body", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Mode must be unit or weight and amount positive", err.Error())
	}

	repo := inventory.NewGormPantryRepository(webserver.GetDB(c))
	rec, authorized := ownedRecord(c, repo)
	if !authorized {
		return nil
	}
	updated, err := inventory.NewAdjuster(repo).UseQuantity(c.Request().Context(), rec.ID, payload.Mode, payload.Amount)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, updated)
}
