package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
)

type productPayload struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Brand        string `json:"brand" validate:"omitempty,max=200"`
	Category     string `json:"category" validate:"omitempty,max=100"`
	Barcode      string `json:"barcode" validate:"omitempty,max=64"`
	Unit         string `json:"unit" validate:"omitempty,max=20"`
	QuantityType string `json:"quantityType"`
}

// registerProductRoutes registers catalog CRUD endpoints
func registerProductRoutes() {
	webserver.AdminGET("/products", adminListProducts)
	webserver.AdminGET("/products/:id", getProduct)
	webserver.AdminPOST("/products", createProduct)
	webserver.AdminPUT("/products/:id", updateProduct)
	webserver.AdminDELETE("/products/:id", deleteProduct)
}

func adminListProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// Filters: q matches name or brand
	q := strings.TrimSpace(c.QueryParam("q"))
	categoryFilter := strings.TrimSpace(c.QueryParam("category"))
	typeFilter := strings.TrimSpace(c.QueryParam("quantityType"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"brand":      "brand",
		"category":   "category",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, found := allowed[sortField]
	if !found || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ? OR brand ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
		}
	}
	if categoryFilter != "" {
		db = db.Where("category = ?", categoryFilter)
	}
	if typeFilter != "" {
		db = db.Where("quantity_type = ?", typeFilter)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

// validateProductPayload normalizes and checks the tracking mode.
func validateProductPayload(payload *productPayload) string {
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return "Name is required"
	}
	if payload.QuantityType != domain.QuantityTypeUnit && payload.QuantityType != domain.QuantityTypeWeight {
		return "quantityType must be 'unit' or 'weight'"
	}
	// weight-tracked products measure kilograms; the unit label is implied
	if payload.QuantityType == domain.QuantityTypeWeight && payload.Unit == "" {
		payload.Unit = "kg"
	}
	return ""
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if msg := validateProductPayload(&payload); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p := domain.Product{
		ID:           common.UUIDint64(),
		Name:         payload.Name,
		Brand:        strings.TrimSpace(payload.Brand),
		Category:     strings.TrimSpace(payload.Category),
		Barcode:      strings.TrimSpace(payload.Barcode),
		Unit:         strings.TrimSpace(payload.Unit),
		QuantityType: payload.QuantityType,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if msg := validateProductPayload(&payload); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	// Changing the tracking mode would invalidate existing pantry math.
	if p.QuantityType != payload.QuantityType {
		var refs int64
		GetDB(c).Model(&domain.PantryRecord{}).Where("product_id = ?", p.ID).Count(&refs)
		if refs > 0 {
			return fail(c, http.StatusConflict, "TYPE_LOCKED", "Cannot change quantity type while pantry records reference this product", nil)
		}
	}

	p.Name = payload.Name
	p.Brand = strings.TrimSpace(payload.Brand)
	p.Category = strings.TrimSpace(payload.Category)
	p.Barcode = strings.TrimSpace(payload.Barcode)
	p.Unit = strings.TrimSpace(payload.Unit)
	p.QuantityType = payload.QuantityType

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var refs int64
	GetDB(c).Model(&domain.PantryRecord{}).Where("product_id = ?", id).Count(&refs)
	if refs > 0 {
		return fail(c, http.StatusConflict, "IN_USE", "Product is referenced by pantry records", nil)
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
