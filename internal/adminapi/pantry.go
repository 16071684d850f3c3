package adminapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
)

// pantryRow joins a pantry record with its owner and product for the
// admin "users' products" view.
type pantryRow struct {
	domain.PantryRecord
	UserName     string `json:"userName" gorm:"column:user_name"`
	ProductName  string `json:"productName" gorm:"column:product_name"`
	Brand        string `json:"brand" gorm:"column:brand"`
	Category     string `json:"category" gorm:"column:category"`
	QuantityType string `json:"quantityType" gorm:"column:quantity_type"`
}

type minDesiredPayload struct {
	MinDesired float64 `json:"minDesired" validate:"gte=0"`
}

// registerPantryRoutes registers the cross-user pantry views
func registerPantryRoutes() {
	webserver.AdminGET("/pantry", listAllPantry)
	webserver.AdminGET("/pantry/export", exportPantryCSV)
	webserver.AdminPUT("/pantry/:id/min-desired", setMinDesired)
	webserver.AdminDELETE("/pantry/:id", deletePantryRecord)
}

func pantryRowQuery(c echo.Context) *gorm.DB {
	db := GetDB(c).Table("pantry_record").
		Select(`pantry_record.*, sys_user.name AS user_name,
			product.name AS product_name, product.brand, product.category, product.quantity_type`).
		Joins("LEFT JOIN sys_user ON sys_user.id = pantry_record.user_id").
		Joins("LEFT JOIN product ON product.id = pantry_record.product_id")

	if userID := strings.TrimSpace(c.QueryParam("userId")); userID != "" {
		db = db.Where("pantry_record.user_id = ?", userID)
	}
	if qtype := strings.TrimSpace(c.QueryParam("quantityType")); qtype != "" {
		db = db.Where("product.quantity_type = ?", qtype)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("product.name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(product.name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}
	return db
}

func listAllPantry(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := pantryRowQuery(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query pantry records", err.Error())
	}

	var rows []pantryRow
	err := db.Order("pantry_record.id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query pantry records", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// pantryCSVRow flattens a joined row for the export file.
type pantryCSVRow struct {
	RecordID       int64   `csv:"record_id"`
	UserName       string  `csv:"user"`
	ProductName    string  `csv:"product"`
	Brand          string  `csv:"brand"`
	Category       string  `csv:"category"`
	QuantityType   string  `csv:"quantity_type"`
	QuantityClosed int     `csv:"closed"`
	QuantityOpen   int     `csv:"open"`
	QuantityWeight float64 `csv:"weight_kg"`
	MinDesired     float64 `csv:"min_desired"`
	ExpiresAt      string  `csv:"expires_at"`
}

func exportPantryCSV(c echo.Context) error {
	db := pantryRowQuery(c)

	var rows []pantryRow
	if err := db.Order("pantry_record.id ASC").Scan(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query pantry records", err.Error())
	}

	out := make([]pantryCSVRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, pantryCSVRow{
			RecordID:       row.ID,
			UserName:       row.UserName,
			ProductName:    row.ProductName,
			Brand:          row.Brand,
			Category:       row.Category,
			QuantityType:   row.QuantityType,
			QuantityClosed: row.QuantityClosed,
			QuantityOpen:   row.QuantityOpen,
			QuantityWeight: row.QuantityWeight,
			MinDesired:     row.MinDesired,
			ExpiresAt:      row.ExpiresAt,
		})
	}

	csvData, err := gocsv.MarshalString(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to encode CSV", err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "pantry_export.csv"))
	return c.Blob(http.StatusOK, "text/csv", []byte(csvData))
}

func setMinDesired(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid record ID", nil)
	}

	var payload minDesiredPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var rec domain.PantryRecord
	if err := GetDB(c).First(&rec, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
	}

	rec.MinDesired = payload.MinDesired
	if err := GetDB(c).Save(&rec).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update record", err.Error())
	}
	return ok(c, rec)
}

func deletePantryRecord(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid record ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.PantryRecord{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete record", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
