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

type categoryPayload struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// registerCategoryRoutes registers category CRUD endpoints
func registerCategoryRoutes() {
	webserver.AdminGET("/categories", listCategories)
	webserver.AdminGET("/categories/:id", getCategory)
	webserver.AdminPOST("/categories", createCategory)
	webserver.AdminPUT("/categories/:id", updateCategory)
	webserver.AdminDELETE("/categories/:id", deleteCategory)
}

func listCategories(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Category{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}

	var rows []domain.Category
	if err := db.Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Category not found", nil)
	}
	return ok(c, cat)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	name := strings.TrimSpace(payload.Name)
	var count int64
	GetDB(c).Model(&domain.Category{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "NAME_EXISTS", "Category name already exists", nil)
	}

	cat := domain.Category{
		ID:          common.UUIDint64(),
		Name:        name,
		Description: strings.TrimSpace(payload.Description),
	}
	if err := GetDB(c).Create(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	return ok(c, cat)
}

func updateCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Category not found", nil)
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	name := strings.TrimSpace(payload.Name)
	if name != cat.Name {
		var count int64
		GetDB(c).Model(&domain.Category{}).Where("name = ? AND id != ?", name, id).Count(&count)
		if count > 0 {
			return fail(c, http.StatusConflict, "NAME_EXISTS", "Category name already exists", nil)
		}
	}

	cat.Name = name
	cat.Description = strings.TrimSpace(payload.Description)
	if err := GetDB(c).Save(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update category", err.Error())
	}
	return ok(c, cat)
}

func deleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Category not found", nil)
	}

	var refs int64
	GetDB(c).Model(&domain.Product{}).Where("category = ?", cat.Name).Count(&refs)
	if refs > 0 {
		return fail(c, http.StatusConflict, "IN_USE", "Category is referenced by products", nil)
	}

	if err := GetDB(c).Delete(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
