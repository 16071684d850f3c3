package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
)

// GetDB returns the request-scoped gorm handle.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"details": details,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":    rows,
		"total":   total,
		"page":    page,
		"perPage": pageSize,
	})
}

// parsePagination reads page/perPage query parameters with sane bounds.
func parsePagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("perPage"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

func handleValidationError(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation", err.Error())
}
