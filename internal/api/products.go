package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elifnazdmn/HomeStock-Web/internal/inventory"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
)

// listProducts returns the full catalog; every signed-in role may read it.
func listProducts(c echo.Context) error {
	repo := inventory.NewGormProductRepository(webserver.GetDB(c))
	products, err := repo.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load product catalog", err.Error())
	}
	return ok(c, products)
}
