package api

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/elifnazdmn/HomeStock-Web/config"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
)

var (
	appConfig *config.AppConfig
	eventBus  evbus.Bus
)

// InitRouter registers the user-facing pantry endpoints.
func InitRouter(cfg *config.AppConfig, bus evbus.Bus) {
	appConfig = cfg
	eventBus = bus

	webserver.PubPOST("/login", login)

	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/pantry/:userId", listPantry)
	webserver.ApiGET("/pantry/:userId/dashboard", pantryDashboard)
	webserver.ApiGET("/pantry/:userId/items", listPantryItems)
	webserver.ApiGET("/pantry/:userId/open-items", listOpenItems)
	webserver.ApiPOST("/pantry/records/:id/open", markOpened)
	webserver.ApiPOST("/pantry/records/:id/use", useQuantity)
	webserver.ApiPOST("/purchases", createPurchase)
}
