package adminapi

// InitRouter registers the admin console endpoints. All routes live under
// /api/admin and require an admin session.
func InitRouter() {
	registerProductRoutes()
	registerCategoryRoutes()
	registerUserRoutes()
	registerPantryRoutes()
}
