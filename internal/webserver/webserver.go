package webserver

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/config"
)

// ContextKeyDB is the echo context key set by the injection middleware.
const ContextKeyDB = "homestock_db"

// WebContext is the slice of the application the webserver depends on.
type WebContext interface {
	DB() *gorm.DB
	Config() *config.AppConfig
	GetSettingsStringValue(category, key string) string
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// WebServer wraps echo with the route groups handler packages register on.
type WebServer struct {
	appCtx WebContext
	root   *echo.Echo
	public *echo.Group // no auth (login)
	api    *echo.Group // any authenticated role
	admin  *echo.Group // admin role only
}

var server *WebServer

// Init builds the global webserver instance.
func Init(appCtx WebContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(injectAppContext(appCtx))

	secret := []byte(appCtx.Config().Web.Secret)
	jwtConfig := echojwt.Config{
		SigningKey: secret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "Missing or invalid session token",
			})
		},
	}

	public := e.Group("/api")
	api := e.Group("/api", echojwt.WithConfig(jwtConfig))
	admin := e.Group("/api/admin", echojwt.WithConfig(jwtConfig), requireRole("admin"))

	server = &WebServer{
		appCtx: appCtx,
		root:   e,
		public: public,
		api:    api,
		admin:  admin,
	}
	return server
}

// injectAppContext makes the database handle reachable from any handler
// through the echo context.
func injectAppContext(appCtx WebContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyDB, appCtx.DB())
			return next(c)
		}
	}
}

// Listen starts serving; it blocks until the server stops.
func Listen() error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("webserver listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Instance returns the global webserver (nil before Init).
func Instance() *WebServer {
	return server
}

// GetDB returns the request-scoped gorm handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(ContextKeyDB).(*gorm.DB)
}

// SettingsString reads a runtime setting through the application context.
func SettingsString(category, key string) string {
	return server.appCtx.GetSettingsStringValue(category, key)
}

// Public route registration (login and other unauthenticated endpoints).

func PubPOST(path string, handler echo.HandlerFunc) {
	server.public.POST(path, handler)
}

// Authenticated API route registration.

func ApiGET(path string, handler echo.HandlerFunc) {
	server.api.GET(path, handler)
}

func ApiPOST(path string, handler echo.HandlerFunc) {
	server.api.POST(path, handler)
}

func ApiPUT(path string, handler echo.HandlerFunc) {
	server.api.PUT(path, handler)
}

func ApiDELETE(path string, handler echo.HandlerFunc) {
	server.api.DELETE(path, handler)
}

// Admin-only route registration (paths are relative to /api/admin).

func AdminGET(path string, handler echo.HandlerFunc) {
	server.admin.GET(path, handler)
}

func AdminPOST(path string, handler echo.HandlerFunc) {
	server.admin.POST(path, handler)
}

func AdminPUT(path string, handler echo.HandlerFunc) {
	server.admin.PUT(path, handler)
}

func AdminDELETE(path string, handler echo.HandlerFunc) {
	server.admin.DELETE(path, handler)
}
