package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/astroline/admin-gateway/internal/api/cookie"
	"github.com/astroline/admin-gateway/internal/api/handler"
	"github.com/astroline/admin-gateway/internal/api/middleware"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

// resources lists the dashboard collections proxied to the platform API.
// Each gets the full CRUD surface under /api.
var resources = []struct {
	name string
	path string
}{
	{"products", "/products"},
	{"orders", "/orders"},
	{"faqs", "/faqs"},
	{"astrologers", "/astrologers"},
	{"benefits", "/benefits"},
	{"reading-services", "/reading-services"},
	{"reading-packages", "/reading-packages"},
}

// Deps carries everything the router wires together. The session service is
// constructed before the router so its unauthorized observer is already
// registered on the client.
type Deps struct {
	Sessions ports.SessionService
	Store    ports.SessionStore
	Client   ports.APIClient
	Codec    *cookie.Codec
	Audit    ports.AuditSink
	Auditor  ports.AuditRecorder
	Redis    *redis.Client
	Mongo    *mongo.Database
	Upstream handler.UpstreamPinger
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("astroadmin"))

	guard := middleware.Guard(deps.Store, deps.Codec)

	// --- Auth & dashboard root ---
	authHandler := handler.NewAuthHandler(deps.Sessions, deps.Codec)
	e.GET("/login", authHandler.LoginPage, middleware.RedirectAuthenticated(deps.Store, deps.Codec))
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, guard)
	e.GET("/auth/profile", authHandler.Profile, guard)
	e.GET("/", authHandler.Home, guard)

	// --- Proxied collections (admin only) ---
	adminAPI := e.Group("/api", guard, middleware.RequireRole(domain.RoleAdmin))
	for _, r := range resources {
		rh := handler.NewResourceHandler(deps.Client, deps.Audit, r.name, r.path)
		adminAPI.GET("/"+r.name, rh.List)
		adminAPI.POST("/"+r.name, rh.Create)
		adminAPI.PUT("/"+r.name+"/:id", rh.Update)
		adminAPI.DELETE("/"+r.name+"/:id", rh.Delete)
	}

	auditHandler := handler.NewAuditHandler(deps.Auditor)
	adminAPI.GET("/audit", auditHandler.Recent)

	// --- Health probes & metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Redis, deps.Mongo, deps.Upstream)

	e.GET("/health", healthHandler.Liveness)             // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)   // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
