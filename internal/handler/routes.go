package handler

import (
	"net/http"

	"notes-service/internal/middleware"
	"notes-service/internal/service"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Deps groups what the router needs to serve requests
type Deps struct {
	Auth         *service.AuthService
	Notes        *service.NoteService
	Tenants      *service.TenantService
	Tokens       middleware.TokenValidator
	DB           Pinger
	LoginLimiter *middleware.ClientRateLimiter
	Metrics      *prometheus.Metrics
	Gatherer     prom.Gatherer
	Logger       *zap.Logger
}

// NewRouter builds the echo instance with global middleware and all routes
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	log := d.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestIDMiddleware)
	// Metrics wraps the logger so it sees the status of rendered errors
	e.Use(d.Metrics.MetricsMiddleware())
	e.Use(logger.Middleware(log))

	// Public routes
	e.GET("/health", NewHealthHandler(d.DB).HealthCheck)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(prometheus.Handler(d.Gatherer)))
	}

	authHandler := NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	if d.LoginLimiter != nil {
		auth.POST("/login", authHandler.Login, d.LoginLimiter.Middleware(d.Metrics))
	} else {
		auth.POST("/login", authHandler.Login)
	}

	requireAuth := middleware.AuthMiddleware(d.Tokens, d.Metrics)

	noteHandler := NewNoteHandler(d.Notes)
	notes := e.Group("/notes", requireAuth)
	notes.GET("", noteHandler.ListNotes)
	notes.POST("", noteHandler.CreateNote)
	notes.GET("/:id", noteHandler.GetNote)
	notes.PUT("/:id", noteHandler.UpdateNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	tenantHandler := NewTenantHandler(d.Tenants)
	tenants := e.Group("/tenants", requireAuth)
	tenants.GET("/:slug/plan", tenantHandler.GetPlan)
	tenants.POST("/:slug/upgrade", tenantHandler.Upgrade, middleware.RequireAdmin(d.Metrics))

	return e
}
