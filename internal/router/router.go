package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"spotly/internal/auth"
	"spotly/internal/config"
	"spotly/internal/handler"
	"spotly/internal/middleware"
	"spotly/internal/storage"
	"spotly/internal/validation"
)

const bodyLimit = "10M"

// Handlers groups the API handlers.
type Handlers struct {
	Auth      *handler.AuthHandler
	Spots     *handler.SpotHandler
	Reviews   *handler.ReviewHandler
	Users     *handler.UserHandler
	Business  *handler.BusinessHandler
	Admin     *handler.AdminHandler
	Concierge *handler.ConciergeHandler
}

// Register wires middleware and routes. counter may be nil to disable rate limiting.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	gate *middleware.Gate,
	counter middleware.WindowCounter,
	h Handlers,
) {
	e.HideBanner = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.Validator = validation.New()
	e.HTTPErrorHandler = ErrorHandler(cfg.IsDevelopment())

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.ClientURLs,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
	}))
	e.Use(echomw.BodyLimit(bodyLimit))
	e.Use(echomw.Gzip())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static(storage.URLPrefix, cfg.UploadDir)

	api := e.Group("/api")
	if counter != nil {
		api.Use(middleware.RateLimit(counter, cfg.RateLimitWindow, cfg.RateLimitMax))
	}

	mandatory := gate.Mandatory()
	optional := gate.Optional()
	require := gate.Require

	// Auth routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout, mandatory)
	api.GET("/auth/me", h.Auth.Me, mandatory)
	api.GET("/auth/oauth/login", h.Auth.OAuthLogin)
	api.GET("/auth/oauth/callback", h.Auth.OAuthCallback)

	// Spot routes
	api.GET("/spots", h.Spots.List)
	api.GET("/spots/nearby", h.Spots.Nearby)
	api.GET("/spots/:id", h.Spots.Get, optional)
	api.POST("/spots", h.Spots.Create, mandatory, require(auth.PermCreateSpot))
	api.PUT("/spots/:id", h.Spots.Update, mandatory, require(auth.PermUpdateSpot))
	api.DELETE("/spots/:id", h.Spots.Delete, mandatory, require(auth.PermDeleteSpot))

	// Review routes
	api.GET("/reviews/spot/:spotId", h.Reviews.ListBySpot)
	api.POST("/reviews", h.Reviews.Create, mandatory)
	api.PUT("/reviews/:id", h.Reviews.Update, mandatory)
	api.DELETE("/reviews/:id", h.Reviews.Delete, mandatory)
	api.POST("/reviews/:id/helpful", h.Reviews.ToggleHelpful, mandatory)

	// User routes
	users := api.Group("/users", mandatory)
	users.GET("/profile", h.Users.Profile)
	users.PUT("/profile", h.Users.UpdateProfile)
	users.PUT("/avatar", h.Users.UpdateAvatar)
	users.GET("/saved", h.Users.SavedSpots)
	users.POST("/saved/:spotId", h.Users.ToggleSaved)

	// Business routes
	business := api.Group("/business", mandatory)
	business.POST("/claim/:spotId", h.Business.Claim)
	business.GET("/dashboard", h.Business.Dashboard, require(auth.PermBusinessDashboard))
	business.GET("/spots", h.Business.Spots, require(auth.PermBusinessDashboard))

	// Admin routes
	admin := api.Group("/admin", mandatory)
	admin.GET("/users", h.Admin.Users, require(auth.PermManageUsers))
	admin.PUT("/users/:id/toggle-active", h.Admin.ToggleUserActive, require(auth.PermManageUsers))
	admin.GET("/spots/pending", h.Spots.Pending, require(auth.PermModerateSpots))
	admin.PUT("/spots/:id/status", h.Spots.UpdateStatus, require(auth.PermModerateSpots))
	admin.GET("/analytics", h.Admin.Analytics, require(auth.PermViewAnalytics))
	admin.PUT("/reviews/:id/status", h.Reviews.UpdateStatus, require(auth.PermModerateReviews))

	// AI routes
	api.POST("/ai/concierge", h.Concierge.Ask, optional)
	api.POST("/ai/plan", h.Concierge.Plan, optional)
}
