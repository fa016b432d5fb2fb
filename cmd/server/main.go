package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "spotly/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"spotly/internal/auth"
	"spotly/internal/cache"
	"spotly/internal/concierge"
	"spotly/internal/config"
	"spotly/internal/db"
	"spotly/internal/handler"
	"spotly/internal/logging"
	"spotly/internal/middleware"
	"spotly/internal/repository"
	"spotly/internal/router"
	"spotly/internal/service"
	"spotly/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title SPOTLY API
// @version 1.0
// @description Local business discovery: spots, reviews, wishlists, business claims, moderation and an AI concierge.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Timestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("database init")
	}
	if cfg.ResetDB {
		logging.Warn().Msg("RESET_DB=true detected, dropping all tables")
		err = db.Reset(gormDB)
	} else {
		err = db.Migrate(gormDB)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, rate limiting is disabled until it recovers")
	}

	store, err := storage.NewLocalStore(storage.Config{
		Dir:           cfg.UploadDir,
		PublicBaseURL: cfg.PublicBaseURL,
		MaxBytes:      cfg.MaxUploadBytes,
		MaxFiles:      cfg.MaxUploadedFiles,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("upload store init")
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpire, cfg.JWTRefreshExpire)
	var oauthProvider auth.OAuthProvider
	if cfg.OAuth.Enabled() {
		provider, err := auth.NewOIDCProvider(ctx, auth.OIDCConfig{
			IssuerURL:    cfg.OAuth.IssuerURL,
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
		})
		if err != nil {
			logging.Error().Err(err).Str("issuer", cfg.OAuth.IssuerURL).Msg("oauth discovery failed, oauth login disabled")
		} else {
			oauthProvider = provider
		}
	}

	// Initialize the concierge
	gemini := concierge.NewGeminiClient(concierge.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if cfg.GeminiAPIKey == "" {
		logging.Warn().Msg("GEMINI_API_KEY not set, concierge answers come from the local fallback")
	}
	conciergeEngine := concierge.New(
		concierge.NewBreaker(gemini, concierge.DefaultBreakerSettings()),
		concierge.WithTimeout(cfg.GeminiTimeout),
	)

	// Initialize services
	repos := repository.NewRepositories(gormDB)
	authService := service.NewAuthService(repos.Users, jwtService, oauthProvider, auth.NewStateStore(cacheClient))
	spotService := service.NewSpotService(repos)
	reviewService := service.NewReviewService(repos)
	userService := service.NewUserService(repos)
	businessService := service.NewBusinessService(repos)
	adminService := service.NewAdminService(repos)
	conciergeService := service.NewConciergeService(repos, conciergeEngine)

	e := echo.New()
	router.Register(e, cfg, middleware.NewGate(jwtService, authService), cacheClient, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Spots:     handler.NewSpotHandler(spotService, store),
		Reviews:   handler.NewReviewHandler(reviewService, store),
		Users:     handler.NewUserHandler(userService, store),
		Business:  handler.NewBusinessHandler(businessService),
		Admin:     handler.NewAdminHandler(adminService),
		Concierge: handler.NewConciergeHandler(conciergeService),
	})

	logging.Info().Str("url", swaggerURL(cfg)).Msg("swagger documentation available")

	go func() {
		addr := ":" + cfg.ServerPort
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}
	if err := cacheClient.Close(); err != nil {
		logging.Warn().Err(err).Msg("redis close")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// swaggerURL returns the public location of the swagger UI.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
