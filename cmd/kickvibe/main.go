package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"kickvibe/internal/api"
	"kickvibe/internal/config"
	"kickvibe/internal/media"
	"kickvibe/internal/store"
	"kickvibe/pkg/auth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokenManager, err := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("Failed to create token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Connecting to PostgreSQL database...")
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Successfully connected to PostgreSQL database.")

	userStore, err := store.NewPostgresUserStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize user store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	shoeStore, err := store.NewPostgresShoeStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize shoe store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cartStore, err := store.NewPostgresCartStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize cart store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	orderStore, err := store.NewPostgresOrderStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize order store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	reviewStore, err := store.NewPostgresReviewStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize review store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	wishlistStore, err := store.NewPostgresWishlistStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize wishlist store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mediaStore, err := media.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize media store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var googleOAuth *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleOAuth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	} else {
		logger.Warn("Google OAuth credentials not set, Google login disabled")
	}

	handler := api.NewHTTPHandler(api.Deps{
		Users:         userStore,
		Shoes:         shoeStore,
		Carts:         cartStore,
		Orders:        orderStore,
		Reviews:       reviewStore,
		Wishlists:     wishlistStore,
		Media:         mediaStore,
		Tokens:        tokenManager,
		Logger:        logger,
		Validator:     validator.New(),
		Google:        googleOAuth,
		RefreshTTL:    cfg.RefreshTokenTTL,
		SecureCookies: cfg.CORSOrigin != "*",
	})
	router := api.NewHTTPRouter(handler, api.RouterConfig{
		CORSOrigin:   cfg.CORSOrigin,
		MediaDir:     cfg.MediaDir,
		MediaBaseURL: cfg.MediaBaseURL,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("KickVibe HTTP service starting", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("KickVibe shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
}
