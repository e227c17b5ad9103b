package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"famlink/internal/config"
	"famlink/internal/database"
	"famlink/internal/handlers"
	"famlink/internal/logging"
	"famlink/internal/metrics"
	"famlink/internal/repository"
	"famlink/internal/security"
	"famlink/internal/service"
)

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	status := handlers.NewStartupStatus()

	status.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database connection established", "type", cfg.DatabaseType)
	status.CompleteStep(handlers.StepDatabase)

	status.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations completed successfully")
	status.CompleteStep(handlers.StepMigrations)

	status.SetCurrentStep(handlers.StepServices)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(db)
	pairRepo := repository.NewPairingRepository(db)
	childRepo := repository.NewChildRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	pendingRepo := repository.NewPendingRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	revoked := newRevocationStore(cfg)
	defer revoked.Close()

	m := metrics.New()
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(accountRepo, tokens, revoked)
	pairingService := service.NewPairingService(db, accountRepo, pairRepo, cfg.PairingPolicy).WithMetrics(m)
	pendingService := service.NewPendingService(db, accountRepo, pairRepo, childRepo, pendingRepo).WithMetrics(m)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		slog.Warn("Email notifications disabled", "error", err)
	} else if emailService.IsEnabled() {
		pairingService.WithNotifier(emailService)
		pendingService.WithNotifier(emailService)
		slog.Info("Email notifications enabled", "from", cfg.SESFromEmail)
	}

	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Stop()

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	router := &handlers.Router{
		Middleware: handlers.NewMiddleware(authService, limiter, m),
		Auth:       handlers.NewAuthHandler(authService, oauthProviders, cfg.OAuthRedirectBaseURL),
		Pairing:    handlers.NewPairingHandler(pairingService),
		Children: handlers.NewChildHandler(
			service.NewChildService(db, accountRepo, childRepo, cfg.FreeChildLimit),
			service.NewActivityService(childRepo, activityRepo),
		),
		Notes:   handlers.NewNoteHandler(service.NewNoteService(noteRepo, pairRepo)),
		Pending: handlers.NewPendingHandler(pendingService),
		Health:  handlers.NewHealthHandler(status, db),
		Metrics: m,
	}
	status.CompleteStep(handlers.StepServices)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "addr", addr, "pairing_policy", cfg.PairingPolicy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()
	status.MarkReady()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// newRevocationStore uses Redis when REDIS_URL is set and falls back to
// an in-process store otherwise.
func newRevocationStore(cfg *config.Config) security.RevocationStore {
	if cfg.RedisURL == "" {
		return security.NewMemoryRevocationStore()
	}
	store, err := security.NewRedisRevocationStore(cfg.RedisURL)
	if err != nil {
		slog.Warn("Redis unavailable, token revocation is process-local", "error", err)
		return security.NewMemoryRevocationStore()
	}
	return store
}
