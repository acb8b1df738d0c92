package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/gatekeeper/internal/apidoc"
	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/database"
	"github.com/dimitrije/gatekeeper/internal/github"
	"github.com/dimitrije/gatekeeper/internal/handlers"
	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/logging"
	"github.com/dimitrije/gatekeeper/internal/services"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"golang.org/x/sync/errgroup"
)

const (
	stateSweepInterval   = time.Minute
	tokenCleanupInterval = time.Hour
	shutdownTimeout      = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			slog.Error("Sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	hub := identity.NewHub()
	defer hub.Close()

	client := identity.NewLocalClient(cfg, userService, tokenService, jwtService, emailService, hub)
	authService := services.NewAuthService(client, userService, cfg.Auth)
	emailAuthService := services.NewEmailAuthService(client, userService, cfg.Email)

	authHandler := handlers.NewAuthHandler(cfg, authService, client)
	emailAuthHandler := handlers.NewEmailAuthHandler(emailAuthService)
	eventsHandler := handlers.NewEventsHandler(authService)
	repoHandler := handlers.NewRepoHandler(authService, func(token string) handlers.CodeHost {
		return github.NewClient(token)
	})
	userHandler := handlers.NewUserHandler(userService)
	healthHandler := handlers.NewHealthHandler(db.Pool)

	apiDocument, err := apidoc.JSON(ctx)
	if err != nil {
		log.Fatalf("Failed to load API document: %v", err)
	}
	docsHandler := handlers.NewDocsHandler(apiDocument)

	app := newRouter(routes{
		auth:    authHandler,
		email:   emailAuthHandler,
		events:  eventsHandler,
		users:   userHandler,
		repos:   repoHandler,
		health:  healthHandler,
		docs:    docsHandler,
		release: cfg.IsProduction(),
	}, jwtService)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(app),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return client.Run(gctx, stateSweepInterval)
	})

	g.Go(func() error {
		ticker := time.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := tokenService.CleanupExpired(gctx); err != nil {
					slog.Error("Token cleanup failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
