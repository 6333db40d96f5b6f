package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tradepost-shop/tradepost/internal/app"
	"github.com/tradepost-shop/tradepost/internal/catalog"
	"github.com/tradepost-shop/tradepost/internal/identity"
	"github.com/tradepost-shop/tradepost/internal/platform/db"
	"github.com/tradepost-shop/tradepost/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN, migrations.FS); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	tokens := identity.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	identityRepo := identity.NewRepository(dbpool)
	identityService := identity.NewService(identityRepo)
	identityHandler := identity.NewHandler(logger, identityService, tokens)
	authMiddleware := identity.Middleware{Logger: logger, Service: identityService, Tokens: tokens}

	exporter := catalog.NewExporter(logger, cfg.ProductExportPath)
	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo, exporter)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		IdentityHandler: identityHandler,
		CatalogHandler:  catalogHandler,
		AuthMiddleware:  authMiddleware,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
