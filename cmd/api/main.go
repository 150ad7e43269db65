package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vintrack/vintrack-backend/api/routes"
	"github.com/vintrack/vintrack-backend/internal/suggestions"
	winesvc "github.com/vintrack/vintrack-backend/internal/wines"
	"github.com/vintrack/vintrack-backend/pkg/config"
	"github.com/vintrack/vintrack-backend/pkg/db"
	"github.com/vintrack/vintrack-backend/pkg/env"
	"github.com/vintrack/vintrack-backend/pkg/logger"
	"github.com/vintrack/vintrack-backend/pkg/metrics"
	"github.com/vintrack/vintrack-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "vintrack-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "vintrack-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(registry)

	wineRepo := winesvc.NewRepository(dbClient.DB())
	wineService := winesvc.NewService(dbClient, wineRepo, apiMetrics)

	suggestionProvider := suggestions.NewClient(cfg.WineAPI, apiMetrics)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"db":   cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, wineService, suggestionProvider, apiMetrics, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
