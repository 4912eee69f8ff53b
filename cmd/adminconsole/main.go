package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"adminconsole/frontend/shared/html"
	"adminconsole/infrastructure/api"
	"adminconsole/infrastructure/config"
	httpserver "adminconsole/infrastructure/http"
	"adminconsole/infrastructure/metrics"
	"adminconsole/infrastructure/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	slog.SetDefault(cfg.NewLogger())

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
		Metrics: rec,
	})
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	server := httpserver.NewServer(httpserver.Options{
		Addr:        cfg.Addr,
		DB:          db,
		API:         client,
		Metrics:     rec,
		MetricsPath: cfg.MetricsPath,
		Settings: html.Settings{
			PageSize:        cfg.PageSize,
			FilterDebounce:  cfg.FilterDebounce,
			ConfirmDebounce: cfg.ConfirmDebounce,
			ToastDuration:   cfg.ToastDuration,
		},
		SessionDuration: cfg.SessionDuration,
		SecureCookie:    cfg.SecureCookie,
	})
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	slog.Info("adminconsole started",
		slog.String("addr", cfg.Addr),
		slog.String("api", cfg.API.BaseURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		slog.Error("graceful shutdown error", slog.Any("err", err))
	}
}
