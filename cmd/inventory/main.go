package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"GameStock/internal/config"
	"GameStock/internal/inventory"
	"GameStock/pkg/kit"
)

const startupTimeout = 10 * time.Second

func main() {
	service := "inventory"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, kit.LogOptions{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	store, err := inventory.OpenStore(ctx, inventory.StoreOptions{
		Driver:   cfg.Store.Driver,
		Path:     cfg.Store.Path,
		DSN:      cfg.Store.DSN,
		Document: cfg.Store.Document,
	})
	if err != nil {
		cancel()
		log.Fatal("open store failed", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer func() { _ = store.Close() }()

	svc := inventory.NewService(
		inventory.InstrumentStore(store, inventory.NewStoreMetrics(reg)),
		inventory.NewMillisIDs(),
	)

	n, err := svc.Init(ctx)
	cancel()
	if err != nil {
		log.Fatal("catalogue init failed", zap.Error(err))
	}
	log.Info("catalogue initialized",
		zap.String("driver", cfg.Store.Driver),
		zap.Int("games", n),
	)

	s := &inventory.Server{
		Service: svc,
		Log:     log,
	}
	if cfg.Static.Dir != "" {
		s.Static = kit.StaticFiles(cfg.Static.Dir)
	}
	if cfg.RateLimit.WritePerMinute > 0 {
		s.WriteLimit = kit.NewIPRateLimiter(cfg.RateLimit.WritePerMinute, time.Minute).Middleware
	}

	h := inventory.NewHandler(s, inventory.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		CORSOrigins:    cfg.CORS.Origins,
	})

	err = kit.RunHTTPServer(cfg.Server.Addr(), h, log, kit.ServerOptions{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	})
	if err != nil && err != http.ErrServerClosed {
		log.Error("http server stopped", zap.Error(err))
		_ = store.Close()
		os.Exit(1)
	}
}
