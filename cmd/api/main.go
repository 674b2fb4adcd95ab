package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-cart/api/controllers"
	"github.com/angelmondragon/storefront-cart/api/routes"
	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/internal/coupons"
	"github.com/angelmondragon/storefront-cart/internal/sessions"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-cart"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-cart",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := loadCoupons(cfg.Cart)
	if err != nil {
		logg.Error(ctx, "failed to load coupon table", err)
		os.Exit(1)
	}

	backend, err := openBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cart storage", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry, err := sessions.NewRegistry(sessions.Params{
		KV:        backend.kv,
		KeyPrefix: cfg.Persistence.KeyPrefix,
		IdleTTL:   cfg.Session.IdleTTL,
		Store: cart.Options{
			Coupons: table,
			Shipping: &cart.ShippingPolicy{
				FreeThreshold: cfg.Cart.FreeShippingThreshold,
				BaseFee:       cfg.Cart.BaseShippingFee,
			},
			Logger:       logg,
			Metrics:      metrics.NewCartMetrics(reg),
			ReadTimeout:  cfg.Persistence.ReadTimeout,
			WriteTimeout: cfg.Persistence.WriteTimeout,
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart registry", err)
		_ = backend.close()
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"driver":  cfg.Persistence.NormalizedDriver(),
		"coupons": len(table.Rules()),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, registry, reg, map[string]controllers.Pinger{"storage": backend.pinger}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = registry.Run(ctx, cfg.Session.SweepInterval)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	switch err := shutdown(shutdownCtx, server, registry, backend.close); {
	case errors.Is(err, errFlushTimedOut):
		logg.Error(serverCtx, "cart flush timed out, leaving storage open", err)
		os.Exit(1)
	case err != nil:
		logg.Error(serverCtx, "shutdown incomplete", err)
		os.Exit(1)
	}
	logg.Info(serverCtx, "api server stopped")
}

func loadCoupons(cfg config.CartConfig) (*coupons.Table, error) {
	if cfg.CouponsFile == "" {
		return coupons.Default(), nil
	}
	return coupons.LoadFile(cfg.CouponsFile)
}
