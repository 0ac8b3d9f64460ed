package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/harvestlane/storefront-gateway/api/routes"
	"github.com/harvestlane/storefront-gateway/internal/account"
	"github.com/harvestlane/storefront-gateway/internal/auth"
	"github.com/harvestlane/storefront-gateway/internal/cart"
	"github.com/harvestlane/storefront-gateway/internal/catalog"
	checkoutsvc "github.com/harvestlane/storefront-gateway/internal/checkout"
	"github.com/harvestlane/storefront-gateway/internal/reviews"
	"github.com/harvestlane/storefront-gateway/internal/upstream"
	"github.com/harvestlane/storefront-gateway/internal/wishlist"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
	"github.com/harvestlane/storefront-gateway/pkg/metrics"
	"github.com/harvestlane/storefront-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)

	apiClient, err := upstream.NewClient(cfg.Upstream, logg, upstreamMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		os.Exit(1)
	}

	catalogService := catalog.NewService(apiClient, redisClient, cfg.Catalog.CacheTTL, logg)
	authService := auth.NewService(apiClient, logg)
	accountService := account.NewService(apiClient, logg)
	checkoutService := checkoutsvc.NewService(apiClient, cfg.Checkout, logg)
	reviewService := reviews.NewService(apiClient, logg)
	handoff := checkoutsvc.NewHandoff(redisClient, cfg.Checkout.HandoffTTL)

	carts := cart.NewRegistry(apiClient, logg)
	wishes := wishlist.NewRegistry(apiClient, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront gateway")

	sweepStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Session.SweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed := carts.Sweep(cfg.Session.IdleTTL) + wishes.Sweep(cfg.Session.IdleTTL)
				if removed > 0 {
					logg.Info(ctx, fmt.Sprintf("session.sweep removed=%d live=%d", removed, carts.Len()+wishes.Len()))
				}
			case <-sweepStop:
				return
			}
		}
	}()

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:         cfg,
			Logg:        logg,
			RedisPinger: redisClient,
			Gatherer:    registry,
			Catalog:     catalogService,
			Auth:        authService,
			Account:     accountService,
			Checkout:    checkoutService,
			Reviews:     reviewService,
			Handoff:     handoff,
			Carts:       carts,
			Wishes:      wishes,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "gateway stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
	}

	close(sweepStop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "gateway stopped")
}
