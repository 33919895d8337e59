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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaizerhaus/kaizerhaus-backend/api/routes"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/auth"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/cards"
	cartsvc "github.com/kaizerhaus/kaizerhaus-backend/internal/cart"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/catalog"
	checkoutsvc "github.com/kaizerhaus/kaizerhaus-backend/internal/checkout"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/orders"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/tracking"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/auth/session"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/metrics"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/redis"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	upstreamClient, err := upstream.NewClient(cfg.Upstream, logg, metrics.NewUpstreamMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to create upstream client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(redisClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(upstreamClient, sessionManager, cartService, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(upstreamClient, redisClient, redisClient, cfg.Catalog, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(redisClient, redisClient, upstreamClient, cartService, cfg.Checkout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(upstreamClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	cardsService, err := cards.NewService(upstreamClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cards service", err)
		os.Exit(1)
	}

	trackingWatcher, err := tracking.NewWatcher(upstreamClient, cfg.Tracking.PollInterval, metrics.NewTrackingMetrics(registry), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking watcher", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cartWatcher, err := cartsvc.NewWatcher(redisClient, cartService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart watcher", err)
		os.Exit(1)
	}
	go func() {
		if err := cartWatcher.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(rootCtx, "cart event watcher stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(rootCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			sessionManager,
			authService,
			catalogService,
			cartService,
			checkoutService,
			ordersService,
			cardsService,
			trackingWatcher,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(context.Background(), "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}
