package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wasilonline/nova-checkout/api/routes"
	"github.com/wasilonline/nova-checkout/internal/catalog"
	"github.com/wasilonline/nova-checkout/internal/checkout"
	"github.com/wasilonline/nova-checkout/internal/concierge"
	"github.com/wasilonline/nova-checkout/internal/orders"
	"github.com/wasilonline/nova-checkout/pkg/config"
	"github.com/wasilonline/nova-checkout/pkg/db"
	"github.com/wasilonline/nova-checkout/pkg/env"
	"github.com/wasilonline/nova-checkout/pkg/genai"
	"github.com/wasilonline/nova-checkout/pkg/logger"
	"github.com/wasilonline/nova-checkout/pkg/metrics"
	"github.com/wasilonline/nova-checkout/pkg/migrate"
	"github.com/wasilonline/nova-checkout/pkg/outbox"
	"github.com/wasilonline/nova-checkout/pkg/redis"
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

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersService, err := orders.NewService(
		dbClient,
		orders.NewRepository(dbClient.DB()),
		outboxService,
		redisClient,
		cfg.Checkout,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	sessionStore, err := checkout.NewRedisStore(redisClient, cfg.Checkout.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(sessionStore, catalogService, ordersService, cfg.Checkout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	var genaiClient *genai.Client
	if cfg.Concierge.APIKey != "" {
		opts := []genai.Option{genai.WithModel(cfg.Concierge.Model)}
		if cfg.Concierge.BaseURL != "" {
			opts = append(opts, genai.WithBaseURL(cfg.Concierge.BaseURL))
		}
		genaiClient, err = genai.NewClient(cfg.Concierge.APIKey, opts...)
		if err != nil {
			logg.Error(context.Background(), "failed to create generative language client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "concierge api key not set, canned answers only")
	}

	conciergeService, err := concierge.NewService(genaiClient, cfg.Concierge, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create concierge service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, checkoutService, ordersService, conciergeService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
