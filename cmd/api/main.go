package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/osinbeats/beatstore-backend/api/routes"
	"github.com/osinbeats/beatstore-backend/internal/admins"
	"github.com/osinbeats/beatstore-backend/internal/assets"
	"github.com/osinbeats/beatstore-backend/internal/cart"
	"github.com/osinbeats/beatstore-backend/internal/catalog"
	"github.com/osinbeats/beatstore-backend/internal/content"
	"github.com/osinbeats/beatstore-backend/internal/drops"
	"github.com/osinbeats/beatstore-backend/internal/fulfillment"
	"github.com/osinbeats/beatstore-backend/internal/notifier"
	"github.com/osinbeats/beatstore-backend/internal/orders"
	"github.com/osinbeats/beatstore-backend/internal/payments"
	stripewebhook "github.com/osinbeats/beatstore-backend/internal/webhooks/stripe"
	"github.com/osinbeats/beatstore-backend/pkg/config"
	"github.com/osinbeats/beatstore-backend/pkg/db"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
	"github.com/osinbeats/beatstore-backend/pkg/metrics"
	"github.com/osinbeats/beatstore-backend/pkg/migrate"
	"github.com/osinbeats/beatstore-backend/pkg/redis"
	pkgstripe "github.com/osinbeats/beatstore-backend/pkg/stripe"
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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	contentRepo := content.NewRepository(gormDB)
	dropsRepo := drops.NewRepository(gormDB)
	adminsRepo := admins.NewRepository(gormDB)

	catalogService, err := catalog.NewService(catalogRepo)
	exitOnErr(logg, "catalog service", err)
	cartService, err := cart.NewService(cartRepo, catalogRepo)
	exitOnErr(logg, "cart service", err)
	contentService, err := content.NewService(contentRepo)
	exitOnErr(logg, "content service", err)
	dropsService, err := drops.NewService(dropsRepo)
	exitOnErr(logg, "drops service", err)
	ordersService, err := orders.NewService(ordersRepo)
	exitOnErr(logg, "orders service", err)
	adminsService, err := admins.NewService(adminsRepo, cfg.JWT, cfg.Password)
	exitOnErr(logg, "admins service", err)

	notifierService, err := notifier.NewService(cfg.Sendgrid, logg)
	exitOnErr(logg, "notifier service", err)

	assetResolver, err := assets.NewResolver(cfg.Assets.Root)
	exitOnErr(logg, "asset resolver", err)
	assetsService, err := assets.NewService(assetResolver, logg)
	exitOnErr(logg, "assets service", err)

	gateway, err := payments.NewStripeGateway(stripeClient)
	exitOnErr(logg, "payment gateway", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	fulfillmentService, err := fulfillment.NewService(
		cartRepo,
		catalogRepo,
		ordersRepo,
		gateway,
		notifierService,
		fulfillmentMetrics,
		logg,
		cfg.App,
		cfg.Checkout,
	)
	exitOnErr(logg, "fulfillment service", err)

	webhookService, err := stripewebhook.NewService(fulfillmentService)
	exitOnErr(logg, "stripe webhook service", err)
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.WebhookEventTTL, "stripe-webhook")
	exitOnErr(logg, "stripe webhook guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			routes.Services{
				Catalog:     catalogService,
				Drops:       dropsService,
				Content:     contentService,
				Cart:        cartService,
				Fulfillment: fulfillmentService,
				Assets:      assetsService,
				Orders:      ordersService,
				Admins:      adminsService,
			},
			stripeClient,
			webhookService,
			webhookGuard,
			fulfillmentMetrics,
			registry,
		),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func exitOnErr(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
