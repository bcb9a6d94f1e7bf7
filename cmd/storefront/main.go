package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/checkout"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/config"
	httpapi "github.com/BuiNam2k4/FigureCheckEcomSystem/internal/http"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/storefront"
)

func main() {
	cfg, err := config.Load(getenv("STOREFRONT_CONFIG", "configs/storefront.yaml"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg).With("service", "storefront")
	slog.SetDefault(logger)

	// Base HTTP client (shared)
	sharedHTTP := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	// Upstream clients
	identityBase := clients.NewClient("identity-service", cfg.IdentityURL, sharedHTTP)
	tradeBase := clients.NewClient("trade-service", cfg.TradeURL, sharedHTTP)
	catalogBase := clients.NewClient("catalog-service", cfg.CatalogURL, sharedHTTP)

	// Typed clients
	identity := clients.NewIdentityClient(identityBase)
	listings := clients.NewListingClient(tradeBase)
	carts := clients.NewCartClient(tradeBase)
	orders := clients.NewOrderClient(tradeBase)
	catalog := clients.NewCatalogClient(catalogBase)

	// The identity service has no unauthenticated read endpoint to probe.
	healthProbes := []clients.HealthProbe{
		{Name: "trade-service", Client: tradeBase, Path: "/api/listings"},
		{Name: "catalog-service", Client: catalogBase, Path: "/api/categories"},
	}

	checkoutCfg := checkout.Config{ShippingFee: cfg.ShippingFee}
	for _, m := range cfg.PaymentMethods {
		checkoutCfg.PaymentMethods = append(checkoutCfg.PaymentMethods, order.PaymentMethod(m))
	}
	upstreams := storefront.Upstreams{Identity: identity, Cart: carts, Orders: orders}
	if cfg.VerifyListingsAtCheckout {
		upstreams.Verifier = listings
	}

	registry := storefront.NewRegistry(func() *storefront.Storefront {
		return storefront.New(upstreams, checkoutCfg, logger, time.Now)
	}, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		Cfg:          cfg,
		Registry:     registry,
		Query:        listing.NewQuery(listings, cfg.ListingPageSize, logger),
		Identity:     identity,
		Listings:     listings,
		Orders:       orders,
		Catalog:      catalog,
		HealthProbes: healthProbes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx, cfg.SessionSweepInterval)

	go func() {
		logger.Info("listening", "addr", srv.Addr, "trade_url", cfg.TradeURL, "identity_url", cfg.IdentityURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete", "sessions", registry.Len())
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
