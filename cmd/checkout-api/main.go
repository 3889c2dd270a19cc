package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-core/internal/checkout"
	"github.com/nikolayk812/checkout-core/internal/config"
	"github.com/nikolayk812/checkout-core/internal/delivery"
	"github.com/nikolayk812/checkout-core/internal/httpapi"
	"github.com/nikolayk812/checkout-core/internal/metrics"
	"github.com/nikolayk812/checkout-core/internal/pricing"
	"github.com/nikolayk812/checkout-core/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("checkout-api exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(getEnv("CONFIG_PATH", ""))
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("newLogger: %w", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("repository.RunMigrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("metrics.New: %w", err)
	}

	pricingCfg, err := cfg.PricingConfig()
	if err != nil {
		return fmt.Errorf("cfg.PricingConfig: %w", err)
	}

	engine, err := pricing.NewEngine(pricingCfg, repository.NewCatalog(pool),
		pricing.WithDiscountResolver(repository.NewPromoCodes(pool)),
		pricing.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("pricing.NewEngine: %w", err)
	}

	holidays, err := cfg.HolidayCalendar()
	if err != nil {
		return fmt.Errorf("cfg.HolidayCalendar: %w", err)
	}

	service := checkout.NewService(checkout.Config{
		ProcessingDays:  cfg.Delivery.ProcessingDays,
		ShippingOptions: cfg.ShippingOptions,
	}, engine, delivery.NewEstimator(holidays), repository.NewOrders(pool), m, logger)

	handler := httpapi.NewCheckoutHandler(service, logger, cfg.HTTP.MaxBodyBytes)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("checkout-api starting",
			slog.String("port", cfg.HTTP.Port),
			slog.Int("holidays", holidays.Len()),
			slog.Int("shipping_options", len(cfg.ShippingOptions)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level[%s]: %w", level, err)
		}
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
