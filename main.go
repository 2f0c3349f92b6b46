package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appInventory "github.com/Zhima-Mochi/minishop-bookshop/internal/application/inventory"
	appOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/application/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/config"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-bookshop/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-bookshop/internal/presentation/worker"
)

// store is what the use cases need from whichever backend STORE_DRIVER selects.
type store interface {
	order.Gateway
	order.Reader
	inventory.Repository
}

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)
	if err := cfg.Validate(); err != nil {
		systemLogger.Fatal("config_invalid", zap.Error(err))
	}

	logger := zaplogger.Wrap(baseLogger)
	counters, histograms := prometrics.Instruments(
		prometrics.New(prometheus.DefaultRegisterer, cfg.MetricsNamespace, ""),
		observability.CounterSpecs,
		observability.HistogramSpecs,
	)
	tel := infraobs.New(infraobs.Options{
		Tracer:     oteltrace.New(cfg.ServiceName),
		Logger:     logger,
		Counters:   counters,
		Histograms: histograms,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		systemLogger.Fatal("store_open_failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()
	systemLogger.Info("store_ready", zap.String("driver", cfg.StoreDriver))

	// In-process bus; order.placed events feed the low stock alert.
	bus := outbox.NewBus(logger)

	placeOrder := appOrder.NewPlaceOrderUseCase(st, bus, tel, appOrder.WithTxTimeout(cfg.TxTimeout))
	adminCreate := appOrder.NewAdminCreateOrderUseCase(st, tel, appOrder.WithTxTimeout(cfg.TxTimeout))
	getOrder := appOrder.NewGetOrderUseCase(st, tel)
	getListing := appInventory.NewGetListingUseCase(st, tel)
	listAvailable := appInventory.NewListAvailableUseCase(st, tel)
	lowStock := appInventory.NewLowStockUseCase(cfg.LowStockThreshold, tel)

	workerpresentation.NewLowStockWorker(bus, lowStock, logger).Start()
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	handler := httppresentation.NewHandler(httppresentation.UseCases{
		PlaceOrder:       placeOrder,
		AdminCreateOrder: adminCreate,
		GetOrder:         getOrder,
		GetListing:       getListing,
		ListAvailable:    listAvailable,
	}, logger, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}

func openStore(ctx context.Context, cfg config.Config, logger observability.Logger) (store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPGX:
		poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse database url: %w", err)
		}
		if cfg.DBMaxConns > 0 {
			poolCfg.MaxConns = int32(cfg.DBMaxConns)
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		g, err := postgres.NewGatewayFromPGXPool(pool,
			postgres.WithLockTimeout(cfg.LockTimeout),
			postgres.WithLogger(logger),
		)
		if err == nil {
			err = prepareSchema(ctx, cfg, g)
		}
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return g, pool.Close, nil

	case config.DriverSQLX:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect sqlx: %w", err)
		}
		if cfg.DBMaxConns > 0 {
			db.SetMaxOpenConns(cfg.DBMaxConns)
		}
		g, err := postgres.NewGatewayFromSQLX(db,
			postgres.WithLockTimeout(cfg.LockTimeout),
			postgres.WithLogger(logger),
		)
		if err == nil {
			err = prepareSchema(ctx, cfg, g)
		}
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return g, func() { _ = db.Close() }, nil

	default:
		s := memory.NewStore()
		if cfg.SeedData {
			if err := s.Seed(); err != nil {
				return nil, nil, fmt.Errorf("seed memory store: %w", err)
			}
		}
		return s, func() {}, nil
	}
}

// prepareSchema applies the embedded DDL when DB_APPLY_SCHEMA is set. Otherwise the
// schema is expected to be managed outside the service.
func prepareSchema(ctx context.Context, cfg config.Config, g *postgres.Gateway) error {
	if !cfg.ApplySchema {
		return nil
	}
	if err := g.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
