package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/nastyazhadan/order-gateway/internal/gateway"
	"github.com/nastyazhadan/order-gateway/internal/infrastructure/kafka"
	"github.com/nastyazhadan/order-gateway/internal/services/matching"
	"github.com/nastyazhadan/order-gateway/internal/services/order"
	"github.com/nastyazhadan/order-gateway/internal/services/validator"
	"github.com/nastyazhadan/order-gateway/shared/config"
	"github.com/nastyazhadan/order-gateway/shared/infra/health"
	"github.com/nastyazhadan/order-gateway/shared/infra/sequence"
	logInterceptor "github.com/nastyazhadan/order-gateway/shared/interceptors/logger"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
	"github.com/nastyazhadan/order-gateway/shared/interceptors/recovery"
	"github.com/nastyazhadan/order-gateway/shared/interceptors/xrequestid"
	"github.com/nastyazhadan/order-gateway/shared/metrics"
	"github.com/nastyazhadan/order-gateway/shared/tracing"
)

func Run(ctx context.Context, cfg config.Config) {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return ctx
			},
			func() config.Config {
				return cfg
			}),
		fx.Provide(
			provideRegistry,
			provideStorage,
			provideEngine,
			provideExecutionPublisher,
			provideManager,
			provideHandler,
			provideListener,
			provideGRPCServer,
		),
		fx.Invoke(
			registerLogger,
			registerTracing,
			startMetricsServer,
			startGRPCServer,
			startCommandConsumer,
		),
	)

	app.Run()
}

func registerLogger(lifeCycle fx.Lifecycle, cfg config.Config) error {
	if err := zapLogger.Init(cfg.Gateway.LogLevel, cfg.Gateway.LogJSON); err != nil {
		return err
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			zapLogger.Sync()

			return nil
		},
	})

	return nil
}

func registerTracing(ctx context.Context, lifeCycle fx.Lifecycle, cfg config.Config) error {
	shutdown, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracing.Setup: %w", err)
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})

	return nil
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

func provideEngine(
	ctx context.Context,
	storage *storage,
	registry *prometheus.Registry,
) (*matching.Engine, error) {
	lastTradeID, err := storage.store.MaxTradeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed trade ids: %w", err)
	}

	engine := matching.NewEngine(sequence.New(lastTradeID))
	registry.MustRegister(metrics.NewBookCollector(engine))

	zapLogger.Info(ctx, "trade id sequence seeded", zap.Uint64("last_trade_id", lastTradeID))

	return engine, nil
}

// provideExecutionPublisher returns a nil publisher when kafka is disabled,
// the manager then skips execution reports.
func provideExecutionPublisher(lifeCycle fx.Lifecycle, cfg config.Config) (order.ExecutionPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, err
	}

	publisher := kafka.NewExecutionPublisher(producer, cfg.Kafka.ExecutionTopic, cfg.CircuitBreaker)

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

func provideManager(
	ctx context.Context,
	cfg config.Config,
	storage *storage,
	engine *matching.Engine,
	publisher order.ExecutionPublisher,
	registry *prometheus.Registry,
) (*order.Manager, error) {
	orderIDs := sequence.New(0)

	lastOrderID, err := storage.store.MaxOrderID(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed order ids: %w", err)
	}
	orderIDs.AdvanceTo(lastOrderID)

	zapLogger.Info(ctx, "order id sequence seeded",
		zap.String("storage", cfg.Storage.Driver),
		zap.Uint64("last_order_id", lastOrderID),
	)

	return order.NewManager(
		validator.New(validator.Config{
			MaxOrderQty: cfg.Validator.MaxOrderQty,
			MaxPrice:    cfg.Validator.MaxPrice,
		}),
		engine,
		storage.repository,
		publisher,
		metrics.NewRecorder(registry),
		orderIDs,
		order.Options{
			CheckRepositoryDuplicates: cfg.Gateway.CheckRepositoryDuplicates,
			Trades:                    storage.store,
		},
	), nil
}

func provideHandler(manager *order.Manager) *gateway.Handler {
	return gateway.NewHandler(manager)
}

func provideListener(
	lifeCycle fx.Lifecycle,
	cfg config.Config,
) (net.Listener, error) {
	listener, err := net.Listen("tcp", cfg.Gateway.Address)
	if err != nil {
		return nil, fmt.Errorf("net.Listen: %w", err)
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			errClose := listener.Close()
			if errClose != nil && !errors.Is(errClose, net.ErrClosed) {
				return errClose
			}

			return nil
		},
	})

	return listener, nil
}

func provideGRPCServer(
	lifeCycle fx.Lifecycle,
	storage *storage,
) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			xrequestid.Server,
			logInterceptor.LoggerInterceptor(),
			recovery.Unary,
		),
	)

	reflection.Register(grpcServer)
	health.RegisterService(grpcServer, storage.checks)

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			grpcServer.GracefulStop()
			return nil
		},
	})

	return grpcServer
}

func startGRPCServer(
	lifeCycle fx.Lifecycle,
	server *grpc.Server,
	listener net.Listener,
) {
	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			zapLogger.Info(ctx, fmt.Sprintf("Starting gRPC gateway server on %s", listener.Addr()))
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					zapLogger.Error(ctx, "gRPC gateway server error", zap.Error(err))
				}
			}()

			return nil
		},
	})
}

func startMetricsServer(
	lifeCycle fx.Lifecycle,
	cfg config.Config,
	registry *prometheus.Registry,
) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	server := &http.Server{
		Addr:    cfg.Metrics.Address,
		Handler: mux,
	}

	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			zapLogger.Info(ctx, fmt.Sprintf("Starting metrics server on %s", cfg.Metrics.Address))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zapLogger.Error(ctx, "metrics server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func startCommandConsumer(
	lifeCycle fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg config.Config,
	handler *gateway.Handler,
) {
	if !cfg.Kafka.Enabled {
		return
	}

	consumer := kafka.NewCommandConsumer(kafka.NewReader(cfg.Kafka), kafka.NewWriter(cfg.Kafka), handler)
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			zapLogger.Info(ctx, "Starting command consumer",
				zap.String("topic", cfg.Kafka.CommandTopic),
				zap.String("group", cfg.Kafka.GroupID),
			)
			go func() {
				defer close(done)
				if err := consumer.Run(runCtx); err != nil {
					zapLogger.Error(runCtx, "command consumer stopped, shutting down", zap.Error(err))
					if errShutdown := shutdowner.Shutdown(fx.ExitCode(1)); errShutdown != nil {
						zapLogger.Error(runCtx, "shutdown request failed", zap.Error(errShutdown))
					}
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}

			return consumer.Close()
		},
	})
}
