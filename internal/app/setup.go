// Package app contains the application setup for the pantry service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/pantry/internal/config"
	"github.com/abgdnv/pantry/internal/service"
	"github.com/abgdnv/pantry/internal/store"
	grpcImpl "github.com/abgdnv/pantry/internal/transport/grpc"
	"github.com/abgdnv/pantry/internal/transport/rest"
	"github.com/abgdnv/pantry/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/pantry/pkg/config"
	"github.com/abgdnv/pantry/pkg/messaging"
	pnats "github.com/abgdnv/pantry/pkg/nats"
	"github.com/abgdnv/pantry/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

const eventsStream = "PANTRY"

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupDependencies wires the service on top of productStore.
// metricsHandler may be nil, in which case /metrics is not served.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, metricsHandler http.Handler, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Store:          productStore,
		ProductService: service.NewService(productStore, publisher, logger),
		MetricsHandler: metricsHandler,
		Logger:         logger,
	}
}

// OpenStore connects to the configured database and prepares the schema when cfg.Migrate is set.
// The returned func releases the connection.
func OpenStore(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	switch cfg.Driver {
	case pkgconfig.DriverGorm:
		db, err := bootstrap.NewGormDB(ctx, cfg.URL, cfg.Timeout, logger.With("component", "gorm"))
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
		}
		closer := func() { _ = sqlDB.Close() }
		gormStore := store.NewGormStore(db)
		if cfg.Migrate {
			if err := gormStore.AutoMigrate(ctx); err != nil {
				closer()
				return nil, nil, err
			}
			logger.Info("Products table synchronized", "driver", cfg.Driver)
		}
		return gormStore, closer, nil
	default:
		if cfg.Migrate {
			if err := store.Migrate(cfg.URL); err != nil {
				return nil, nil, err
			}
			logger.Info("Database migrations applied", "driver", cfg.Driver)
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPgStore(dbPool), dbPool.Close, nil
	}
}

// NewPublisher returns the lifecycle event publisher.
// With NATS enabled events go to JetStream behind a circuit breaker, otherwise they are dropped.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS is disabled, product events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	stream := cfg.Nats.Stream
	if stream == "" {
		stream = eventsStream
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
	defer cancel()
	if _, err := pnats.EnsureStream(streamCtx, js, stream, messaging.ProductsSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Successfully connected to NATS", "url", cfg.Nats.Url, "stream", stream)

	publisher := messaging.NewBreakerPublisher(pnats.NewNatsPublisher(js), cfg.Resilience.CircuitBreaker, logger)
	closer := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("failed to drain NATS connection", "error", err)
		}
	}
	return publisher, closer, nil
}

// SetupHttpHandler initializes the routes and middleware of the pantry service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "pantry",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// wireRoutes sets up the HTTP routes for the pantry service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the pantry service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupPprofServer creates the profiling server. It is only started when pprof is enabled.
func SetupPprofServer(cfg *config.Config) *http.Server {
	return server.NewPprofServer(cfg.PProf, cfg.HTTPServer.Timeout.ReadHeader)
}

// SetupGrpcServer initializes the gRPC server with the health service.
func SetupGrpcServer(deps *Dependencies, health *grpcImpl.HealthServer, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, health.Register)
}
