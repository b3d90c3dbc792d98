// Package grpc exposes the operational gRPC surface of the pantry service.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name under which pantry readiness is reported.
const ServiceName = "pantry.Products"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer publishes the standard gRPC health service.
// Its serving status follows the store's reachability.
type HealthServer struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	logger   *slog.Logger
}

// NewHealthServer creates a HealthServer that starts NOT_SERVING until the first check.
func NewHealthServer(store Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		server:   srv,
		store:    store,
		interval: interval,
		logger:   logger.With("component", "grpc-health"),
	}
}

// Register adds the health service to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Check pings the store once and updates the serving status.
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "store is not reachable", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks the store every interval until ctx is done, then marks the server as shutting down.
func (h *HealthServer) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		pingCtx, cancel := context.WithTimeout(ctx, h.interval)
		h.Check(pingCtx)
		cancel()
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return nil
		case <-ticker.C:
		}
	}
}
