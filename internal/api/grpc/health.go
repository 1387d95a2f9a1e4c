package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rental-booking-backend/internal/api/grpc/interceptor"
	"rental-booking-backend/internal/logger"
)

// ServiceName is the health-checked service besides the server-wide "" entry.
const ServiceName = "rental.booking.v1.BookingAPI"

const (
	defaultProbeInterval = 10 * time.Second
	probeTimeout         = 2 * time.Second
)

// HealthServer exposes grpc.health.v1 with a status that follows storage health.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	ping     func(ctx context.Context) error
	interval time.Duration
}

// NewHealthServer builds the server. A nil ping always reports SERVING.
func NewHealthServer(ping func(ctx context.Context) error, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Unary()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)

	return &HealthServer{server: s, health: hs, ping: ping, interval: interval}
}

// Probe pings storage once and publishes the result.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ping != nil {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.ping(pctx)
		cancel()
		if err != nil {
			logger.Warn("Storage health probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch probes on every interval until ctx is done.
func (s *HealthServer) Watch(ctx context.Context) {
	s.Probe(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Serve blocks serving on lis.
func (s *HealthServer) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains open calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
