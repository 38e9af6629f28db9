package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"hr-onboarding-backend/internal/logger"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check service name reported alongside the overall status.
const ServiceName = "hr.onboarding.v1.Backend"

const defaultProbeInterval = 15 * time.Second

// Checker probes a dependency the backend cannot serve without. *sql.DB satisfies it.
type Checker interface {
	PingContext(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1 for orchestrators, driven by periodic dependency probes.
type HealthServer struct {
	listener      net.Listener
	grpcServer    *gogrpc.Server
	health        *health.Server
	checker       Checker
	probeInterval time.Duration
}

// NewHealthServer listens on addr. A zero probeInterval uses the default.
func NewHealthServer(addr string, checker Checker, probeInterval time.Duration) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}

	grpcServer := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// Register reflection service for grpcurl
	reflection.Register(grpcServer)

	return &HealthServer{
		listener:      listener,
		grpcServer:    grpcServer,
		health:        healthServer,
		checker:       checker,
		probeInterval: probeInterval,
	}, nil
}

// Addr returns the listener address for the server.
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Serve runs until ctx is cancelled, then stops gracefully.
func (s *HealthServer) Serve(ctx context.Context) error {
	s.probe(ctx)

	logger.Info("gRPC health server listening", "address", s.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.probe(ctx)
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			err := <-serveErr
			if err == nil || errors.Is(err, gogrpc.ErrServerStopped) {
				return nil
			}
			return fmt.Errorf("serve gRPC: %w", err)
		case err := <-serveErr:
			if err == nil || errors.Is(err, gogrpc.ErrServerStopped) {
				return nil
			}
			return fmt.Errorf("serve gRPC: %w", err)
		}
	}
}

func (s *HealthServer) probe(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if s.checker != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.checker.PingContext(probeCtx)
		cancel()
		if err != nil {
			logger.Warn("Health probe failed", "error", err)
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
