package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentdesk-backend/internal/api/grpc/interceptor"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/security"
)

// ServiceName is the health-check name probes can ask for besides the overall "" status.
const ServiceName = "rentdesk.Booking"

// Server exposes grpc.health.v1 and reflection. Status follows a periodic database ping.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	ping     func(ctx context.Context) error
	interval time.Duration
}

func NewServer(tokenManager security.TokenManager, ping func(ctx context.Context) error, interval time.Duration) *Server {
	auth := interceptor.NewAuthInterceptor(tokenManager)
	s := grpc.NewServer(
		grpc.UnaryInterceptor(auth.Unary()),
		grpc.StreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)

	srv := &Server{
		grpc:     s,
		health:   hs,
		ping:     ping,
		interval: interval,
	}
	srv.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return srv
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Probe pings the database once and updates the reported status.
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.ping(ctx); err != nil {
		logger.Warn("Database ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.setStatus(st)
	return st
}

// Serve probes every interval until ctx ends, serving on lis meanwhile.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	logger.Info("gRPC server listening", "address", lis.Addr().String())
	return s.grpc.Serve(lis)
}

func (s *Server) watch(ctx context.Context) {
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
