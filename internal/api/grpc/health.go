// Package grpc exposes the standard gRPC health service and reflection next to the HTTP API.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"ubertool-booking/internal/api/grpc/interceptor"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/security"
)

// ServiceName is the health service name reported for the booking backend.
const ServiceName = "ubertool.booking"

// Probe checks the backing stores. A nil error means ready.
type Probe func(ctx context.Context) error

type Server struct {
	srv    *grpc.Server
	health *health.Server
	probe  Probe
}

func NewServer(tm security.TokenManager, probe Probe) *Server {
	auth := interceptor.NewAuthInterceptor(tm)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), auth.Unary()),
		grpc.StreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{srv: srv, health: hs, probe: probe}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// CheckNow runs the probe once and publishes the result.
func (s *Server) CheckNow(ctx context.Context) error {
	if s.probe == nil {
		return nil
	}
	err := s.probe(ctx)
	if err != nil {
		logger.Warn("Health probe failed", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Watch re-runs the probe every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			_ = s.CheckNow(probeCtx)
			cancel()
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// GracefulStop reports NOT_SERVING first so load balancers drain before the listener closes.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
