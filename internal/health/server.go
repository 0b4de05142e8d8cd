// Package health exposes the standard gRPC health service. The bot reports
// SERVING while its backend credential is fresh.
package health

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported alongside the overall ("") status.
const Service = "knaughts"

const defaultInterval = 5 * time.Second

// Probe reports whether the process can serve; *backend.AuthSession
// implements it.
type Probe interface {
	Healthy() bool
}

type Server struct {
	address  string
	probe    Probe
	interval time.Duration
	logger   logging.Logger
	hs       *health.Server
}

// NewServer returns a health server for address that polls probe every
// interval.
func NewServer(address string, probe Probe, interval time.Duration, l logging.Logger) *Server {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Server{
		address:  address,
		probe:    probe,
		interval: interval,
		logger:   l,
		hs:       health.NewServer(),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.hs)

	s.update(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping health server...")
		s.hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.update(ctx)
		}
	}
}

func (s *Server) update(ctx context.Context) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.probe.Healthy() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	if ctx.Err() != nil {
		return
	}
	s.hs.SetServingStatus("", status)
	s.hs.SetServingStatus(Service, status)
	s.logger.Debug(ctx, "health status", "status", status.String())
}
