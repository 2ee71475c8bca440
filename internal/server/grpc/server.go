// Package grpc exposes the standard gRPC health service. A background probe
// reports SERVING while the forum storage answers pings.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/devquest/codenexus/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StorageService is the health service name that tracks storage liveness.
// The overall status ("") follows it.
const StorageService = "codenexus.Storage"

const defaultProbeInterval = 10 * time.Second

// Pinger is satisfied by storage.Storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	address       string
	logger        logging.Logger
	pinger        Pinger
	probeInterval time.Duration
	health        *health.Server
}

func NewHealthServer(a string, l logging.Logger, p Pinger, probeInterval time.Duration) *HealthServer {
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}
	return &HealthServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		pinger:        p,
		probeInterval: probeInterval,
		health:        health.NewServer(),
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.probeLoop(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *HealthServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *HealthServer) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.probeInterval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "storage ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(StorageService, status)
	s.health.SetServingStatus("", status)
}
