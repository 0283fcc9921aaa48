// Package health serves the standard gRPC health protocol for the duel
// server so orchestrators can probe it.
package health

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/observability"
)

// Service is the gRPC service name reported alongside the overall status.
const Service = "brawl.Duel"

// Server is a gRPC server exposing only the health service.
type Server struct {
	cfg    config.HealthConfig
	logger *zap.Logger
	grpc   *grpc.Server
	health *grpchealth.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a health server reporting NOT_SERVING until SetServing.
//
// Postcondition: Returns a non-nil Server that is not yet listening.
func NewServer(cfg config.HealthConfig, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: observability.Component(logger, "health"),
		grpc:   grpc.NewServer(),
		health: grpchealth.NewServer(),
	}
	grpc_health_v1.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(false)
	return s
}

// SetServing flips the overall and duel service status.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(Service, status)
}

// Listen binds the configured address.
//
// Postcondition: Addr returns the bound address on success.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr()
}

// Start serves until Stop. It binds first if Listen was not called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.logger.Info("health endpoint listening", zap.String("addr", ln.Addr().String()))
	if err := s.grpc.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serving health: %w", err)
	}
	return nil
}

// Stop reports NOT_SERVING and stops the gRPC server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
