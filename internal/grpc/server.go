package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"partsCatalog/internal/auth"
	"partsCatalog/internal/observability"
)

const (
	healthCheckMethod = "/grpc.health.v1.Health/Check"
	healthWatchMethod = "/grpc.health.v1.Health/Watch"

	// ServiceName is the health service name reported alongside the overall "" entry.
	ServiceName = "partscatalog"
)

// Server is the gRPC listener of the catalog. It carries the standard health
// service, open to anyone, and server reflection, which needs a bearer token.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    logrus.FieldLogger
}

// New builds the server and subscribes it to checker so readiness results
// flip the health status between SERVING and NOT_SERVING.
func New(tokens *auth.TokenService, checker *observability.HealthChecker, log logrus.FieldLogger) *Server {
	if log == nil {
		log = observability.Discard()
	}
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			auth.NewUnaryAuthInterceptor(tokens, healthCheckMethod, healthWatchMethod),
			unaryLogger(log),
		),
		grpc.ChainStreamInterceptor(
			auth.NewStreamAuthInterceptor(tokens, healthCheckMethod, healthWatchMethod),
			streamLogger(log),
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{srv: srv, health: hs, log: log}
	s.SetServing(true)
	if checker != nil {
		checker.OnChange(s.SetServing)
	}
	return s
}

// SetServing updates the status of both the overall and the named service.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_SERVING
	if !ok {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Serve blocks until lis fails or the server stops.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Shutdown stops gracefully, falling back to a hard stop when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() { s.srv.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		return ctx.Err()
	}
}

// StartGRPC listens on addr and serves in the background. It returns the
// shutdown function and the bound address. Serve failures after a successful
// listen are logged.
func StartGRPC(addr string, s *Server) (func(context.Context) error, net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			s.log.WithError(err).Error("grpc serve")
		}
	}()
	return s.Shutdown, lis.Addr(), nil
}

// unaryLogger logs every call after authentication, so the entry carries the
// caller's token subject when there is one.
func unaryLogger(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		callEntry(ctx, log, info.FullMethod, start, err).Debug("grpc call")
		return resp, err
	}
}

func streamLogger(log logrus.FieldLogger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		callEntry(ss.Context(), log, info.FullMethod, start, err).Debug("grpc stream")
		return err
	}
}

func callEntry(ctx context.Context, log logrus.FieldLogger, method string, start time.Time, err error) *logrus.Entry {
	entry := log.WithFields(logrus.Fields{
		"method":   method,
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	})
	if sub, ok := auth.SubjectFromContext(ctx); ok {
		entry = entry.WithField("subject", sub)
	}
	return entry
}
