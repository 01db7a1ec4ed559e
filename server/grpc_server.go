package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/db"
	"github.com/Kotlang/summitGo/interceptors"
	"github.com/Kotlang/summitGo/logger"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const storeCheckInterval = 30 * time.Second

// GrpcServer serves the health and reflection services. Health reflects
// whether the store answers pings.
type GrpcServer struct {
	Server *grpc.Server
	health *health.Server
	db     db.SummitDbInterface
	addr   string
	stop   chan struct{}
}

func NewGrpcServer(addr string, issuer *auth.SessionIssuer, summitDb db.SummitDbInterface) *GrpcServer {
	grpcServer := grpc.NewServer(
		grpc_middleware.WithUnaryServerChain(interceptors.UnaryInterceptors(issuer)...),
		grpc_middleware.WithStreamServerChain(interceptors.StreamInterceptors(issuer)...),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return &GrpcServer{
		Server: grpcServer,
		health: healthServer,
		db:     summitDb,
		addr:   addr,
		stop:   make(chan struct{}),
	}
}

func (s *GrpcServer) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	logger.Info("Starting grpc server", zap.String("addr", s.addr))
	return s.Serve(lis)
}

// Serve blocks serving lis until Stop.
func (s *GrpcServer) Serve(lis net.Listener) error {
	s.checkStore()
	go s.watchStore()
	return s.Server.Serve(lis)
}

func (s *GrpcServer) checkStore() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			logger.Warn("Store ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
}

func (s *GrpcServer) watchStore() {
	ticker := time.NewTicker(storeCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkStore()
		}
	}
}

func (s *GrpcServer) Stop() {
	close(s.stop)
	s.health.Shutdown()
	s.Server.GracefulStop()
}
