package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Kotlang/summitGo/logger"
	"go.uber.org/zap"
)

type HttpServer struct {
	srv *http.Server
}

func NewHttpServer(addr string, handler http.Handler) *HttpServer {
	return &HttpServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *HttpServer) Start() error {
	logger.Info("Starting http server", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *HttpServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
