package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/yuutai/pkg/config"
	"github.com/wonny/yuutai/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// Server serves the ranking API until its context ends
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	env        string
	routes     []string
}

// New creates a server for router on cfg.Port
func New(cfg *config.Config, log *logger.Logger, router *mux.Router) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
			// rankings recompute from snapshots; the realtime feed is one upstream call
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		env:    cfg.Env,
		routes: Routes(router),
	}
}

// Routes lists "METHOD /path" for every route of router
func Routes(router *mux.Router) []string {
	var routes []string
	router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			// prefix routes without handlers of their own
			return nil
		}
		routes = append(routes, strings.Join(methods, ",")+" "+path)
		return nil
	})
	return routes
}

// Run listens on the configured address and serves until ctx is done,
// then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.WithFields(map[string]interface{}{
		"addr":   ln.Addr().String(),
		"env":    s.env,
		"routes": len(s.routes),
	}).Info("Starting API server")
	for _, r := range s.routes {
		s.logger.WithField("route", r).Debug("Route registered")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
