// Package server provides the HTTP server of the IDE bridge.
// It handles server lifecycle, API routes, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/api/handler"
	"github.com/verustcode/giteebridge/internal/api/router"
	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/provider"
	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// HTTP server timeout configuration
const (
	defaultReadTimeout  = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultStopTimeout  = 5 * time.Second
	shutdownGracePeriod = 5 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	listener   net.Listener
	provider   provider.Provider
	clients    handler.ClientResolver
	router     *gin.Engine
}

// New creates a new server instance
func New(cfg *config.Config, p provider.Provider, clients handler.ClientResolver) *Server {
	// Set Gin mode based on debug flag
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	return &Server{
		cfg:      cfg,
		provider: p,
		clients:  clients,
		router:   r,
	}
}

// SetupRoutes configures all routes
func (s *Server) SetupRoutes() {
	router.Setup(s.router, s.cfg, router.Dependencies{
		Provider: s.provider,
		Clients:  s.clients,
	})
}

// writeTimeout leaves room for a full paged listing behind one request
func (s *Server) writeTimeout() time.Duration {
	if t := s.cfg.Gitee.Timeout; t > 0 {
		return 4*t + shutdownGracePeriod
	}
	return 0
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to listen on "+s.cfg.Server.Address(), err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: s.writeTimeout(),
		IdleTimeout:  defaultIdleTimeout,
	}

	logger.Info("Starting HTTP server",
		zap.String("address", ln.Addr().String()),
		zap.Bool("debug", s.cfg.Server.Debug),
	)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// WaitForShutdown waits for a shutdown signal or ctx, then gracefully stops
// the server. A second signal forces immediate exit.
func (s *Server) WaitForShutdown(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal, starting graceful shutdown (press Ctrl+C again to force exit)",
			zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context done, shutting down")
	}

	go func() {
		sig := <-quit
		logger.Warn("Received second shutdown signal, forcing exit",
			zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	if err := s.shutdown(s.writeTimeout() + shutdownGracePeriod); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// Stop stops the server without waiting for long requests
func (s *Server) Stop() error {
	return s.shutdown(defaultStopTimeout)
}

func (s *Server) shutdown(timeout time.Duration) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
