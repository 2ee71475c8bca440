// Package http serves the CodeNexus REST API with gin.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/ratelimit"
	"github.com/devquest/codenexus/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services behind the API.
type Deps struct {
	Forum   *services.ForumService
	Users   *services.UserService
	Avatars *services.AvatarService
	Limiter ratelimit.Limiter
}

type Server struct {
	address string
	logger  logging.Logger
	engine  *gin.Engine
}

func NewServer(address string, l logging.Logger, deps Deps, corsOrigins []string) *Server {
	logger := l.With("module", "http_server")
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NopLimiter{}
	}
	h := &handler{forum: deps.Forum, users: deps.Users, avatars: deps.Avatars, logger: logger}
	return &Server{
		address: address,
		logger:  logger,
		engine:  newRouter(h, logger, deps.Limiter, corsOrigins),
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
