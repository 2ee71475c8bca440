// Package server wires the CodeNexus backend together: it opens the
// configured storage backend, builds the services, and runs the REST API
// and the gRPC health endpoint until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/config"
	"github.com/devquest/codenexus/internal/server/ratelimit"
	"github.com/devquest/codenexus/internal/server/services"
	"github.com/devquest/codenexus/internal/server/storage"
	"github.com/devquest/codenexus/internal/server/storage/memstore"
	"github.com/devquest/codenexus/internal/server/storage/pgstore"

	gs "github.com/devquest/codenexus/internal/server/grpc"
	hs "github.com/devquest/codenexus/internal/server/http"
)

const healthProbeInterval = 15 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   storage.Storage
	limiter ratelimit.Limiter
	forum   *services.ForumService
	users   *services.UserService
	avatars *services.AvatarService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	store, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	var limiter ratelimit.Limiter = ratelimit.NopLimiter{}
	if c.RedisAddr != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		limiter = ratelimit.NewRedisLimiter(rdb, c.RateLimitRequests, c.RateLimitWindow)
	}

	return newApp(c, logger, store, limiter), nil
}

func newApp(c *config.Config, logger logging.Logger, store storage.Storage, limiter ratelimit.Limiter) *App {
	return &App{
		config:  c,
		logger:  logger,
		store:   store,
		limiter: limiter,
		forum:   services.NewForumService(store, logger),
		users:   services.NewUserService(store, c, logger),
		avatars: services.NewAvatarService(store, c, logger),
	}
}

func openStorage(ctx context.Context, c *config.Config) (storage.Storage, error) {
	switch c.StorageBackend {
	case config.BackendMemory:
		return memstore.New()
	case config.BackendPostgres:
		return pgstore.Open(ctx, c.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := hs.NewServer(app.config.EndpointAddrHTTP, app.logger, hs.Deps{
		Forum:   app.forum,
		Users:   app.users,
		Avatars: app.avatars,
		Limiter: app.limiter,
	}, app.config.CORSOrigins)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.store, healthProbeInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// cleanupSessions drops expired sessions every SessionCleanupInterval.
func (app *App) cleanupSessions(ctx context.Context) {
	if app.config.SessionCleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(app.config.SessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.users.CleanupSessions(ctx)
			if err != nil {
				app.logger.Error(ctx, "session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

// Run blocks until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.cleanupSessions(ctx)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
