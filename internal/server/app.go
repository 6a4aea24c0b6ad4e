// Package server assembles the HearthGate core from configuration and runs
// its background services: the audit trail flusher and the periodic
// screen-time snapshot, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hearthgate/hearthgate/internal/audit"
	"github.com/hearthgate/hearthgate/internal/cache"
	"github.com/hearthgate/hearthgate/internal/cryptox"
	"github.com/hearthgate/hearthgate/internal/engine"
	"github.com/hearthgate/hearthgate/internal/filter"
	"github.com/hearthgate/hearthgate/internal/logging"
	"github.com/hearthgate/hearthgate/internal/policy"
	"github.com/hearthgate/hearthgate/internal/roster"
	"github.com/hearthgate/hearthgate/internal/s3x"
	"github.com/hearthgate/hearthgate/internal/screentime"
	"github.com/hearthgate/hearthgate/internal/server/config"
	"github.com/hearthgate/hearthgate/internal/server/db"
	"github.com/hearthgate/hearthgate/internal/snapshot"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// App is the composition root. It owns every service the gateway exposes and
// the resources they share.
type App struct {
	config *config.Config
	logger logging.Logger

	conn     *sql.DB // nil when running with in-memory storage
	s3Client *awss3.Client

	cache      cache.Cache
	crypto     *cryptox.Gateway
	trail      *audit.Trail
	roster     *roster.Service
	engine     *engine.Engine
	accountant *screentime.Accountant
	snapshots  *snapshot.Service
}

// NewApp wires all components according to the config. Empty DSN, Redis
// address and S3 bucket select the in-process fallbacks, so a zero-value
// deployment needs no external services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &App{config: cfg, logger: logger}

	if err := app.initCache(ctx); err != nil {
		return nil, err
	}

	crypto, err := cryptox.New(cfg.SecretKey, app.cache, logger, cfg.EncryptTTL, cfg.DecryptTTL)
	if err != nil {
		return nil, fmt.Errorf("crypto init error: %w", err)
	}
	app.crypto = crypto

	if cfg.DatabaseDSN != "" {
		conn, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := db.RunMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		app.conn = conn
	}

	if cfg.S3Bucket != "" {
		client, err := s3x.NewClient(ctx, s3x.Options{
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		app.s3Client = client
	}

	app.trail = audit.New(app.auditStore(), crypto, logger,
		audit.WithFlushInterval(cfg.FlushInterval),
		audit.WithBatchSize(cfg.FlushBatchSize))

	app.roster = roster.NewService(app.rosterRepository(), app.trail, logger,
		[]byte(cfg.SecretKey), cfg.SessionTokenValidity)

	opts := []engine.Option{engine.WithAccessTTL(cfg.AccessTTL)}
	if cfg.FilterBaseURL != "" {
		opts = append(opts,
			engine.WithRemoteFilter(filter.NewClient(cfg.FilterBaseURL, cfg.FilterTimeout)),
			engine.WithBlockThreshold(cfg.FilterBlockThreshold))
	}
	app.engine = engine.New(policy.Default(), app.cache, app.trail, logger, opts...)

	app.accountant = screentime.New(app.cache, app.trail, logger).WithTTL(cfg.ScreenTimeTTL)

	app.snapshots = snapshot.NewService(app.snapshotStore(), crypto, logger)

	return app, nil
}

func (app *App) initCache(ctx context.Context) error {
	if app.config.RedisAddr != "" {
		c, err := cache.Dial(ctx, app.config.RedisAddr, app.logger)
		if err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
		app.cache = c
		return nil
	}
	c, err := cache.NewMemory(app.config.CacheCapacity)
	if err != nil {
		return fmt.Errorf("cache init error: %w", err)
	}
	app.cache = c
	return nil
}

func (app *App) auditStore() audit.Store {
	switch {
	case app.conn != nil:
		return audit.NewPostgresStore(app.conn)
	case app.s3Client != nil:
		return audit.NewS3Store(app.s3Client, app.config.S3Bucket)
	default:
		return audit.NewMemoryStore()
	}
}

func (app *App) rosterRepository() roster.Repository {
	if app.conn != nil {
		return roster.NewPostgresRepository(app.conn)
	}
	return roster.NewMemoryRepository()
}

func (app *App) snapshotStore() snapshot.Store {
	if app.s3Client != nil {
		return snapshot.NewS3Store(app.s3Client, app.config.S3Bucket)
	}
	return snapshot.NewFileStore(app.config.SnapshotDir)
}

// Engine exposes the access-decision engine.
func (app *App) Engine() *engine.Engine { return app.engine }

// Roster exposes the family-member service.
func (app *App) Roster() *roster.Service { return app.roster }

// Accountant exposes the screen-time accountant.
func (app *App) Accountant() *screentime.Accountant { return app.accountant }

// Crypto exposes the crypto gateway.
func (app *App) Crypto() *cryptox.Gateway { return app.crypto }

// Trail exposes the audit trail.
func (app *App) Trail() *audit.Trail { return app.trail }

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// saveSessionsLoop snapshots active screen-time sessions on a timer so a
// restart does not hand members a fresh daily budget.
func (app *App) saveSessionsLoop(ctx context.Context) {
	ticker := time.NewTicker(app.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownFlushTimeout)
			defer cancel()
			if err := app.snapshots.SaveSessions(saveCtx, app.accountant.State()); err != nil {
				app.logger.Error(saveCtx, "final session snapshot failed", "error", err)
			}
			return
		case <-ticker.C:
			if err := app.snapshots.SaveSessions(ctx, app.accountant.State()); err != nil {
				app.logger.Error(ctx, "session snapshot failed", "error", err)
			}
		}
	}
}

// Run restores persisted sessions and drives the background services until
// the context is cancelled or an OS signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting hearthgate")

	app.initSignalHandler(cancelFunc)

	app.accountant.Restore(app.snapshots.LoadSessions(ctx))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.trail.Run(ctx, app.config.ShutdownFlushTimeout)
		return nil
	})

	g.Go(func() error {
		app.saveSessionsLoop(ctx)
		return nil
	})

	g.Wait()

	if app.conn != nil {
		if err := app.conn.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	app.logger.Info(ctx, "hearthgate stopped")
}
