package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/besttime"
	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/database"
	"github.com/vancomm/minesweeper-engine/internal/session"
	"github.com/vancomm/minesweeper-engine/internal/snapshot"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	config   *config.Config
	log      logrus.FieldLogger
	router   *http.ServeMux
	db       *pgxpool.Pool
	tracker  *besttime.Tracker
	sessions *session.Manager
}

func New(cfg *config.Config, log logrus.FieldLogger) *App {
	return &App{
		config: cfg,
		log:    log,
		router: http.NewServeMux(),
	}
}

// OpenStore returns the best time store selected by the config. The returned
// pool is nil unless the postgres backend is in use.
func OpenStore(
	ctx context.Context, cfg *config.Config, log logrus.FieldLogger,
) (besttime.Records, *pgxpool.Pool, error) {
	switch backend := cfg.BestTime.Backend; backend {
	case "", config.BackendMemory:
		return besttime.NewMemoryStore(), nil, nil
	case config.BackendFile:
		return besttime.NewFileStore(cfg.BestTime.Path), nil, nil
	case config.BackendPostgres:
		url, err := cfg.Postgres.URL()
		if err != nil {
			return nil, nil, err
		}
		pool, version, err := database.ConnectAndMigrate(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("version", version).Info("database migrated")
		return besttime.NewPostgresStore(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown best time backend %q", backend)
	}
}

// NewTracker opens the configured store and loads the best time of the
// configured board.
func NewTracker(
	ctx context.Context, cfg *config.Config, log logrus.FieldLogger,
) (*besttime.Tracker, *pgxpool.Pool, error) {
	store, pool, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	timeout := cfg.BestTime.Timeout.Duration
	tracker, err := besttime.NewTracker(ctx, store, cfg.Board.Key(), timeout, log)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, nil, fmt.Errorf("unable to load best time: %w", err)
	}
	return tracker, pool, nil
}

// Snapshots returns the saver of finished boards, nil when disabled.
func Snapshots(cfg *config.Config) *snapshot.Saver {
	if cfg.SnapshotsDir == "" {
		return nil
	}
	return &snapshot.Saver{Dir: cfg.SnapshotsDir}
}

func (a *App) tokenSecret() ([]byte, error) {
	if a.config.Token.Secret != "" {
		return []byte(a.config.Token.Secret), nil
	}
	if a.config.Production() {
		return nil, errors.New("token secret must be set in production")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	a.log.Warn("token secret is not set, tokens will not survive a restart")
	return secret, nil
}

// Setup opens storage and builds the session manager and routes.
func (a *App) Setup(ctx context.Context) error {
	tracker, pool, err := NewTracker(ctx, a.config, a.log)
	if err != nil {
		return err
	}
	a.tracker, a.db = tracker, pool

	secret, err := a.tokenSecret()
	if err != nil {
		a.Close()
		return err
	}
	a.sessions = session.NewManager(
		a.config.Board,
		tracker,
		session.NewTokens(secret, a.config.Token.Lifetime.Duration),
		session.Options{
			TickInterval: a.config.TickInterval.Duration,
			Snapshots:    Snapshots(a.config),
			Log:          a.log,
		},
	)

	a.loadRoutes()
	return nil
}

// Close ends every session and releases the database.
func (a *App) Close() {
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Run serves until ctx is done, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	defer a.Close()

	listener, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, listener)
}

func (a *App) serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.Infof("ready to serve @ %s", listener.Addr())

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
