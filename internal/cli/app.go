package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curio-cabinet/curio/internal/app/progression"
	"github.com/curio-cabinet/curio/internal/app/registry"
	"github.com/curio-cabinet/curio/internal/daemon"
	"github.com/curio-cabinet/curio/internal/domain"
	"github.com/curio-cabinet/curio/internal/infra/logger"
	"github.com/curio-cabinet/curio/internal/infra/redisstore"
	"github.com/curio-cabinet/curio/internal/infra/sqlite"
)

// ─── Application Wiring ─────────────────────────────────────────────────────

// app bundles what every command needs.
type app struct {
	cfg    daemon.Config
	log    *logger.Logger
	reg    *registry.Registry
	store  domain.StateStore
	sqlDB  *sqlite.DB // set for the sqlite backend
	closer func() error
}

// loadConfig resolves --config and loads the configuration.
func loadConfig(cmd *cobra.Command) (daemon.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = daemon.ConfigPath()
	}
	return daemon.Load(path)
}

// newApp loads config, builds the logger and opens the store. serving
// selects the configured log level; one-shot commands log warnings only
// unless --verbose is set.
func newApp(cmd *cobra.Command, serving bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	} else if !serving {
		level = "warn"
	}
	log, err := logger.New(cfg.Log.Mode, level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, reg: registry.Default(), closer: func() error { return nil }}
	if err := a.openStore(cmd.Context()); err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Storage.Backend {
	case daemon.BackendSQLite:
		db, err := sqlite.Open(a.cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		a.store, a.sqlDB, a.closer = db, db, db.Close
	case daemon.BackendRedis:
		rc := redisstore.DefaultConfig()
		rc.Addr = a.cfg.Redis.Addr
		rc.Password = a.cfg.Redis.Password
		rc.DB = a.cfg.Redis.DB
		rc.Key = a.cfg.Redis.Key
		s, err := redisstore.New(ctx, rc)
		if err != nil {
			return fmt.Errorf("open redis store: %w", err)
		}
		a.store, a.closer = s, s.Close
	default:
		a.store = progression.NewMemoryStore()
	}
	a.log.Debug("store opened", "backend", a.cfg.Storage.Backend)
	return nil
}

// engine builds the progression engine over the app's store.
func (a *app) engine(ctx context.Context, opts ...progression.Option) (*progression.Engine, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	base := []progression.Option{
		progression.WithStore(a.store),
		progression.WithLogger(a.log.With("component", "progression")),
		progression.WithLocation(loc),
		progression.WithTotalModules(a.reg.Len()),
	}
	return progression.New(ctx, append(base, opts...)...)
}

// Close releases the store and flushes logs.
func (a *app) Close() {
	if err := a.closer(); err != nil {
		a.log.Warn("close store", "error", err)
	}
	a.log.Sync()
}
