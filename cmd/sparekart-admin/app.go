package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/config"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
	"github.com/shubhamsharma16/SparekartAdmin/store/gormstore"
	"github.com/shubhamsharma16/SparekartAdmin/store/memstore"
	"github.com/shubhamsharma16/SparekartAdmin/store/mongostore"
)

// Globals are the flags shared by every command. Flags and environment
// variables override the config file.
type Globals struct {
	Config   string `short:"c" default:"${config_path}" env:"SPAREKART_CONFIG" type:"path" help:"Path to the YAML config file."`
	Driver   string `env:"SPAREKART_STORE_DRIVER" enum:",memory,sqlite,mysql,postgres,mongo" default:"" help:"Store driver (memory, sqlite, mysql, postgres, mongo)."`
	DSN      string `env:"SPAREKART_STORE_DSN" help:"Store connection string."`
	Database string `env:"SPAREKART_STORE_DATABASE" help:"Mongo database name."`
	LogLevel string `env:"SPAREKART_LOG_LEVEL" help:"Log level (debug, info, warn, error)."`

	out io.Writer
	// cfg, when set, replaces loading the config file.
	cfg *config.Config
	// noSeed skips the start-up seeding of the store.
	noSeed bool
}

// app holds what a command needs after start-up.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    pager.Store
	registry *admin.Registry
	close    func(context.Context) error
}

func (g *Globals) loadConfig() (*config.Config, error) {
	cfg := g.cfg
	if cfg == nil {
		var err error
		if cfg, err = config.Load(g.Config, false); err != nil {
			return nil, err
		}
	}

	cfg.Store.Driver = lo.CoalesceOrEmpty(g.Driver, cfg.Store.Driver)
	cfg.Store.DSN = lo.CoalesceOrEmpty(g.DSN, cfg.Store.DSN)
	cfg.Store.Database = lo.CoalesceOrEmpty(g.Database, cfg.Store.Database)
	cfg.Log.Level = lo.CoalesceOrEmpty(g.LogLevel, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (g *Globals) open(ctx context.Context) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := config.NewLogger(cfg.Log)

	registry, err := admin.NewRegistry(cfg.RegistryOptions()...)
	if err != nil {
		return nil, err
	}

	store, closeFn, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	if !g.noSeed && (cfg.Store.Seed || cfg.Store.Driver == config.DriverMemory) {
		fixtures, err := admin.DemoFixtures()
		if err == nil {
			_, err = admin.Seed(ctx, store, fixtures)
		}
		if err != nil {
			_ = closeFn(ctx)
			return nil, err
		}
	}

	logger.Debug().Str("driver", cfg.Store.Driver).Msg("store ready")

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		close:    closeFn,
	}, nil
}

// seedableStore is implemented by every store driver.
type seedableStore interface {
	pager.Store
	pager.Inserter
}

func openStore(ctx context.Context, c config.StoreConfig, logger zerolog.Logger) (seedableStore, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch c.Driver {
	case config.DriverMemory:
		return memstore.New(), noop, nil
	case config.DriverSQLite, config.DriverMySQL, config.DriverPostgres:
		opts := []gormstore.Option{gormstore.WithLogger(logger)}
		for name, col := range c.Collections {
			opts = append(opts, gormstore.WithCollection(name, gormstore.Collection{
				Table:    col.Table,
				IDColumn: col.IDColumn,
				Columns:  col.Columns,
			}))
		}

		s, err := gormstore.Open(c.Driver, c.DSN, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return s.Close() }, nil
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, c.DSN, c.Database, mongostore.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver '%s'", c.Driver)
	}
}

// withApp opens the app, runs fn and closes the store.
func (g *Globals) withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := g.open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()

	return fn(a)
}
