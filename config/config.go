// Package config loads the YAML configuration of the admin tool.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

const (
	DefaultPath = "sparekart.yaml"
	DefaultAddr = ":8080"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

var ErrInvalidConfig = errors.New("invalid config")

var _drivers = []string{DriverMemory, DriverSQLite, DriverMySQL, DriverPostgres, DriverMongo}

type Config struct {
	Log    LogConfig             `yaml:"log"`
	Server ServerConfig          `yaml:"server"`
	Store  StoreConfig           `yaml:"store"`
	Views  map[string]ViewConfig `yaml:"views"`
}

type LogConfig struct {
	// Level is a zerolog level name.
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"`
	// Seed loads the demo fixtures on start. The memory driver always seeds.
	Seed bool `yaml:"seed"`
	// Collections overrides the SQL table mapping per collection.
	Collections map[string]CollectionConfig `yaml:"collections"`
}

type CollectionConfig struct {
	Table    string            `yaml:"table"`
	IDColumn string            `yaml:"idColumn"`
	Columns  map[string]string `yaml:"columns"`
}

type ViewConfig struct {
	PageSize   int    `yaml:"pageSize"`
	FilterMode string `yaml:"filterMode"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: FormatConsole},
		Server: ServerConfig{Addr: DefaultAddr},
		Store:  StoreConfig{Driver: DriverMemory},
		Views:  map[string]ViewConfig{},
	}
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults unless required is set. A .env file in the working directory is
// loaded first when present.
func Load(path string, required bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return Default(), nil
		}
		return nil, fmt.Errorf("cannot open config: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a configuration.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Log.Level = lo.CoalesceOrEmpty(c.Log.Level, "info")
	c.Log.Format = lo.CoalesceOrEmpty(c.Log.Format, FormatConsole)
	c.Server.Addr = lo.CoalesceOrEmpty(c.Server.Addr, DefaultAddr)
	c.Store.Driver = lo.CoalesceOrEmpty(strings.ToLower(c.Store.Driver), DriverMemory)
	if c.Views == nil {
		c.Views = map[string]ViewConfig{}
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(_drivers, c.Store.Driver) {
		return fmt.Errorf("%w: unknown store driver '%s', did you mean '%s'?",
			ErrInvalidConfig, c.Store.Driver, pager.Closest(c.Store.Driver, _drivers))
	}

	if c.Store.Driver != DriverMemory && c.Store.DSN == "" {
		return fmt.Errorf("%w: store.dsn is required for driver '%s'", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Store.Driver == DriverMongo && c.Store.Database == "" {
		return fmt.Errorf("%w: store.database is required for driver '%s'", ErrInvalidConfig, DriverMongo)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Log.Format != FormatConsole && c.Log.Format != FormatJSON {
		return fmt.Errorf("%w: unknown log format '%s'", ErrInvalidConfig, c.Log.Format)
	}

	for _, name := range lo.Keys(c.Views) {
		if !slices.Contains(admin.Names(), name) {
			return fmt.Errorf("%w: unknown view '%s', did you mean '%s'?",
				ErrInvalidConfig, name, pager.Closest(name, admin.Names()))
		}

		v := c.Views[name]
		if v.PageSize < 0 || v.PageSize > pager.MaxLimit {
			return fmt.Errorf("%w: views.%s.pageSize must be within [0, %d]", ErrInvalidConfig, name, pager.MaxLimit)
		}

		if _, err := pager.ParseFilterMode(v.FilterMode); err != nil {
			return fmt.Errorf("%w: views.%s: %w", ErrInvalidConfig, name, err)
		}
	}

	return nil
}

// RegistryOptions turns the views section into registry settings.
func (c *Config) RegistryOptions() []admin.RegistryOption {
	names := lo.Keys(c.Views)
	slices.Sort(names)

	return lo.Map(names, func(name string, _ int) admin.RegistryOption {
		v := c.Views[name]
		var mode pager.FilterMode
		if v.FilterMode != "" {
			mode, _ = pager.ParseFilterMode(v.FilterMode)
		}
		return admin.WithSettings(name, admin.Settings{PageSize: v.PageSize, FilterMode: mode})
	})
}
