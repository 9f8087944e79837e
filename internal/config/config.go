// Package config loads pgmeta's YAML configuration.
//
// Every section has defaults, so an empty or missing file yields a working
// configuration once a database URL is supplied, either in the file or in
// the PGMETA_DB_URL environment variable.
package config

import (
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/pgmeta/internal/cache"
	"github.com/koustreak/pgmeta/internal/database"
	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/filestore"
	"github.com/koustreak/pgmeta/internal/logger"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// EnvDatabaseURL overrides database.url when set.
const EnvDatabaseURL = "PGMETA_DB_URL"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Log       logger.Config    `yaml:"log"`
	Database  database.Config  `yaml:"database"`
	Generator typegen.Options  `yaml:"generator"`
	Cache     cache.Config     `yaml:"cache"`
	Filestore filestore.Config `yaml:"filestore"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:       *logger.DefaultConfig(),
		Database:  *database.DefaultConfig(""),
		Generator: typegen.Options{},
		Cache:     *cache.DefaultConfig(),
		Filestore: *filestore.DefaultConfig(),
	}
}

// Load reads a Config from the YAML file at path. An empty path or a
// missing file yields the defaults. The environment override is applied
// last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "read config", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, "parse config "+path, err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if url, ok := lookup(EnvDatabaseURL); ok && url != "" {
		c.Database.DSN = url
	}
}

// Validate checks the sections a running server depends on.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errs.New(errs.ErrKindInvalidInput, "server addr is required")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return errs.New(errs.ErrKindInvalidInput, "cache addr is required when the cache is enabled")
	}
	return c.Filestore.Validate()
}
