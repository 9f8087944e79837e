package filestore

import (
	"time"

	"github.com/koustreak/pgmeta/internal/errs"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings for publishing generated artifacts.
type Config struct {
	// Enabled turns on the publish endpoint.
	Enabled bool `yaml:"enabled"`

	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider `yaml:"provider"`

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string `yaml:"region"`

	// Bucket receives every published artifact. It is created on first use.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix"`

	// URLExpiry bounds the lifetime of presigned download URLs.
	URLExpiry time.Duration `yaml:"url_expiry"`
}

// DefaultConfig returns a local-dev MinIO config with publishing disabled.
func DefaultConfig() *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "pgmeta",
		Prefix:    "types",
		URLExpiry: time.Hour,
	}
}

// Validate reports settings a store cannot be built from.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Provider != ProviderMinIO {
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported filestore provider %q", c.Provider)
	}
	if c.Endpoint == "" || c.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "filestore endpoint and bucket are required")
	}
	// S3 rejects presigned URLs valid for longer than seven days.
	if c.URLExpiry <= 0 || c.URLExpiry > 7*24*time.Hour {
		return errs.Newf(errs.ErrKindInvalidInput, "filestore url_expiry must be within (0, 168h], got %s", c.URLExpiry)
	}
	return nil
}
