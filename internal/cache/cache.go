// Package cache memoizes generation results keyed by everything that can
// change the output: target, options and the metadata snapshot.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// Cache stores generation results. Get reports a miss with ok == false and
// a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (res *typegen.Result, ok bool, err error)
	Set(ctx context.Context, key string, res *typegen.Result) error
	Close() error
}

// Config holds the artifact cache settings.
type Config struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// DefaultConfig returns a disabled cache pointing at a local Redis.
func DefaultConfig() *Config {
	return &Config{
		Addr:   "localhost:6379",
		Prefix: "pgmeta:",
		TTL:    10 * time.Minute,
	}
}

// Key derives the cache key for one generation. Identical inputs always
// produce the same key.
func Key(target string, opts typegen.Options, meta *catalog.Metadata) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, v := range []any{target, opts, meta} {
		if err := enc.Encode(v); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*typegen.Result, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, *typegen.Result) error        { return nil }
func (Nop) Close() error                                              { return nil }
