// Package service ties metadata collection, the artifact cache and the
// type generator together. The HTTP server and the CLI both drive it.
package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/pgmeta/internal/cache"
	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/logger"
	"github.com/koustreak/pgmeta/internal/typegen"
	"github.com/koustreak/pgmeta/internal/typegen/dart"
	"github.com/koustreak/pgmeta/internal/typegen/golang"
	"github.com/koustreak/pgmeta/internal/typegen/typescript"
)

// DefaultTargets returns every supported target. goPackage names the
// package of generated Go code; empty means golang.DefaultPackage.
func DefaultTargets(goPackage string) []typegen.Target {
	return []typegen.Target{typescript.New(), dart.New(), golang.New(goPackage)}
}

// Outcome is one generation and where it came from.
type Outcome struct {
	*typegen.Result
	CacheHit bool
}

// Service generates bindings on demand. It is safe for concurrent use.
type Service struct {
	collector catalog.Collector
	cache     cache.Cache
	targets   map[string]typegen.Target
}

// New returns a Service. A nil cache disables caching.
func New(collector catalog.Collector, c cache.Cache, targets ...typegen.Target) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	s := &Service{collector: collector, cache: c, targets: make(map[string]typegen.Target, len(targets))}
	for _, t := range targets {
		s.targets[t.Name()] = t
	}
	return s
}

// Targets lists the registered target names in sorted order.
func (s *Service) Targets() []string {
	names := make([]string, 0, len(s.targets))
	for name := range s.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target looks up a target by name.
func (s *Service) Target(name string) (typegen.Target, error) {
	t, ok := s.targets[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "unknown target %q, expected one of %s", name, strings.Join(s.Targets(), ", "))
	}
	return t, nil
}

// Generate collects metadata and renders it for target.
func (s *Service) Generate(ctx context.Context, target string, opts typegen.Options) (*Outcome, error) {
	t, err := s.Target(target)
	if err != nil {
		return nil, err
	}
	meta, err := s.collector.Collect(ctx, opts.Filter())
	if err != nil {
		return nil, err
	}
	return s.render(ctx, meta, opts, t)
}

// GenerateAll renders every registered target from a single metadata
// snapshot, concurrently. Results follow Targets order.
func (s *Service) GenerateAll(ctx context.Context, opts typegen.Options) ([]*Outcome, error) {
	meta, err := s.collector.Collect(ctx, opts.Filter())
	if err != nil {
		return nil, err
	}

	names := s.Targets()
	out := make([]*Outcome, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			o, err := s.render(gctx, meta, opts, s.targets[name])
			if err != nil {
				return err
			}
			out[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) render(ctx context.Context, meta *catalog.Metadata, opts typegen.Options, t typegen.Target) (*Outcome, error) {
	log := logger.FromContext(ctx).With().
		Str("target", t.Name()).
		Strs("included_schemas", opts.IncludedSchemas).
		Strs("excluded_schemas", opts.ExcludedSchemas).
		Logger()

	key, err := cache.Key(t.Name(), opts, meta)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "derive cache key", err)
	}
	if res, ok, err := s.cache.Get(ctx, key); err != nil {
		// The cache is an optimisation; generation proceeds without it.
		log.With().Err(err).Logger().Warn("cache read failed")
	} else if ok {
		log.With().Int("bytes", len(res.Output)).Bool("cache_hit", true).Logger().Info("generated")
		return &Outcome{Result: res, CacheHit: true}, nil
	}

	start := time.Now()
	res, err := typegen.Apply(ctx, meta, opts, t)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		log.With().Str("code", w.Code).Logger().Warn(w.Message)
	}
	if err := s.cache.Set(ctx, key, res); err != nil {
		log.With().Err(err).Logger().Warn("cache write failed")
	}

	log.With().
		Int("bytes", len(res.Output)).
		Bool("cache_hit", false).
		Str("elapsed", time.Since(start).String()).
		Logger().Info("generated")
	return &Outcome{Result: res}, nil
}

// ParseSchemas splits a comma separated schema list, dropping blanks and
// duplicates.
func ParseSchemas(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
