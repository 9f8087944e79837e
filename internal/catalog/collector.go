package catalog

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/koustreak/pgmeta/internal/errs"
)

// Collector produces a metadata snapshot for the schemas allowed by f.
type Collector interface {
	Collect(ctx context.Context, f Filter) (*Metadata, error)
}

// StaticCollector serves a snapshot that was captured earlier, for example
// one loaded from a JSON file with ReadFile.
type StaticCollector struct {
	meta *Metadata
}

// NewStaticCollector wraps m. The snapshot is never mutated.
func NewStaticCollector(m *Metadata) *StaticCollector {
	return &StaticCollector{meta: m}
}

// Collect returns the filtered snapshot.
func (s *StaticCollector) Collect(ctx context.Context, f Filter) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "collect metadata", err)
	}
	return f.Apply(s.meta), nil
}

// Decode reads a JSON snapshot.
func Decode(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "decode metadata snapshot", err)
	}
	m.normalize()
	return &m, nil
}

// ReadFile loads a JSON snapshot from path.
func ReadFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "metadata snapshot "+path, err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "open metadata snapshot", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes m as indented JSON.
func Encode(w io.Writer, m *Metadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
