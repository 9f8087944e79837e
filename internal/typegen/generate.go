// Package typegen turns introspected catalog metadata into typed client
// bindings.
//
// Generation runs in a fixed sequence for every call:
//
//  1. filter the snapshot to the requested schemas
//  2. collect the types reachable from emitted columns and functions
//  3. sort them so each declaration follows what it references
//  4. build Type nodes through a per-call Registry
//  5. resolve relationships and group everything by schema
//  6. hand the Model to a Target, which emits and formats the text
//
// Nothing survives between calls, so Apply is safe to call concurrently.
package typegen

import (
	"cmp"
	"context"
	"slices"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/errs"
)

// Options are the request-level generation settings.
type Options struct {
	IncludedSchemas             []string `yaml:"included_schemas" json:"included_schemas,omitempty"`
	ExcludedSchemas             []string `yaml:"excluded_schemas" json:"excluded_schemas,omitempty"`
	DetectOneToOneRelationships bool     `yaml:"detect_one_to_one_relationships" json:"detect_one_to_one_relationships,omitempty"`
	// PostgrestVersion is echoed verbatim into output metadata when set.
	PostgrestVersion string `yaml:"postgrest_version" json:"postgrest_version,omitempty"`
}

// Filter returns the schema filter described by o.
func (o Options) Filter() catalog.Filter {
	return catalog.Filter{Included: o.IncludedSchemas, Excluded: o.ExcludedSchemas}
}

// Target renders a Model in one output language.
type Target interface {
	// Name identifies the target, e.g. "typescript".
	Name() string
	// Emit renders m as unformatted source text.
	Emit(m *Model) (string, error)
	// Format pretty-prints emitted text. An error means Emit produced
	// malformed syntax.
	Format(src string) (string, error)
}

// Result is a finished artifact.
type Result struct {
	Target   string    `json:"target"`
	Output   string    `json:"output"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Build resolves meta into a Model. It fails only when user-defined types
// reference each other in a cycle.
func Build(meta *catalog.Metadata, opts Options) (*Model, error) {
	meta = opts.Filter().Apply(meta)
	reg := NewRegistry(meta)
	rels := NewRelationshipResolver(meta.Relationships, opts.DetectOneToOneRelationships)

	sets := functionSets(meta.Functions)
	var emitted []catalog.Function
	for _, set := range sets {
		emitted = append(emitted, set...)
	}

	required := RequiredTypes(reg, meta.Columns, emitted)
	ordered, err := SortTypes(reg, required)
	if err != nil {
		return nil, err
	}

	model := &Model{Options: opts}
	schemas := make(map[string]*SchemaModel, len(meta.Schemas))
	for _, s := range meta.Schemas {
		sm := &SchemaModel{Schema: s}
		schemas[s.Name] = sm
		model.Schemas = append(model.Schemas, sm)
	}
	slices.SortFunc(model.Schemas, func(a, b *SchemaModel) int {
		return cmp.Compare(a.Schema.Name, b.Schema.Name)
	})

	for _, t := range ordered {
		if t.IsArray() {
			continue
		}
		node := reg.ForTypeID(t.ID)
		if !Declarable(node) {
			continue
		}
		model.Declarations = append(model.Declarations, node)
		sm, ok := schemas[t.Schema]
		if !ok {
			continue
		}
		switch n := node.(type) {
		case *Enum:
			sm.Enums = append(sm.Enums, n)
		case *Composite:
			sm.Composites = append(sm.Composites, n)
		}
	}

	columns := make(map[int64][]catalog.Column)
	for _, c := range meta.Columns {
		columns[c.TableID] = append(columns[c.TableID], c)
	}
	for _, rel := range meta.Relations() {
		sm, ok := schemas[rel.Schema]
		if !ok {
			continue
		}
		rm := relationModel(reg, rel, slices.Clone(columns[rel.ID]), rels)
		switch rel.Kind {
		case catalog.KindView, catalog.KindMaterializedView:
			sm.Views = append(sm.Views, rm)
		default:
			sm.Tables = append(sm.Tables, rm)
		}
	}

	for _, set := range sets {
		sm, ok := schemas[set[0].Schema]
		if !ok {
			continue
		}
		fm, warning := functionModel(reg, set)
		sm.Functions = append(sm.Functions, fm)
		if warning != nil {
			model.Warnings = append(model.Warnings, *warning)
		}
	}

	byName := func(a, b *RelationModel) int {
		return cmp.Or(cmp.Compare(a.Relation.Name, b.Relation.Name), cmp.Compare(a.Relation.ID, b.Relation.ID))
	}
	for _, sm := range model.Schemas {
		slices.SortStableFunc(sm.Tables, byName)
		slices.SortStableFunc(sm.Views, byName)
		slices.SortStableFunc(sm.Enums, func(a, b *Enum) int { return cmp.Compare(a.Name, b.Name) })
		slices.SortStableFunc(sm.Composites, func(a, b *Composite) int { return cmp.Compare(a.Name, b.Name) })
	}
	return model, nil
}

// Apply builds the model, emits it with t and formats the result.
// Generation either returns a complete artifact or a single error.
func Apply(ctx context.Context, meta *catalog.Metadata, opts Options, t Target) (*Result, error) {
	model, err := Build(meta, opts)
	if err != nil {
		return nil, err
	}

	src, err := t.Emit(model)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindGenerationFailed, "emit "+t.Name(), err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "generate "+t.Name(), err)
	}
	out, err := t.Format(src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindGenerationFailed, "format "+t.Name()+" output", err)
	}

	return &Result{Target: t.Name(), Output: out, Warnings: model.Warnings}, nil
}
