package catalog

import "slices"

// Filter restricts a snapshot to a set of schemas. Included and Excluded
// compose: a schema passes when it is included (or Included is empty) and
// is not excluded.
type Filter struct {
	Included []string
	Excluded []string
}

// Allows reports whether objects of the named schema survive the filter.
func (f Filter) Allows(schema string) bool {
	if len(f.Included) > 0 && !slices.Contains(f.Included, schema) {
		return false
	}
	return !slices.Contains(f.Excluded, schema)
}

// Apply returns a copy of m restricted to the allowed schemas.
//
// Types are copied whole: a column of an allowed table may reference a type
// that lives in a filtered-out schema, and the generator still needs to
// resolve it.
func (f Filter) Apply(m *Metadata) *Metadata {
	out := &Metadata{Types: m.Types}

	for _, s := range m.Schemas {
		if f.Allows(s.Name) {
			out.Schemas = append(out.Schemas, s)
		}
	}

	kept := make(map[int64]bool)
	keepRelations := func(in []Relation) []Relation {
		var rels []Relation
		for _, r := range in {
			if f.Allows(r.Schema) {
				rels = append(rels, r)
				kept[r.ID] = true
			}
		}
		return rels
	}
	out.Tables = keepRelations(m.Tables)
	out.ForeignTables = keepRelations(m.ForeignTables)
	out.Views = keepRelations(m.Views)
	out.MaterializedViews = keepRelations(m.MaterializedViews)

	for _, c := range m.Columns {
		if kept[c.TableID] {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, r := range m.Relationships {
		if f.Allows(r.Schema) {
			out.Relationships = append(out.Relationships, r)
		}
	}
	for _, fn := range m.Functions {
		if f.Allows(fn.Schema) {
			out.Functions = append(out.Functions, fn)
		}
	}
	return out
}

// normalize fills in the relation kind from the list a relation arrived in,
// so snapshots written without "kind" behave the same as collected ones.
func (m *Metadata) normalize() {
	setKind := func(rels []Relation, kind RelationKind) {
		for i := range rels {
			if rels[i].Kind == "" {
				rels[i].Kind = kind
			}
		}
	}
	setKind(m.Tables, KindTable)
	setKind(m.ForeignTables, KindForeignTable)
	setKind(m.Views, KindView)
	setKind(m.MaterializedViews, KindMaterializedView)
}
