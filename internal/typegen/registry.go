package typegen

import (
	"cmp"
	"slices"
	"strings"

	"github.com/koustreak/pgmeta/internal/catalog"
)

// Registry resolves catalog types and formats to Type nodes. A Registry is
// built for a single generation call and memoizes the nodes it constructs,
// so every reference to one catalog type shares one node. It must not be
// shared between calls.
type Registry struct {
	types     map[int64]catalog.Type
	byName    map[string][]catalog.Type
	relations map[int64]catalog.Relation
	nodes     map[int64]Type
	ordered   []catalog.Type
}

// NewRegistry indexes the types and relations of m.
func NewRegistry(m *catalog.Metadata) *Registry {
	r := &Registry{
		types:     make(map[int64]catalog.Type, len(m.Types)),
		byName:    make(map[string][]catalog.Type),
		relations: make(map[int64]catalog.Relation),
		nodes:     make(map[int64]Type),
	}
	for _, t := range m.Types {
		r.types[t.ID] = t
		r.byName[t.Name] = append(r.byName[t.Name], t)
	}
	for _, rel := range m.Relations() {
		r.relations[rel.ID] = rel
	}

	r.ordered = slices.Clone(m.Types)
	slices.SortFunc(r.ordered, compareTypes)
	for name := range r.byName {
		slices.SortFunc(r.byName[name], compareTypes)
	}
	return r
}

func compareTypes(a, b catalog.Type) int {
	return cmp.Or(
		cmp.Compare(a.Schema, b.Schema),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.ID, b.ID),
	)
}

// Types returns every known type in (schema, name, id) order.
func (r *Registry) Types() []catalog.Type {
	return r.ordered
}

// Lookup returns the catalog type with the given id.
func (r *Registry) Lookup(id int64) (catalog.Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// LookupName finds a type by name. Columns only carry the bare type name,
// so a type in preferSchema wins over same-named types elsewhere; the
// remaining ties break on (schema, id).
func (r *Registry) LookupName(name, preferSchema string) (catalog.Type, bool) {
	candidates := r.byName[name]
	if len(candidates) == 0 {
		return catalog.Type{}, false
	}
	for _, t := range candidates {
		if t.Schema == preferSchema {
			return t, true
		}
	}
	return candidates[0], true
}

// Relation returns the relation with the given id.
func (r *Registry) Relation(id int64) (catalog.Relation, bool) {
	rel, ok := r.relations[id]
	return rel, ok
}

// arrayOf returns the array type paired with t, if the catalog has one.
func (r *Registry) arrayOf(t catalog.Type) (catalog.Type, bool) {
	return r.LookupName(catalog.ArrayPrefix+t.Name, t.Schema)
}

// baseOf returns the element type of an array type.
func (r *Registry) baseOf(t catalog.Type) (catalog.Type, bool) {
	if !t.IsArray() {
		return catalog.Type{}, false
	}
	return r.LookupName(t.BaseName(), t.Schema)
}

// ForTypeID returns the node for a catalog type id. Unknown ids resolve to
// Unknown instead of failing.
func (r *Registry) ForTypeID(id int64) Type {
	if n, ok := r.nodes[id]; ok {
		return n
	}
	t, ok := r.types[id]
	if !ok {
		return Unknown{}
	}

	switch {
	case t.IsEnum():
		n := &Enum{Schema: t.Schema, Name: t.Name, Members: slices.Clone(t.Enums)}
		r.nodes[id] = n
		return n

	case t.TypeRelationID != nil && r.hasRelation(*t.TypeRelationID):
		n := RelationRow{Relation: r.relations[*t.TypeRelationID]}
		r.nodes[id] = n
		return n

	case t.IsComposite():
		// Registered before its attributes resolve: a composite may hold
		// an array of itself.
		n := &Composite{Schema: t.Schema, Name: t.Name}
		r.nodes[id] = n
		n.Attributes = make([]Attribute, 0, len(t.Attributes))
		for _, a := range t.Attributes {
			n.Attributes = append(n.Attributes, Attribute{
				Name: a.Name,
				Type: MakeNullable(r.ForTypeID(a.TypeID)),
			})
		}
		return n
	}

	var n Type
	if s, ok := Scalar(t.Name); ok {
		n = s
	} else if t.IsArray() {
		if base, ok := r.baseOf(t); ok {
			n = List{Elem: r.ForTypeID(base.ID)}
		} else {
			n = List{Elem: r.ForFormat(t.BaseName(), t.Schema)}
		}
	} else {
		n = Unknown{Format: t.Name}
	}
	r.nodes[id] = n
	return n
}

// ForFormat resolves a column format such as "int4", "_status" or
// "my_composite". schema is the owning relation's schema and disambiguates
// user types that exist in several schemas.
func (r *Registry) ForFormat(format, schema string) Type {
	if base, ok := strings.CutPrefix(format, catalog.ArrayPrefix); ok && base != "" {
		return List{Elem: r.ForFormat(base, schema)}
	}
	if s, ok := Scalar(format); ok {
		return s
	}
	if t, ok := r.LookupName(format, schema); ok {
		return r.ForTypeID(t.ID)
	}
	return Unknown{Format: format}
}

// ForColumn returns the column's node, wrapped Nullable iff the column is.
func (r *Registry) ForColumn(c catalog.Column) Type {
	t := r.ForFormat(c.Format, r.columnSchema(c))
	if c.IsNullable {
		return MakeNullable(t)
	}
	return t
}

func (r *Registry) columnSchema(c catalog.Column) string {
	if c.Schema != "" {
		return c.Schema
	}
	if rel, ok := r.relations[c.TableID]; ok {
		return rel.Schema
	}
	return ""
}

func (r *Registry) hasRelation(id int64) bool {
	_, ok := r.relations[id]
	return ok
}
