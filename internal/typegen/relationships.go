package typegen

import (
	"cmp"
	"slices"

	"github.com/koustreak/pgmeta/internal/catalog"
)

// Relationship is a foreign key as emitted alongside its owning relation.
// IsOneToOne is nil unless one-to-one detection was requested.
type Relationship struct {
	ForeignKeyName     string
	Columns            []string
	IsOneToOne         *bool
	ReferencedRelation string
	ReferencedColumns  []string
}

type relationKey struct {
	schema, relation string
}

// RelationshipResolver groups foreign keys by owning relation.
//
// Only constraints whose referencing and referenced relations both live in
// the owner's schema are kept; cross-schema foreign keys are not emitted.
type RelationshipResolver struct {
	byRelation     map[relationKey][]catalog.Relationship
	detectOneToOne bool
}

// NewRelationshipResolver indexes all relationships once per call.
func NewRelationshipResolver(all []catalog.Relationship, detectOneToOne bool) *RelationshipResolver {
	r := &RelationshipResolver{
		byRelation:     make(map[relationKey][]catalog.Relationship),
		detectOneToOne: detectOneToOne,
	}
	for _, rel := range all {
		if rel.Schema != rel.ReferencedSchema {
			continue
		}
		k := relationKey{rel.Schema, rel.Relation}
		r.byRelation[k] = append(r.byRelation[k], rel)
	}
	return r
}

// Resolve returns the relationships owned by rel, ordered by constraint
// name and then referenced relation.
func (r *RelationshipResolver) Resolve(rel catalog.Relation) []Relationship {
	src := r.byRelation[relationKey{rel.Schema, rel.Name}]
	out := make([]Relationship, 0, len(src))
	for _, fk := range src {
		res := Relationship{
			ForeignKeyName:     fk.ForeignKeyName,
			Columns:            slices.Clone(fk.Columns),
			ReferencedRelation: fk.ReferencedRelation,
			ReferencedColumns:  slices.Clone(fk.ReferencedColumns),
		}
		if r.detectOneToOne {
			oneToOne := fk.IsOneToOne
			res.IsOneToOne = &oneToOne
		}
		out = append(out, res)
	}
	slices.SortStableFunc(out, func(a, b Relationship) int {
		return cmp.Or(
			cmp.Compare(a.ForeignKeyName, b.ForeignKeyName),
			cmp.Compare(a.ReferencedRelation, b.ReferencedRelation),
		)
	})
	return out
}
