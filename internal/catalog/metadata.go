// Package catalog holds the introspected database metadata that the type
// generator consumes, and the Collector contract that produces it.
//
// A Metadata value is a read-only snapshot: it is collected once per
// generation request and never mutated afterwards.
package catalog

import "strings"

// ArrayPrefix marks array formats and array type names ("_int4" is int4[]).
const ArrayPrefix = "_"

// RelationKind distinguishes the four kinds of relations that carry columns.
type RelationKind string

const (
	KindTable            RelationKind = "table"
	KindView             RelationKind = "view"
	KindMaterializedView RelationKind = "materialized_view"
	KindForeignTable     RelationKind = "foreign_table"
)

// Identity generation modes of a column.
const (
	IdentityAlways    = "ALWAYS"
	IdentityByDefault = "BY DEFAULT"
)

// Function argument modes.
const (
	ArgModeIn       = "in"
	ArgModeOut      = "out"
	ArgModeInOut    = "inout"
	ArgModeVariadic = "variadic"
	ArgModeTable    = "table"
)

// Schema is a database namespace.
type Schema struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// Relation is a table, view, materialized view or foreign table.
type Relation struct {
	ID          int64        `json:"id"`
	Schema      string       `json:"schema"`
	Name        string       `json:"name"`
	Kind        RelationKind `json:"kind"`
	IsUpdatable bool         `json:"is_updatable"`
	Comment     *string      `json:"comment,omitempty"`
}

// Column describes a single column of a relation.
type Column struct {
	TableID            int64   `json:"table_id"`
	Schema             string  `json:"schema"`
	Table              string  `json:"table"`
	Name               string  `json:"name"`
	Format             string  `json:"format"` // catalog type name, "_" prefix for arrays
	OrdinalPosition    int     `json:"ordinal_position"`
	IsNullable         bool    `json:"is_nullable"`
	IsIdentity         bool    `json:"is_identity"`
	IdentityGeneration *string `json:"identity_generation,omitempty"`
	DefaultValue       *string `json:"default_value,omitempty"`
	IsUpdatable        bool    `json:"is_updatable"`
	Comment            *string `json:"comment,omitempty"`
}

// IsArray reports whether the column holds an array of its base format.
func (c Column) IsArray() bool {
	return strings.HasPrefix(c.Format, ArrayPrefix)
}

// AlwaysGenerated reports whether the database rejects any value written
// to this column (GENERATED ALWAYS AS IDENTITY).
func (c Column) AlwaysGenerated() bool {
	return c.IsIdentity && c.IdentityGeneration != nil && *c.IdentityGeneration == IdentityAlways
}

// FunctionArg is a single argument of a function signature.
type FunctionArg struct {
	Name       string `json:"name"`
	TypeID     int64  `json:"type_id"`
	Mode       string `json:"mode"`
	HasDefault bool   `json:"has_default"`
}

// IsInput reports whether callers supply this argument.
func (a FunctionArg) IsInput() bool {
	switch a.Mode {
	case ArgModeIn, ArgModeInOut, ArgModeVariadic, "":
		return true
	}
	return false
}

// Function is a callable routine.
type Function struct {
	ID                     int64         `json:"id"`
	Schema                 string        `json:"schema"`
	Name                   string        `json:"name"`
	Args                   []FunctionArg `json:"args"`
	ReturnTypeID           int64         `json:"return_type_id"`
	ReturnTypeRelationID   *int64        `json:"return_type_relation_id,omitempty"`
	IsSetReturningFunction bool          `json:"is_set_returning_function"`
	Definition             string        `json:"definition"`
}

// InputArgs returns the arguments callers supply, in declaration order.
func (f Function) InputArgs() []FunctionArg {
	var in []FunctionArg
	for _, a := range f.Args {
		if a.IsInput() {
			in = append(in, a)
		}
	}
	return in
}

// TableArgs returns the columns of a RETURNS TABLE(...) signature.
func (f Function) TableArgs() []FunctionArg {
	var out []FunctionArg
	for _, a := range f.Args {
		if a.Mode == ArgModeTable {
			out = append(out, a)
		}
	}
	return out
}

// TypeAttribute is a named member of a composite type.
type TypeAttribute struct {
	Name   string `json:"name"`
	TypeID int64  `json:"type_id"`
}

// Type is a catalog type. Enums carry members, composites carry attributes
// and row types of relations carry TypeRelationID.
type Type struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Schema         string          `json:"schema"`
	Format         string          `json:"format"`
	Enums          []string        `json:"enums"`
	Attributes     []TypeAttribute `json:"attributes"`
	TypeRelationID *int64          `json:"type_relation_id,omitempty"`
	Comment        *string         `json:"comment,omitempty"`
}

func (t Type) IsEnum() bool      { return len(t.Enums) > 0 }
func (t Type) IsComposite() bool { return len(t.Attributes) > 0 }
func (t Type) IsArray() bool     { return strings.HasPrefix(t.Name, ArrayPrefix) }

// BaseName strips the array marker.
func (t Type) BaseName() string {
	return strings.TrimPrefix(t.Name, ArrayPrefix)
}

// Relationship is a foreign key constraint between two relations.
type Relationship struct {
	ForeignKeyName     string   `json:"foreign_key_name"`
	Schema             string   `json:"schema"`
	Relation           string   `json:"relation"`
	Columns            []string `json:"columns"`
	ReferencedSchema   string   `json:"referenced_schema"`
	ReferencedRelation string   `json:"referenced_relation"`
	ReferencedColumns  []string `json:"referenced_columns"`
	IsOneToOne         bool     `json:"is_one_to_one"`
}

// Metadata is everything the generator needs, collected in one pass.
type Metadata struct {
	Schemas           []Schema       `json:"schemas"`
	Tables            []Relation     `json:"tables"`
	ForeignTables     []Relation     `json:"foreign_tables"`
	Views             []Relation     `json:"views"`
	MaterializedViews []Relation     `json:"materialized_views"`
	Columns           []Column       `json:"columns"`
	Relationships     []Relationship `json:"relationships"`
	Functions         []Function     `json:"functions"`
	Types             []Type         `json:"types"`
}

// Relations returns every relation of every kind, tables first.
func (m *Metadata) Relations() []Relation {
	all := make([]Relation, 0, len(m.Tables)+len(m.ForeignTables)+len(m.Views)+len(m.MaterializedViews))
	all = append(all, m.Tables...)
	all = append(all, m.ForeignTables...)
	all = append(all, m.Views...)
	all = append(all, m.MaterializedViews...)
	return all
}
