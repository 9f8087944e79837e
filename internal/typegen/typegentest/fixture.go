// Package typegentest provides catalog snapshots shared by the generator
// and target tests.
package typegentest

import "github.com/koustreak/pgmeta/internal/catalog"

// Type ids used by Metadata.
const (
	Int4ID        int64 = 23
	Int8ID        int64 = 20
	TextID        int64 = 25
	TextArrayID   int64 = 1009
	BoolID        int64 = 16
	TimestamptzID int64 = 1184
	IntervalID    int64 = 1186
	JSONBID       int64 = 3802
	VoidID        int64 = 2278
	UUIDID        int64 = 2950

	StatusID       int64 = 100
	MoodID         int64 = 101
	MoodArrayID    int64 = 102
	AddressID      int64 = 103
	AddressArrayID int64 = 104
	GeoID          int64 = 105
	ProductsRowID  int64 = 200
)

// Relation ids used by Metadata.
const (
	ProductsID         int64 = 10
	SelfRefID          int64 = 11
	ProductNamesID     int64 = 12
	EditableProductsID int64 = 13
	UsersID            int64 = 20
)

func ptr[T any](v T) *T { return &v }

// Metadata returns a small but complete snapshot: two schemas, tables with
// identity (ALWAYS and BY DEFAULT) and default columns, a self-referencing foreign key, views,
// enums, nested composites and functions of every supported shape. The
// status enum is referenced by nothing.
func Metadata() *catalog.Metadata {
	return &catalog.Metadata{
		Schemas: []catalog.Schema{
			{ID: 1, Name: "public", Owner: "postgres"},
			{ID: 2, Name: "auth", Owner: "postgres"},
		},
		Tables: []catalog.Relation{
			{ID: ProductsID, Schema: "public", Name: "products", Kind: catalog.KindTable, IsUpdatable: true},
			{ID: SelfRefID, Schema: "public", Name: "t", Kind: catalog.KindTable, IsUpdatable: true},
			{ID: UsersID, Schema: "auth", Name: "users", Kind: catalog.KindTable, IsUpdatable: true},
		},
		Views: []catalog.Relation{
			{ID: ProductNamesID, Schema: "public", Name: "product_names", Kind: catalog.KindView},
			{ID: EditableProductsID, Schema: "public", Name: "editable_products", Kind: catalog.KindView, IsUpdatable: true},
		},
		Columns: []catalog.Column{
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "id", Format: "int8", OrdinalPosition: 1,
				IsIdentity: true, IdentityGeneration: ptr(catalog.IdentityAlways), IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "name", Format: "text", OrdinalPosition: 2, IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "price", Format: "numeric", OrdinalPosition: 3,
				IsNullable: true, IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "mood", Format: "mood", OrdinalPosition: 4,
				IsNullable: true, IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "created_at", Format: "timestamptz", OrdinalPosition: 5,
				DefaultValue: ptr("now()"), IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "location", Format: "geo", OrdinalPosition: 6,
				IsNullable: true, IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "tags", Format: "_text", OrdinalPosition: 7,
				IsNullable: true, IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "ttl", Format: "interval", OrdinalPosition: 8,
				IsNullable: true, IsUpdatable: true},
			{TableID: ProductsID, Schema: "public", Table: "products", Name: "attrs", Format: "jsonb", OrdinalPosition: 9,
				IsNullable: true, IsUpdatable: true},

			{TableID: SelfRefID, Schema: "public", Table: "t", Name: "a", Format: "int4", OrdinalPosition: 1,
				IsNullable: true, IsUpdatable: true},
			{TableID: SelfRefID, Schema: "public", Table: "t", Name: "seq", Format: "int8", OrdinalPosition: 2,
				IsIdentity: true, IdentityGeneration: ptr(catalog.IdentityByDefault), IsUpdatable: true},

			{TableID: ProductNamesID, Schema: "public", Table: "product_names", Name: "name", Format: "text", OrdinalPosition: 1,
				IsNullable: true},

			{TableID: EditableProductsID, Schema: "public", Table: "editable_products", Name: "id", Format: "int8", OrdinalPosition: 1,
				IsNullable: true},
			{TableID: EditableProductsID, Schema: "public", Table: "editable_products", Name: "name", Format: "text", OrdinalPosition: 2,
				IsNullable: true, IsUpdatable: true},

			{TableID: UsersID, Schema: "auth", Table: "users", Name: "id", Format: "uuid", OrdinalPosition: 1,
				DefaultValue: ptr("gen_random_uuid()"), IsUpdatable: true},
		},
		Relationships: []catalog.Relationship{
			{
				ForeignKeyName: "t_a_fkey", Schema: "public", Relation: "t", Columns: []string{"a"},
				ReferencedSchema: "public", ReferencedRelation: "t", ReferencedColumns: []string{"a"},
			},
			{
				ForeignKeyName: "products_owner_fkey", Schema: "public", Relation: "products", Columns: []string{"owner"},
				ReferencedSchema: "auth", ReferencedRelation: "users", ReferencedColumns: []string{"id"},
			},
		},
		Functions: []catalog.Function{
			{ID: 300, Schema: "public", Name: "add", ReturnTypeID: Int4ID,
				Args: []catalog.FunctionArg{
					{Name: "a", TypeID: Int4ID, Mode: catalog.ArgModeIn},
					{Name: "b", TypeID: Int4ID, Mode: catalog.ArgModeIn, HasDefault: true},
				},
				Definition: "select a + b"},
			{ID: 301, Schema: "public", Name: "search_products", ReturnTypeID: ProductsRowID,
				ReturnTypeRelationID: ptr(ProductsID), IsSetReturningFunction: true,
				Args:       []catalog.FunctionArg{{Name: "query", TypeID: TextID, Mode: catalog.ArgModeIn}},
				Definition: "select * from products where name ilike query"},
			{ID: 302, Schema: "public", Name: "noop", ReturnTypeID: VoidID, Definition: "begin end"},
			{ID: 303, Schema: "public", Name: "anonymous_pair", ReturnTypeID: Int4ID,
				Args: []catalog.FunctionArg{
					{TypeID: Int4ID, Mode: catalog.ArgModeIn},
					{TypeID: Int4ID, Mode: catalog.ArgModeIn},
				},
				Definition: "select $1 + $2"},
			{ID: 304, Schema: "public", Name: "stats", ReturnTypeID: 2249,
				IsSetReturningFunction: true,
				Args: []catalog.FunctionArg{
					{Name: "total", TypeID: Int8ID, Mode: catalog.ArgModeTable},
					{Name: "label", TypeID: TextID, Mode: catalog.ArgModeTable},
				},
				Definition: "select count(*), 'all'"},
		},
		Types: []catalog.Type{
			{ID: BoolID, Name: "bool", Schema: "pg_catalog", Format: "bool"},
			{ID: Int4ID, Name: "int4", Schema: "pg_catalog", Format: "int4"},
			{ID: Int8ID, Name: "int8", Schema: "pg_catalog", Format: "int8"},
			{ID: TextID, Name: "text", Schema: "pg_catalog", Format: "text"},
			{ID: TextArrayID, Name: "_text", Schema: "pg_catalog", Format: "_text"},
			{ID: TimestamptzID, Name: "timestamptz", Schema: "pg_catalog", Format: "timestamptz"},
			{ID: IntervalID, Name: "interval", Schema: "pg_catalog", Format: "interval"},
			{ID: JSONBID, Name: "jsonb", Schema: "pg_catalog", Format: "jsonb"},
			{ID: VoidID, Name: "void", Schema: "pg_catalog", Format: "void"},
			{ID: UUIDID, Name: "uuid", Schema: "pg_catalog", Format: "uuid"},

			{ID: StatusID, Name: "status", Schema: "public", Format: "status", Enums: []string{"ACTIVE", "INACTIVE"}},
			{ID: MoodID, Name: "mood", Schema: "public", Format: "mood", Enums: []string{"happy", "sad"}},
			{ID: MoodArrayID, Name: "_mood", Schema: "public", Format: "_mood"},
			{ID: GeoID, Name: "geo", Schema: "public", Format: "geo", Attributes: []catalog.TypeAttribute{
				{Name: "point", TypeID: AddressID},
				{Name: "moods", TypeID: MoodArrayID},
			}},
			{ID: AddressID, Name: "address", Schema: "public", Format: "address", Attributes: []catalog.TypeAttribute{
				{Name: "street", TypeID: TextID},
				{Name: "city", TypeID: TextID},
			}},
			{ID: AddressArrayID, Name: "_address", Schema: "public", Format: "_address"},
			{ID: ProductsRowID, Name: "products", Schema: "public", Format: "products", TypeRelationID: ptr(ProductsID)},
		},
	}
}

// Cyclic returns a snapshot whose composites a and b hold each other.
func Cyclic() *catalog.Metadata {
	return &catalog.Metadata{
		Schemas: []catalog.Schema{{ID: 1, Name: "public"}},
		Tables:  []catalog.Relation{{ID: 1, Schema: "public", Name: "holder", Kind: catalog.KindTable}},
		Columns: []catalog.Column{{TableID: 1, Schema: "public", Table: "holder", Name: "value", Format: "a"}},
		Types: []catalog.Type{
			{ID: 1, Name: "a", Schema: "public", Format: "a", Attributes: []catalog.TypeAttribute{{Name: "b", TypeID: 2}}},
			{ID: 2, Name: "b", Schema: "public", Format: "b", Attributes: []catalog.TypeAttribute{{Name: "a", TypeID: 1}}},
		},
	}
}
