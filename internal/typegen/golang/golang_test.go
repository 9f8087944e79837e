package golang

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/typegen"
	"github.com/koustreak/pgmeta/internal/typegen/typegentest"
)

// parsedFile indexes the declarations of a generated file.
type parsedFile struct {
	file    *ast.File
	structs map[string]map[string]string // type -> json key -> Go type
	aliases map[string]string
	consts  map[string]string
}

func render(n ast.Expr) string {
	switch n := n.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.StarExpr:
		return "*" + render(n.X)
	case *ast.ArrayType:
		return "[]" + render(n.Elt)
	case *ast.SelectorExpr:
		return render(n.X) + "." + n.Sel.Name
	}
	return "?"
}

func parse(t *testing.T, src string) parsedFile {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "database.go", src, parser.ParseComments)
	require.NoError(t, err)

	p := parsedFile{
		file:    f,
		structs: map[string]map[string]string{},
		aliases: map[string]string{},
		consts:  map[string]string{},
	}
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gen.Specs {
			switch spec := spec.(type) {
			case *ast.TypeSpec:
				st, ok := spec.Type.(*ast.StructType)
				if !ok {
					p.aliases[spec.Name.Name] = render(spec.Type)
					continue
				}
				fields := map[string]string{}
				for _, fld := range st.Fields.List {
					key := fld.Names[0].Name
					if fld.Tag != nil {
						tag, _ := strconv.Unquote(fld.Tag.Value)
						key = reflect.StructTag(tag).Get("json")
					}
					fields[key] = render(fld.Type)
				}
				p.structs[spec.Name.Name] = fields
			case *ast.ValueSpec:
				if gen.Tok != token.CONST {
					continue
				}
				for i, name := range spec.Names {
					p.consts[name.Name] = spec.Values[i].(*ast.BasicLit).Value
				}
			}
		}
	}
	return p
}

func generate(t *testing.T, opts typegen.Options) string {
	t.Helper()
	res, err := typegen.Apply(context.Background(), typegentest.Metadata(), opts, New(""))
	require.NoError(t, err)
	return res.Output
}

func TestDialect_Spelling(t *testing.T) {
	d := dialect{schemas: map[string]bool{"public": true}}
	i32 := typegen.Builtin{Kind: typegen.KindInt, Bits: 32}

	tests := []struct {
		name string
		typ  typegen.Type
		want string
	}{
		{"int2", typegen.Builtin{Kind: typegen.KindInt, Bits: 16}, "int16"},
		{"int4", i32, "int32"},
		{"int8", typegen.Builtin{Kind: typegen.KindInt, Bits: 64}, "int64"},
		{"float4", typegen.Builtin{Kind: typegen.KindFloat, Bits: 32}, "float32"},
		{"any", typegen.Builtin{Kind: typegen.KindAny}, "any"},
		{"timestamptz", typegen.Datetime{Zoned: true}, "time.Time"},
		{"timestamp", typegen.Datetime{}, "string"},
		{"json", typegen.Map{}, "json.RawMessage"},
		{"nullable scalar", typegen.MakeNullable(i32), "*int32"},
		{"double nullable", typegen.Nullable{Inner: typegen.MakeNullable(i32)}, "*int32"},
		{"nullable list", typegen.MakeNullable(typegen.List{Elem: i32}), "[]int32"},
		{"enum", &typegen.Enum{Schema: "auth", Name: "factor_type"}, "AuthFactorType"},
		{"row outside emitted schemas", typegen.RelationRow{Relation: catalog.Relation{Schema: "x", Name: "y"}}, "json.RawMessage"},
		{"unknown", typegen.Unknown{}, "any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Spelling(tt.typ))
		})
	}
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, []string{"UserId", "UserId2", "F2fa", "TableName2"},
		fieldNames([]string{"user_id", "userId", "2fa", "table_name"}))
	assert.Equal(t, "T1stQuarter", typeName("public", "1st_quarter"))
	assert.Equal(t, "AuthUsers", typeName("auth", "users"))
}

func TestEmit_Structs(t *testing.T) {
	p := parse(t, generate(t, typegen.Options{}))
	assert.Equal(t, "database", p.file.Name.Name)

	assert.Equal(t, map[string]string{
		"id":         "int64",
		"name":       "string",
		"price":      "*float64",
		"mood":       "*Mood",
		"created_at": "time.Time",
		"location":   "*Geo",
		"tags":       "[]string",
		"ttl":        "*string",
		"attrs":      "json.RawMessage",
	}, p.structs["Products"])

	insert := p.structs["ProductsInsert"]
	assert.NotContains(t, insert, "id")
	assert.NotContains(t, insert, "id,omitempty")
	assert.Equal(t, "string", insert["name"])
	assert.Equal(t, "*time.Time", insert["created_at,omitempty"])
	assert.Equal(t, "*float64", insert["price,omitempty"])
	assert.Equal(t, "[]string", insert["tags,omitempty"])

	update := p.structs["ProductsUpdate"]
	assert.Equal(t, "*string", update["name,omitempty"])
	assert.NotContains(t, update, "id,omitempty")

	assert.Contains(t, p.structs, "ProductNames")
	assert.NotContains(t, p.structs, "ProductNamesInsert")
	assert.Contains(t, p.structs, "EditableProductsInsert")
	assert.Equal(t, "*string", p.structs["AuthUsersInsert"]["id,omitempty"])
}

func TestEmit_EnumsAndComposites(t *testing.T) {
	p := parse(t, generate(t, typegen.Options{}))

	assert.Equal(t, "string", p.aliases["Mood"])
	assert.Equal(t, `"happy"`, p.consts["MoodHappy"])
	assert.Equal(t, `"sad"`, p.consts["MoodSad"])
	assert.NotContains(t, p.aliases, "Status")

	assert.Equal(t, map[string]string{"point": "*Address", "moods": "[]Mood"}, p.structs["Geo"])
	assert.Equal(t, map[string]string{"street": "*string", "city": "*string"}, p.structs["Address"])
}

func TestEmit_Functions(t *testing.T) {
	p := parse(t, generate(t, typegen.Options{}))

	assert.Equal(t, map[string]string{"a": "int32", "b,omitempty": "*int32"}, p.structs["AddArgs"])
	assert.Equal(t, "int32", p.aliases["AddReturns"])
	assert.Equal(t, "[]Products", p.aliases["SearchProductsReturns"])
	assert.Contains(t, p.structs, "NoopArgs")
	assert.NotContains(t, p.aliases, "NoopReturns")
	assert.Equal(t, map[string]string{"total": "*int64", "label": "*string"}, p.structs["StatsRow"])
	assert.Equal(t, "[]StatsRow", p.aliases["StatsReturns"])
	assert.NotContains(t, p.structs, "AnonymousPairArgs")
}

func TestEmit_RelationshipsAndVersion(t *testing.T) {
	out := generate(t, typegen.Options{PostgrestVersion: "12", DetectOneToOneRelationships: true})

	assert.Regexp(t, `ForeignKeyName:\s+"t_a_fkey"`, out)
	assert.Regexp(t, `IsOneToOne:\s+boolPtr\(false\)`, out)
	assert.Contains(t, out, "func boolPtr(b bool) *bool")
	assert.Contains(t, out, `const PostgrestVersion = "12"`)
	assert.Contains(t, out, "func (Products) TableName() string")
	assert.True(t, strings.HasPrefix(out, "// Code generated by pgmeta. DO NOT EDIT."))

	out = generate(t, typegen.Options{})
	assert.NotContains(t, out, "boolPtr")
}

func TestEmit_Deterministic(t *testing.T) {
	assert.Equal(t, generate(t, typegen.Options{}), generate(t, typegen.Options{}))
}

func TestEmit_DeclarationNamesNeverCollide(t *testing.T) {
	table := func(id int64, schema, name string) catalog.Relation {
		return catalog.Relation{ID: id, Schema: schema, Name: name, Kind: catalog.KindTable, IsUpdatable: true}
	}
	column := func(id int64, schema, table string) catalog.Column {
		return catalog.Column{TableID: id, Schema: schema, Table: table, Name: "id", Format: "int4", IsUpdatable: true}
	}
	meta := &catalog.Metadata{
		Schemas: []catalog.Schema{{ID: 1, Name: "public"}, {ID: 2, Name: "auth"}},
		Tables: []catalog.Relation{
			table(1, "public", "relationship"),
			table(2, "public", "products"),
			table(3, "public", "products_insert"),
			table(4, "public", "auth_users"),
			table(5, "auth", "users"),
			table(6, "public", "add_args"),
		},
		Columns: []catalog.Column{
			column(1, "public", "relationship"),
			column(2, "public", "products"),
			column(3, "public", "products_insert"),
			column(4, "public", "auth_users"),
			column(5, "auth", "users"),
			column(6, "public", "add_args"),
		},
		Functions: []catalog.Function{
			{ID: 10, Schema: "public", Name: "add", ReturnTypeID: 23,
				Args: []catalog.FunctionArg{{Name: "a", TypeID: 23, Mode: catalog.ArgModeIn}}},
		},
		Types: []catalog.Type{{ID: 23, Name: "int4", Schema: "pg_catalog", Format: "int4"}},
	}

	res, err := typegen.Apply(context.Background(), meta, typegen.Options{}, New(""))
	require.NoError(t, err)
	p := parse(t, res.Output)

	assert.Equal(t, map[string]string{
		"ForeignKeyName":     "string",
		"Columns":            "[]string",
		"IsOneToOne":         "*bool",
		"ReferencedRelation": "string",
		"ReferencedColumns":  "[]string",
	}, p.structs["Relationship"])
	for _, name := range []string{
		"Relationship2", "Products", "ProductsInsert", "ProductsUpdate",
		"ProductsInsert2", "ProductsInsert2Insert", "AuthUsers", "AuthUsers2",
		"AddArgs", "Add2Args",
	} {
		assert.Contains(t, p.structs, name)
	}
	assert.Equal(t, map[string]string{"a": "int32"}, p.structs["Add2Args"])
	assert.Equal(t, "int32", p.aliases["Add2Returns"])
	assert.Contains(t, res.Output, "var Relationship2Relationships = []Relationship{}")
}

func TestFormat_RejectsInvalidGo(t *testing.T) {
	_, err := New("").Format("package database\n\ntype A struct{}\n\ntype A struct{}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redeclared")

	_, err = New("").Format("package database\n\nvar X Missing\n")
	require.Error(t, err)

	_, err = New("").Format("package database\n\nimport (\n\t\"encoding/json\"\n\t\"time\"\n)\n\ntype A struct {\n\tAt  time.Time\n\tRaw json.RawMessage\n}\n")
	require.NoError(t, err)
}

// brokenTarget emits Go that parses but does not type-check.
type brokenTarget struct{ *Target }

func (brokenTarget) Emit(*typegen.Model) (string, error) {
	return "package database\n\ntype Relationship struct{}\n\ntype Relationship struct{}\n", nil
}

func TestApply_TypeErrorIsGenerationFailure(t *testing.T) {
	_, err := typegen.Apply(context.Background(), typegentest.Metadata(), typegen.Options{}, brokenTarget{New("")})
	require.Error(t, err)
	assert.True(t, errs.IsGenerationFailed(err))
}
