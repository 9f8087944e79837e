package dart

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/typegen"
	"github.com/koustreak/pgmeta/internal/typegen/typegentest"
)

func generate(t *testing.T, opts typegen.Options) string {
	t.Helper()
	res, err := typegen.Apply(context.Background(), typegentest.Metadata(), opts, New())
	require.NoError(t, err)
	return res.Output
}

func trimmedLines(src string) []string {
	var out []string
	for _, l := range strings.Split(src, "\n") {
		out = append(out, strings.TrimSpace(l))
	}
	return out
}

func TestDialect(t *testing.T) {
	d := &dialect{schemas: map[string]bool{"public": true}}
	intType := typegen.Builtin{Kind: typegen.KindInt, Bits: 32}
	ts := typegen.Datetime{Zoned: true}
	mood := &typegen.Enum{Schema: "public", Name: "mood"}
	addr := &typegen.Composite{Schema: "billing", Name: "address"}
	row := typegen.RelationRow{Relation: catalog.Relation{Schema: "public", Name: "order_items"}}

	tests := []struct {
		name     string
		typ      typegen.Type
		spelling string
		encode   string
		decode   string
	}{
		{"int", intType, "int", "x", "(x as num).toInt()"},
		{"float", typegen.Builtin{Kind: typegen.KindFloat}, "double", "x", "(x as num).toDouble()"},
		{"string", typegen.Builtin{Kind: typegen.KindString}, "String", "x", "(x as String)"},
		{"any", typegen.Builtin{Kind: typegen.KindAny}, "dynamic", "x", "x"},
		{"datetime", ts, "DateTime", "x.toIso8601String()", "DateTime.parse(x as String)"},
		{"date", typegen.Date{}, "DateTime", "x.toIso8601String().split('T').first", "DateTime.parse(x as String)"},
		{"duration", typegen.Duration{}, "Duration", "_formatInterval(x)", "_parseInterval(x as String)"},
		{"json", typegen.Map{Key: typegen.Builtin{Kind: typegen.KindString}, Value: typegen.Builtin{Kind: typegen.KindAny}},
			"Map<String, dynamic>", "x", "(x as Map<String, dynamic>)"},
		{"nullable int", typegen.MakeNullable(intType), "int?", "x", "(x == null ? null : (x as num).toInt())"},
		{"nullable any", typegen.MakeNullable(typegen.Builtin{Kind: typegen.KindAny}), "dynamic", "x", "x"},
		{"nullable datetime", typegen.MakeNullable(ts), "DateTime?", "(x == null ? null : x!.toIso8601String())",
			"(x == null ? null : DateTime.parse(x as String))"},
		{"list of ints", typegen.List{Elem: intType}, "List<int>", "x",
			"(x as List<dynamic>).map((v) => (v as num).toInt()).toList()"},
		{"nested list of datetimes", typegen.List{Elem: typegen.List{Elem: ts}}, "List<List<DateTime>>",
			"x.map((v) => v.map((v1) => v1.toIso8601String()).toList()).toList()",
			"(x as List<dynamic>).map((v) => (v as List<dynamic>).map((v1) => DateTime.parse(v1 as String)).toList()).toList()"},
		{"enum", mood, "Mood", "x.toJson()", "Mood.fromJson(x as String)"},
		{"composite outside public", addr, "BillingAddress", "x.toJson()", "BillingAddress.fromJson(x as Map<String, dynamic>)"},
		{"relation row", row, "OrderItems", "x.toJson()", "OrderItems.fromJson(x as Map<String, dynamic>)"},
		{"unknown", typegen.Unknown{}, "dynamic", "x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.spelling, d.Spelling(tt.typ))
			assert.Equal(t, tt.encode, d.Encode(tt.typ, "x"))
			assert.Equal(t, tt.decode, d.Decode(tt.typ, "x"))
		})
	}

	t.Run("nullable idempotence", func(t *testing.T) {
		once := typegen.MakeNullable(ts)
		twice := typegen.Nullable{Inner: once}
		assert.Equal(t, d.Spelling(once), d.Spelling(twice))
		assert.Equal(t, d.Encode(once, "x"), d.Encode(twice, "x"))
		assert.Equal(t, d.Decode(once, "x"), d.Decode(twice, "x"))
	})
}

func TestNames(t *testing.T) {
	assert.Equal(t, "createdAt", ident("created_at"))
	assert.Equal(t, "class_", ident("class"))
	assert.Equal(t, "v2fa", ident("2fa"))
	assert.Equal(t, "field", ident("!!"))
	assert.Equal(t, "name", ident("name"))
	assert.Equal(t, "toJson_", ident("to_json"))
	assert.Equal(t, "name_", enumIdent("name"))
	assert.Equal(t, "values_", enumIdent("values"))
	assert.Equal(t, "happy", enumIdent("happy"))
	assert.Equal(t, []string{"userId", "userId2", "userId3"}, idents([]string{"user_id", "userId", "USER_ID"}))
	assert.Equal(t, "OrderItems", className("public", "order_items"))
	assert.Equal(t, "AuthUsers", className("auth", "users"))
	assert.Equal(t, `'it\'s \$5'`, str("it's $5"))
}

func TestEmit_Declarations(t *testing.T) {
	lines := trimmedLines(generate(t, typegen.Options{}))

	for _, want := range []string{
		"class Relationship {",
		"enum Mood {",
		"happy('happy'),",
		"sad('sad');",
		"static Mood fromJson(String value) => values.firstWhere((e) => e.value == value);",
		"class Address {",
		"final String? street;",
		"class Geo {",
		"final Address? point;",
		"final List<Mood>? moods;",
		"moods: (json['moods'] == null ? null : (json['moods'] as List<dynamic>).map((v) => Mood.fromJson(v as String)).toList()),",
		"'moods': (moods == null ? null : moods!.map((v) => v.toJson()).toList()),",
	} {
		assert.Contains(t, lines, want)
	}
	for _, l := range lines {
		assert.NotContains(t, l, "Status")
	}
}

func TestEmit_RelationClasses(t *testing.T) {
	lines := trimmedLines(generate(t, typegen.Options{}))

	for _, want := range []string{
		"class Products {",
		"required this.id,",
		"this.price,",
		"final int id;",
		"final DateTime createdAt;",
		"final Duration? ttl;",
		"final double? price;",
		"final Map<String, dynamic>? attrs;",
		"final List<String>? tags;",
		"id: (json['id'] as num).toInt(),",
		"createdAt: DateTime.parse(json['created_at'] as String),",
		"'created_at': createdAt.toIso8601String(),",
		"'ttl': (ttl == null ? null : _formatInterval(ttl!)),",
		"static const tableName = 'products';",
		"static const schemaName = 'public';",
		"static Map<String, dynamic> insert({",
		"required String name,",
		"DateTime? createdAt,",
		"if (createdAt != null) 'created_at': createdAt.toIso8601String(),",
		"'name': name,",
		"static Map<String, dynamic> update({",
		"if (name != null) 'name': name,",
		"class AuthUsers {",
		"foreignKeyName: 't_a_fkey',",
		"Duration _parseInterval(String value) {",
		"String _formatInterval(Duration value) {",
		"final String name;",
		"required this.name,",
	} {
		assert.Contains(t, lines, want)
	}

	// The identity column is generated ALWAYS: no builder accepts it.
	assert.NotContains(t, lines, "int? id,")
	assert.NotContains(t, lines, "isOneToOne: false,")
}

func TestEmit_BuildersAcceptExplicitNull(t *testing.T) {
	lines := trimmedLines(generate(t, typegen.Options{}))

	for _, want := range []string{
		"const _unset = Object();",
		"Object? price = _unset,",
		"if (!identical(price, _unset)) 'price': (price as double?),",
		"Object? ttl = _unset,",
		"if (!identical(ttl, _unset)) 'ttl': ((ttl as Duration?) == null ? null : _formatInterval((ttl as Duration?)!)),",
		// Non-nullable columns are left out when null.
		"String? name,",
		"if (name != null) 'name': name,",
	} {
		assert.Contains(t, lines, want)
	}
	assert.NotContains(t, lines, "double? price,")
	assert.NotContains(t, lines, "if (price != null) 'price': price,")
}

func TestEmit_IdentityByDefaultIsOptional(t *testing.T) {
	out := generate(t, typegen.Options{})
	start := strings.Index(out, "class T {")
	require.NotEqual(t, -1, start)
	end := strings.Index(out[start:], "\n}\n")
	require.NotEqual(t, -1, end)
	body := trimmedLines(out[start : start+end])

	assert.Contains(t, body, "final int seq;")
	assert.Equal(t, 2, countLines(body, "int? seq,"))
	assert.Equal(t, 2, countLines(body, "if (seq != null) 'seq': seq,"))
	assert.NotContains(t, body, "required int seq,")
}

func countLines(lines []string, want string) int {
	n := 0
	for _, l := range lines {
		if l == want {
			n++
		}
	}
	return n
}

func TestEmit_ReadOnlyViewHasNoBuilders(t *testing.T) {
	out := generate(t, typegen.Options{})
	start := strings.Index(out, "class ProductNames {")
	require.NotEqual(t, -1, start)
	end := strings.Index(out[start:], "\n}\n")
	require.NotEqual(t, -1, end)
	body := out[start : start+end]

	assert.Contains(t, body, "static const relationships = <Relationship>[];")
	assert.NotContains(t, body, "insert(")
	assert.NotContains(t, body, "update(")
}

func TestEmit_Functions(t *testing.T) {
	lines := trimmedLines(generate(t, typegen.Options{DetectOneToOneRelationships: true}))

	for _, want := range []string{
		"abstract class AddRpc {",
		"static const functionName = 'add';",
		"required int a,",
		"int? b,",
		"'a': a,",
		"if (b != null) 'b': b,",
		"static int? parse(dynamic json) => (json == null ? null : (json as num).toInt());",
		"abstract class SearchProductsRpc {",
		"static List<Products> parse(dynamic json) => (json as List<dynamic>).map((v) => Products.fromJson(v as Map<String, dynamic>)).toList();",
		"abstract class NoopRpc {",
		"static Map<String, dynamic> args() => <String, dynamic>{};",
		"class StatsResult {",
		"final int? total;",
		"static List<StatsResult> parse(dynamic json) => (json as List<dynamic>).map((v) => StatsResult.fromJson(v as Map<String, dynamic>)).toList();",
		"isOneToOne: false,",
	} {
		assert.Contains(t, lines, want)
	}
	assert.NotContains(t, lines, "abstract class AnonymousPairRpc {")
}

func TestEmit_IntervalHelpersOnlyWhenUsed(t *testing.T) {
	meta := typegentest.Metadata()
	var cols []catalog.Column
	for _, c := range meta.Columns {
		if c.Format != "interval" {
			cols = append(cols, c)
		}
	}
	meta.Columns = cols

	res, err := typegen.Apply(context.Background(), meta, typegen.Options{}, New())
	require.NoError(t, err)
	assert.NotContains(t, res.Output, "_parseInterval")
}

func TestEmit_Deterministic(t *testing.T) {
	assert.Equal(t, generate(t, typegen.Options{}), generate(t, typegen.Options{}))
}
