package typegen

import "github.com/koustreak/pgmeta/internal/catalog"

// Type is the closed set of type representations the emitters render.
// The unexported marker method seals the set to this package; every
// Dialect switches over exactly these variants.
type Type interface {
	isType()
}

// BuiltinKind is the family of a scalar builtin.
type BuiltinKind int

const (
	KindBool BuiltinKind = iota
	KindInt
	KindFloat
	KindString
	KindAny
)

// Builtin is a scalar that every target has a native spelling for.
// Bits distinguishes int2/int4/int8 and float4/float8 for targets that care.
type Builtin struct {
	Kind   BuiltinKind
	Bits   int
	Format string
}

// Datetime is a timestamp, Zoned for timestamptz.
type Datetime struct {
	Zoned bool
}

// Date is a calendar date without time of day.
type Date struct{}

// Duration is decoded from a PostgreSQL interval.
type Duration struct{}

// List is an array of Elem.
type List struct {
	Elem Type
}

// Map is an untyped JSON object (json, jsonb).
type Map struct {
	Key   Type
	Value Type
}

// Nullable marks a value that may be null. Build it with MakeNullable so
// wrapping twice collapses to a single wrapper.
type Nullable struct {
	Inner Type
}

// Enum is a declarable enumerated type.
type Enum struct {
	Schema  string
	Name    string
	Members []string
}

// Attribute is a member of a composite type. Its Type is always Nullable
// because the catalog cannot prove composite attributes non-null.
type Attribute struct {
	Name string
	Type Type
}

// Composite is a declarable structured type.
type Composite struct {
	Schema     string
	Name       string
	Attributes []Attribute
}

// RelationRow is the implicit row type of a table or view. Emitters refer
// to the relation's own declaration instead of re-declaring its fields.
type RelationRow struct {
	Relation catalog.Relation
}

// Unknown is the bottom type for unmapped formats and dangling references.
type Unknown struct {
	Format string
}

func (Builtin) isType()     {}
func (Datetime) isType()    {}
func (Date) isType()        {}
func (Duration) isType()    {}
func (List) isType()        {}
func (Map) isType()         {}
func (Nullable) isType()    {}
func (*Enum) isType()       {}
func (*Composite) isType()  {}
func (RelationRow) isType() {}
func (Unknown) isType()     {}

// MakeNullable wraps t in Nullable unless it already is one.
func MakeNullable(t Type) Type {
	if n, ok := t.(Nullable); ok {
		return n
	}
	return Nullable{Inner: t}
}

// Base returns the innermost non-nullable type, collapsing any nesting
// built without MakeNullable.
func (n Nullable) Base() Type {
	t := n.Inner
	for {
		inner, ok := t.(Nullable)
		if !ok {
			return t
		}
		t = inner.Inner
	}
}

// StripNullable returns the wrapped type and whether t was nullable.
func StripNullable(t Type) (Type, bool) {
	if n, ok := t.(Nullable); ok {
		return n.Base(), true
	}
	return t, false
}

// Dialect spells Type nodes in one target language. Implementations switch
// exhaustively over the variants above.
type Dialect interface {
	// Spelling is the type expression, e.g. "number" or "List<int>".
	Spelling(t Type) string
	// Encode converts the in-memory value expr into a JSON-compatible value.
	Encode(t Type, expr string) string
	// Decode converts expr, a raw decoded JSON value, into the in-memory value.
	Decode(t Type, expr string) string
}

// Declarable reports whether t owns a top-level declaration.
func Declarable(t Type) bool {
	switch t.(type) {
	case *Enum, *Composite:
		return true
	}
	return false
}

var (
	stringType = Builtin{Kind: KindString, Format: "text"}
	anyType    = Builtin{Kind: KindAny}
)

// scalars maps PostgreSQL base type names to their representation.
var scalars = map[string]Type{
	"bool":        Builtin{Kind: KindBool, Format: "bool"},
	"int2":        Builtin{Kind: KindInt, Bits: 16, Format: "int2"},
	"int4":        Builtin{Kind: KindInt, Bits: 32, Format: "int4"},
	"int8":        Builtin{Kind: KindInt, Bits: 64, Format: "int8"},
	"oid":         Builtin{Kind: KindInt, Bits: 64, Format: "oid"},
	"float4":      Builtin{Kind: KindFloat, Bits: 32, Format: "float4"},
	"float8":      Builtin{Kind: KindFloat, Bits: 64, Format: "float8"},
	"numeric":     Builtin{Kind: KindFloat, Bits: 64, Format: "numeric"},
	"text":        stringType,
	"varchar":     Builtin{Kind: KindString, Format: "varchar"},
	"bpchar":      Builtin{Kind: KindString, Format: "bpchar"},
	"char":        Builtin{Kind: KindString, Format: "char"},
	"citext":      Builtin{Kind: KindString, Format: "citext"},
	"name":        Builtin{Kind: KindString, Format: "name"},
	"uuid":        Builtin{Kind: KindString, Format: "uuid"},
	"bytea":       Builtin{Kind: KindString, Format: "bytea"},
	"inet":        Builtin{Kind: KindString, Format: "inet"},
	"cidr":        Builtin{Kind: KindString, Format: "cidr"},
	"macaddr":     Builtin{Kind: KindString, Format: "macaddr"},
	"money":       Builtin{Kind: KindString, Format: "money"},
	"time":        Builtin{Kind: KindString, Format: "time"},
	"timetz":      Builtin{Kind: KindString, Format: "timetz"},
	"tsvector":    Builtin{Kind: KindString, Format: "tsvector"},
	"tsquery":     Builtin{Kind: KindString, Format: "tsquery"},
	"vector":      Builtin{Kind: KindString, Format: "vector"},
	"xml":         Builtin{Kind: KindString, Format: "xml"},
	"date":        Date{},
	"timestamp":   Datetime{},
	"timestamptz": Datetime{Zoned: true},
	"interval":    Duration{},
	"json":        Map{Key: stringType, Value: anyType},
	"jsonb":       Map{Key: stringType, Value: anyType},
}

// Scalar returns the fixed representation of a builtin format.
func Scalar(format string) (Type, bool) {
	t, ok := scalars[format]
	return t, ok
}

// voidFormat is the pseudo-type of functions without a result.
const voidFormat = "void"
