// Package dart renders a typegen.Model as Dart value classes.
//
// Every table and view becomes an immutable class with fromJson, toJson and
// copyWith; writable relations also get static insert and update builders
// that leave out columns the database generates. Enums carry their literal
// values, and every function gets an argument builder.
package dart

import (
	"fmt"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/format"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// Target emits Dart.
type Target struct{}

// New returns the Dart target.
func New() *Target { return &Target{} }

func (*Target) Name() string { return "dart" }

func (*Target) Format(src string) (string, error) {
	return format.Source(src, format.Dart)
}

// dialect spells Type nodes as Dart. It records whether interval helpers are
// referenced so they are only declared when needed.
type dialect struct {
	schemas   map[string]bool
	intervals bool
}

var _ typegen.Dialect = (*dialect)(nil)

func newDialect(m *typegen.Model) *dialect {
	d := &dialect{schemas: make(map[string]bool, len(m.Schemas))}
	for _, s := range m.Schemas {
		d.schemas[s.Schema.Name] = true
	}
	return d
}

// rowClass reports the class declared for a relation row, if any.
func (d *dialect) rowClass(rel catalog.Relation) (string, bool) {
	if !d.schemas[rel.Schema] {
		return "", false
	}
	return className(rel.Schema, rel.Name), true
}

func (d *dialect) Spelling(t typegen.Type) string {
	switch t := t.(type) {
	case typegen.Builtin:
		switch t.Kind {
		case typegen.KindBool:
			return "bool"
		case typegen.KindInt:
			return "int"
		case typegen.KindFloat:
			return "double"
		case typegen.KindString:
			return "String"
		default:
			return "dynamic"
		}
	case typegen.Datetime, typegen.Date:
		return "DateTime"
	case typegen.Duration:
		return "Duration"
	case typegen.List:
		return "List<" + d.Spelling(t.Elem) + ">"
	case typegen.Map:
		return "Map<" + d.Spelling(t.Key) + ", " + d.Spelling(t.Value) + ">"
	case typegen.Nullable:
		inner := d.Spelling(t.Base())
		if inner == "dynamic" {
			return inner
		}
		return inner + "?"
	case *typegen.Enum:
		return className(t.Schema, t.Name)
	case *typegen.Composite:
		return className(t.Schema, t.Name)
	case typegen.RelationRow:
		if name, ok := d.rowClass(t.Relation); ok {
			return name
		}
		return "Map<String, dynamic>"
	case typegen.Unknown:
		return "dynamic"
	}
	return "dynamic"
}

func (d *dialect) Encode(t typegen.Type, expr string) string {
	return d.encode(t, expr, 0)
}

func (d *dialect) encode(t typegen.Type, expr string, depth int) string {
	switch t := t.(type) {
	case typegen.Builtin, typegen.Map, typegen.Unknown:
		return expr
	case typegen.Datetime:
		return expr + ".toIso8601String()"
	case typegen.Date:
		return expr + ".toIso8601String().split('T').first"
	case typegen.Duration:
		d.intervals = true
		return "_formatInterval(" + expr + ")"
	case typegen.List:
		v := lambdaVar(depth)
		inner := d.encode(t.Elem, v, depth+1)
		if inner == v {
			return expr
		}
		return fmt.Sprintf("%s.map((%s) => %s).toList()", expr, v, inner)
	case typegen.Nullable:
		inner := d.encode(t.Base(), expr+"!", depth)
		if inner == expr+"!" {
			return expr
		}
		return fmt.Sprintf("(%s == null ? null : %s)", expr, inner)
	case *typegen.Enum, *typegen.Composite:
		return expr + ".toJson()"
	case typegen.RelationRow:
		if _, ok := d.rowClass(t.Relation); ok {
			return expr + ".toJson()"
		}
		return expr
	}
	return expr
}

func (d *dialect) Decode(t typegen.Type, expr string) string {
	return d.decode(t, expr, 0)
}

func (d *dialect) decode(t typegen.Type, expr string, depth int) string {
	switch t := t.(type) {
	case typegen.Builtin:
		switch t.Kind {
		case typegen.KindBool:
			return "(" + expr + " as bool)"
		case typegen.KindInt:
			return "(" + expr + " as num).toInt()"
		case typegen.KindFloat:
			return "(" + expr + " as num).toDouble()"
		case typegen.KindString:
			return "(" + expr + " as String)"
		default:
			return expr
		}
	case typegen.Datetime, typegen.Date:
		return "DateTime.parse(" + expr + " as String)"
	case typegen.Duration:
		d.intervals = true
		return "_parseInterval(" + expr + " as String)"
	case typegen.List:
		v := lambdaVar(depth)
		inner := d.decode(t.Elem, v, depth+1)
		if inner == v {
			return "(" + expr + " as List<dynamic>).toList()"
		}
		return fmt.Sprintf("(%s as List<dynamic>).map((%s) => %s).toList()", expr, v, inner)
	case typegen.Map:
		return "(" + expr + " as Map<String, dynamic>)"
	case typegen.Nullable:
		inner := d.decode(t.Base(), expr, depth)
		if inner == expr {
			return expr
		}
		return fmt.Sprintf("(%s == null ? null : %s)", expr, inner)
	case *typegen.Enum:
		return className(t.Schema, t.Name) + ".fromJson(" + expr + " as String)"
	case *typegen.Composite:
		return className(t.Schema, t.Name) + ".fromJson(" + expr + " as Map<String, dynamic>)"
	case typegen.RelationRow:
		if name, ok := d.rowClass(t.Relation); ok {
			return name + ".fromJson(" + expr + " as Map<String, dynamic>)"
		}
		return "(" + expr + " as Map<String, dynamic>)"
	case typegen.Unknown:
		return expr
	}
	return expr
}

func lambdaVar(depth int) string {
	if depth == 0 {
		return "v"
	}
	return fmt.Sprintf("v%d", depth)
}
