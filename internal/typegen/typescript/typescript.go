// Package typescript renders a typegen.Model as a single TypeScript
// declaration file built around one nested `Database` type.
package typescript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/format"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// Target emits TypeScript.
type Target struct{}

// New returns the TypeScript target.
func New() *Target { return &Target{} }

func (*Target) Name() string { return "typescript" }

// Format re-indents the emitted source and rejects unbalanced syntax.
func (*Target) Format(src string) (string, error) {
	return format.Source(src, format.TypeScript)
}

// dialect spells Type nodes as TypeScript type expressions. Enum, composite
// and row references point into the Database type, so they resolve only for
// schemas that are emitted.
type dialect struct {
	schemas map[string]bool
}

var _ typegen.Dialect = dialect{}

func newDialect(m *typegen.Model) dialect {
	d := dialect{schemas: make(map[string]bool, len(m.Schemas))}
	for _, s := range m.Schemas {
		d.schemas[s.Schema.Name] = true
	}
	return d
}

func (d dialect) Spelling(t typegen.Type) string {
	switch t := t.(type) {
	case typegen.Builtin:
		switch t.Kind {
		case typegen.KindBool:
			return "boolean"
		case typegen.KindInt, typegen.KindFloat:
			return "number"
		case typegen.KindString:
			return "string"
		default:
			return "unknown"
		}
	case typegen.Datetime, typegen.Date, typegen.Duration:
		return "string"
	case typegen.List:
		elem := d.Spelling(t.Elem)
		if strings.Contains(elem, " ") {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case typegen.Map:
		return "Json"
	case typegen.Nullable:
		return d.Spelling(t.Base()) + " | null"
	case *typegen.Enum:
		if !d.schemas[t.Schema] {
			return "unknown"
		}
		return fmt.Sprintf("Database[%s][\"Enums\"][%s]", quote(t.Schema), quote(t.Name))
	case *typegen.Composite:
		if !d.schemas[t.Schema] {
			return "unknown"
		}
		return fmt.Sprintf("Database[%s][\"CompositeTypes\"][%s]", quote(t.Schema), quote(t.Name))
	case typegen.RelationRow:
		if !d.schemas[t.Relation.Schema] {
			return "unknown"
		}
		section := "Tables"
		if t.Relation.Kind == catalog.KindView || t.Relation.Kind == catalog.KindMaterializedView {
			section = "Views"
		}
		return fmt.Sprintf("Database[%s][%q][%s][\"Row\"]", quote(t.Relation.Schema), section, quote(t.Relation.Name))
	case typegen.Unknown:
		return "unknown"
	}
	return "unknown"
}

// Encode and Decode are the identity: JSON values already have the shape
// the declarations describe.
func (dialect) Encode(_ typegen.Type, expr string) string { return expr }
func (dialect) Decode(_ typegen.Type, expr string) string { return expr }

var identRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// key spells a property name, quoting it when it is not an identifier.
func key(name string) string {
	if identRE.MatchString(name) {
		return name
	}
	return quote(name)
}

// quote produces a TypeScript string literal.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
