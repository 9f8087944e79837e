// Package golang renders a typegen.Model as a Go source file: one struct per
// row shape, string types with constants for enums and argument structs
// for functions. Encoding relies on encoding/json struct tags.
package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// DefaultPackage is the package clause of emitted files.
const DefaultPackage = "database"

// Target emits Go.
type Target struct {
	pkg string
}

// New returns a Go target emitting into package pkg, or DefaultPackage
// when pkg is empty.
func New(pkg string) *Target {
	if pkg == "" {
		pkg = DefaultPackage
	}
	return &Target{pkg: pkg}
}

func (*Target) Name() string { return "go" }

// Format runs goimports over the emitted file and type-checks the result,
// so redeclared or undefined identifiers fail generation.
func (t *Target) Format(src string) (string, error) {
	filename := t.pkg + ".go"
	out, err := imports.Process(filename, []byte(src), nil)
	if err != nil {
		return "", err
	}
	if err := typeCheck(t.pkg, filename, out); err != nil {
		return "", err
	}
	return string(out), nil
}

func typeCheck(pkg, filename string, src []byte) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, 0)
	if err != nil {
		return err
	}
	conf := types.Config{Importer: stdImports()}
	_, err = conf.Check(pkg, fset, []*ast.File{f}, nil)
	return err
}

// stubImporter resolves the standard packages emitted files refer to. The
// checker only needs their exported type names.
type stubImporter map[string]*types.Package

func stdImports() stubImporter {
	pkgs := stubImporter{}
	add := func(path, name, typ string, underlying types.Type) {
		p := types.NewPackage(path, name)
		obj := types.NewTypeName(token.NoPos, p, typ, nil)
		types.NewNamed(obj, underlying, nil)
		p.Scope().Insert(obj)
		p.MarkComplete()
		pkgs[path] = p
	}
	add("time", "time", "Time", types.NewStruct(nil, nil))
	add("encoding/json", "json", "RawMessage", types.NewSlice(types.Typ[types.Byte]))
	return pkgs
}

func (s stubImporter) Import(path string) (*types.Package, error) {
	if p, ok := s[path]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unexpected import %q", path)
}

// dialect spells Type nodes as Go types. Timestamps without a zone, dates
// and intervals stay strings because their JSON forms are not RFC 3339.
type dialect struct {
	schemas map[string]bool
	// names maps declaration keys to collision-free identifiers.
	names map[string]string
}

var _ typegen.Dialect = dialect{}

func newDialect(m *typegen.Model) dialect {
	d := dialect{schemas: make(map[string]bool, len(m.Schemas)), names: declNames(m)}
	for _, s := range m.Schemas {
		d.schemas[s.Schema.Name] = true
	}
	return d
}

func (d dialect) rowType(rel catalog.Relation) (string, bool) {
	if !d.schemas[rel.Schema] {
		return "", false
	}
	return d.relationIdent(rel.Schema, rel.Name), true
}

func (d dialect) ident(kind, schema, name string) string {
	if id, ok := d.names[declKey(kind, schema, name)]; ok {
		return id
	}
	return typeName(schema, name)
}

func (d dialect) typeIdent(schema, name string) string {
	return d.ident(keyType, schema, name)
}

func (d dialect) relationIdent(schema, name string) string {
	return d.ident(keyRelation, schema, name)
}

func (d dialect) functionIdent(schema, name string) string {
	return d.ident(keyFunction, schema, name)
}

// code returns the jennifer statement for t.
func (d dialect) code(t typegen.Type) *jen.Statement {
	switch t := t.(type) {
	case typegen.Builtin:
		switch t.Kind {
		case typegen.KindBool:
			return jen.Bool()
		case typegen.KindInt:
			switch t.Bits {
			case 16:
				return jen.Int16()
			case 32:
				return jen.Int32()
			default:
				return jen.Int64()
			}
		case typegen.KindFloat:
			if t.Bits == 32 {
				return jen.Float32()
			}
			return jen.Float64()
		case typegen.KindString:
			return jen.String()
		default:
			return jen.Any()
		}
	case typegen.Datetime:
		if t.Zoned {
			return jen.Qual("time", "Time")
		}
		return jen.String()
	case typegen.Date, typegen.Duration:
		return jen.String()
	case typegen.List:
		return jen.Index().Add(d.code(t.Elem))
	case typegen.Map:
		return jen.Qual("encoding/json", "RawMessage")
	case typegen.Nullable:
		inner := t.Base()
		if nilable(inner, d) {
			return d.code(inner)
		}
		return jen.Op("*").Add(d.code(inner))
	case *typegen.Enum:
		return jen.Id(d.typeIdent(t.Schema, t.Name))
	case *typegen.Composite:
		return jen.Id(d.typeIdent(t.Schema, t.Name))
	case typegen.RelationRow:
		if name, ok := d.rowType(t.Relation); ok {
			return jen.Id(name)
		}
		return jen.Qual("encoding/json", "RawMessage")
	case typegen.Unknown:
		return jen.Any()
	}
	return jen.Any()
}

// nilable reports whether the Go spelling of t already has a nil value.
func nilable(t typegen.Type, d dialect) bool {
	switch t := t.(type) {
	case typegen.List, typegen.Map, typegen.Unknown:
		return true
	case typegen.Builtin:
		return t.Kind == typegen.KindAny
	case typegen.RelationRow:
		_, ok := d.rowType(t.Relation)
		return !ok
	}
	return false
}

func (d dialect) Spelling(t typegen.Type) string {
	return fmt.Sprintf("%#v", d.code(t))
}

// Encode and Decode are the identity: struct tags drive encoding/json.
func (dialect) Encode(_ typegen.Type, expr string) string { return expr }
func (dialect) Decode(_ typegen.Type, expr string) string { return expr }
