package typegen

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/koustreak/pgmeta/internal/catalog"
)

// Field is one column of a Row, Insert or Update shape.
type Field struct {
	Name string
	// Type is already wrapped Nullable when the column is nullable.
	Type Type
	// Optional fields may be left out of the payload.
	Optional bool
	// Never fields are rejected outright: the database generates them, or
	// the view column cannot be written.
	Never  bool
	Column catalog.Column
}

// RelationModel is a table or view with its three shapes.
type RelationModel struct {
	Relation catalog.Relation
	Row      []Field
	// Insert and Update are nil when the relation does not accept writes.
	Insert        []Field
	Update        []Field
	Relationships []Relationship
}

// Writable reports whether Insert and Update shapes exist.
func (m *RelationModel) Writable() bool {
	return m.Insert != nil
}

// Arg is a function argument as exposed to callers.
type Arg struct {
	Name     string
	Type     Type
	Optional bool
}

// ArgShape is the argument list of one overload. A single unnamed argument
// is allowed and has an empty Name.
type ArgShape []Arg

// FunctionModel is an overload set: every eligible overload of one name.
type FunctionModel struct {
	Schema string
	Name   string
	// Shapes holds one argument list per overload, ordered by definition.
	Shapes []ArgShape
	// Returns is nil for void functions. Set-returning functions return a List.
	Returns Type
	// ReturnColumns is set for RETURNS TABLE(...) functions, which return
	// a list of anonymous rows with these columns. Returns is then nil.
	ReturnColumns []Arg
}

// SchemaModel holds everything emitted under one schema, sorted by name.
// Model.Declarations carries the dependency order.
type SchemaModel struct {
	Schema     catalog.Schema
	Tables     []*RelationModel
	Views      []*RelationModel
	Functions  []*FunctionModel
	Enums      []*Enum
	Composites []*Composite
}

// Warning is a non-fatal finding surfaced with the result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Model is the grouped, resolved input every Target renders.
type Model struct {
	Schemas []*SchemaModel
	// Declarations lists every declarable type in dependency order,
	// whatever schema it belongs to.
	Declarations []Type
	Options      Options
	Warnings     []Warning
}

// Schema returns the schema model with the given name, or nil.
func (m *Model) Schema(name string) *SchemaModel {
	for _, s := range m.Schemas {
		if s.Schema.Name == name {
			return s
		}
	}
	return nil
}

func relationModel(r *Registry, rel catalog.Relation, cols []catalog.Column, rels *RelationshipResolver) *RelationModel {
	slices.SortFunc(cols, func(a, b catalog.Column) int { return cmp.Compare(a.Name, b.Name) })

	m := &RelationModel{Relation: rel, Relationships: rels.Resolve(rel)}

	isView := rel.Kind == catalog.KindView || rel.Kind == catalog.KindMaterializedView
	writable := rel.Kind == catalog.KindTable || rel.Kind == catalog.KindForeignTable ||
		(rel.Kind == catalog.KindView && rel.IsUpdatable)
	if writable {
		m.Insert = make([]Field, 0, len(cols))
		m.Update = make([]Field, 0, len(cols))
	}

	for _, c := range cols {
		t := r.ForColumn(c)
		m.Row = append(m.Row, Field{Name: c.Name, Type: t, Column: c})
		if !writable {
			continue
		}

		never := c.AlwaysGenerated() || (isView && !c.IsUpdatable)
		m.Insert = append(m.Insert, Field{
			Name:     c.Name,
			Type:     t,
			Optional: c.IsNullable || c.IsIdentity || c.DefaultValue != nil,
			Never:    never,
			Column:   c,
		})
		m.Update = append(m.Update, Field{
			Name:     c.Name,
			Type:     t,
			Optional: true,
			Never:    never,
			Column:   c,
		})
	}
	return m
}

// eligible reports whether f's inputs can be spelled as an argument object:
// every input argument is named, or there is exactly one input argument.
func eligible(f catalog.Function) bool {
	in := f.InputArgs()
	if len(in) == 1 {
		return true
	}
	for _, a := range in {
		if a.Name == "" {
			return false
		}
	}
	return true
}

// functionSets groups eligible functions into overload sets, sorted by
// (schema, name). Overloads within a set are sorted by definition text.
func functionSets(fns []catalog.Function) [][]catalog.Function {
	type key struct{ schema, name string }
	groups := make(map[key][]catalog.Function)
	var keys []key
	for _, f := range fns {
		if !eligible(f) {
			continue
		}
		k := key{f.Schema, f.Name}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], f)
	}
	slices.SortFunc(keys, func(a, b key) int {
		return cmp.Or(cmp.Compare(a.schema, b.schema), cmp.Compare(a.name, b.name))
	})

	out := make([][]catalog.Function, 0, len(keys))
	for _, k := range keys {
		set := groups[k]
		slices.SortStableFunc(set, func(a, b catalog.Function) int {
			return cmp.Compare(a.Definition, b.Definition)
		})
		out = append(out, set)
	}
	return out
}

// returnSignature identifies what a function returns, for comparing overloads.
func returnSignature(f catalog.Function) string {
	rel := int64(0)
	if f.ReturnTypeRelationID != nil {
		rel = *f.ReturnTypeRelationID
	}
	sig := fmt.Sprintf("%d/%d/%t", f.ReturnTypeID, rel, f.IsSetReturningFunction)
	for _, a := range f.TableArgs() {
		sig += fmt.Sprintf("/%s:%d", a.Name, a.TypeID)
	}
	return sig
}

func functionModel(r *Registry, set []catalog.Function) (*FunctionModel, *Warning) {
	last := set[len(set)-1]
	m := &FunctionModel{Schema: last.Schema, Name: last.Name}

	for _, f := range set {
		in := f.InputArgs()
		shape := make(ArgShape, 0, len(in))
		for _, a := range in {
			shape = append(shape, Arg{Name: a.Name, Type: r.ForTypeID(a.TypeID), Optional: a.HasDefault})
		}
		m.Shapes = append(m.Shapes, shape)
	}

	var warning *Warning
	for _, f := range set[:len(set)-1] {
		if returnSignature(f) != returnSignature(last) {
			warning = &Warning{
				Code: "overload_return_mismatch",
				Message: fmt.Sprintf("overloads of %s.%s return different types; using the return type of the last overload",
					last.Schema, last.Name),
			}
			break
		}
	}

	if cols := last.TableArgs(); len(cols) > 0 {
		for _, a := range cols {
			m.ReturnColumns = append(m.ReturnColumns, Arg{Name: a.Name, Type: MakeNullable(r.ForTypeID(a.TypeID))})
		}
		return m, warning
	}

	var ret Type
	if last.ReturnTypeRelationID != nil {
		if rel, ok := r.Relation(*last.ReturnTypeRelationID); ok {
			ret = RelationRow{Relation: rel}
		}
	}
	if ret == nil {
		if t, ok := r.Lookup(last.ReturnTypeID); ok && t.Name == voidFormat {
			return m, warning
		}
		ret = r.ForTypeID(last.ReturnTypeID)
	}
	if last.IsSetReturningFunction {
		ret = List{Elem: ret}
	}
	m.Returns = ret
	return m, warning
}
