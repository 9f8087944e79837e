package golang

import (
	"bytes"

	"github.com/dave/jennifer/jen"

	"github.com/koustreak/pgmeta/internal/typegen"
)

type emitter struct {
	f       *jen.File
	d       dialect
	boolPtr bool
}

// Emit renders m as a Go file.
func (t *Target) Emit(m *typegen.Model) (string, error) {
	e := &emitter{f: jen.NewFile(t.pkg), d: newDialect(m)}
	e.f.HeaderComment("Code generated by pgmeta. DO NOT EDIT.")

	e.relationshipType()
	if v := m.Options.PostgrestVersion; v != "" {
		e.f.Comment("PostgrestVersion is the PostgREST version the bindings target.")
		e.f.Const().Id("PostgrestVersion").Op("=").Lit(v)
	}

	for _, decl := range m.Declarations {
		switch decl := decl.(type) {
		case *typegen.Enum:
			e.enum(decl)
		case *typegen.Composite:
			e.composite(decl)
		}
	}

	for _, s := range m.Schemas {
		for _, r := range s.Tables {
			e.relation(r)
		}
		for _, r := range s.Views {
			e.relation(r)
		}
		for _, fn := range s.Functions {
			e.function(fn)
		}
	}

	if e.boolPtr {
		e.f.Func().Id("boolPtr").Params(jen.Id("b").Bool()).Op("*").Bool().Block(
			jen.Return(jen.Op("&").Id("b")),
		)
	}

	var buf bytes.Buffer
	if err := e.f.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *emitter) relationshipType() {
	e.f.Comment("Relationship describes a foreign key between two relations of one schema.")
	e.f.Type().Id("Relationship").Struct(
		jen.Id("ForeignKeyName").String(),
		jen.Id("Columns").Index().String(),
		jen.Id("IsOneToOne").Op("*").Bool(),
		jen.Id("ReferencedRelation").String(),
		jen.Id("ReferencedColumns").Index().String(),
	)
}

func (e *emitter) enum(en *typegen.Enum) {
	name := e.d.typeIdent(en.Schema, en.Name)
	e.f.Commentf("%s is the %s.%s enum.", name, en.Schema, en.Name)
	e.f.Type().Id(name).String()
	if len(en.Members) == 0 {
		return
	}

	consts := fieldNames(en.Members)
	defs := make([]jen.Code, len(en.Members))
	for i, v := range en.Members {
		defs[i] = jen.Id(name + consts[i]).Id(name).Op("=").Lit(v)
	}
	e.f.Const().Defs(defs...)

	values := make([]jen.Code, len(en.Members))
	for i := range en.Members {
		values[i] = jen.Id(name + consts[i])
	}
	e.f.Commentf("%sValues lists every %s in declaration order.", name, name)
	e.f.Func().Id(name + "Values").Params().Index().Id(name).Block(
		jen.Return(jen.Index().Id(name).Values(values...)),
	)
}

// field is one struct field of a generated shape.
type field struct {
	key       string
	typ       *jen.Statement
	omitempty bool
}

func (e *emitter) structType(name string, fields []field) {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	ids := fieldNames(keys)

	members := make([]jen.Code, len(fields))
	for i, f := range fields {
		tag := f.key
		if f.omitempty {
			tag += ",omitempty"
		}
		members[i] = jen.Id(ids[i]).Add(f.typ).Tag(map[string]string{"json": tag})
	}
	e.f.Type().Id(name).Struct(members...)
}

func (e *emitter) composite(c *typegen.Composite) {
	name := e.d.typeIdent(c.Schema, c.Name)
	fields := make([]field, len(c.Attributes))
	for i, a := range c.Attributes {
		fields[i] = field{key: a.Name, typ: e.d.code(a.Type)}
	}
	e.f.Commentf("%s is the %s.%s composite type.", name, c.Schema, c.Name)
	e.structType(name, fields)
}

// optional spells t for a field that may be left out of a payload.
func (e *emitter) optional(t typegen.Type) *jen.Statement {
	inner, _ := typegen.StripNullable(t)
	if nilable(inner, e.d) {
		return e.d.code(inner)
	}
	return jen.Op("*").Add(e.d.code(inner))
}

func (e *emitter) relation(r *typegen.RelationModel) {
	name := e.d.relationIdent(r.Relation.Schema, r.Relation.Name)

	row := make([]field, len(r.Row))
	for i, f := range r.Row {
		row[i] = field{key: f.Name, typ: e.d.code(f.Type)}
	}
	e.f.Commentf("%s is a row of %s.%s.", name, r.Relation.Schema, r.Relation.Name)
	e.structType(name, row)

	e.f.Commentf("TableName returns %q.", r.Relation.Name)
	e.f.Func().Params(jen.Id(name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(r.Relation.Name)),
	)

	if r.Writable() {
		e.f.Commentf("%sInsert is the payload accepted when inserting into %s.%s.", name, r.Relation.Schema, r.Relation.Name)
		e.structType(name+"Insert", e.writeFields(r.Insert))
		e.f.Commentf("%sUpdate is the payload accepted when updating %s.%s.", name, r.Relation.Schema, r.Relation.Name)
		e.structType(name+"Update", e.writeFields(r.Update))
	}

	rels := make([]jen.Code, len(r.Relationships))
	for i, rel := range r.Relationships {
		dict := jen.Dict{
			jen.Id("ForeignKeyName"):     jen.Lit(rel.ForeignKeyName),
			jen.Id("Columns"):            stringSlice(rel.Columns),
			jen.Id("ReferencedRelation"): jen.Lit(rel.ReferencedRelation),
			jen.Id("ReferencedColumns"):  stringSlice(rel.ReferencedColumns),
		}
		if rel.IsOneToOne != nil {
			dict[jen.Id("IsOneToOne")] = jen.Id("boolPtr").Call(jen.Lit(*rel.IsOneToOne))
			e.boolPtr = true
		}
		rels[i] = jen.Values(dict)
	}
	e.f.Commentf("%sRelationships lists the foreign keys of %s.%s.", name, r.Relation.Schema, r.Relation.Name)
	e.f.Var().Id(name + "Relationships").Op("=").Index().Id("Relationship").Values(rels...)
}

// writeFields leaves out Never fields: the struct cannot carry them.
func (e *emitter) writeFields(shape []typegen.Field) []field {
	var out []field
	for _, f := range shape {
		switch {
		case f.Never:
		case f.Optional:
			out = append(out, field{key: f.Name, typ: e.optional(f.Type), omitempty: true})
		default:
			out = append(out, field{key: f.Name, typ: e.d.code(f.Type)})
		}
	}
	return out
}

func (e *emitter) function(fn *typegen.FunctionModel) {
	name := e.d.functionIdent(fn.Schema, fn.Name)

	for i, shape := range fn.Shapes {
		args := name + argsSuffix(i)
		if len(shape) == 1 && shape[0].Name == "" {
			e.f.Commentf("%s is the single unnamed argument of %s.%s.", args, fn.Schema, fn.Name)
			e.f.Type().Id(args).Op("=").Add(e.d.code(shape[0].Type))
			continue
		}
		fields := make([]field, len(shape))
		for j, a := range shape {
			if a.Optional {
				fields[j] = field{key: a.Name, typ: e.optional(a.Type), omitempty: true}
			} else {
				fields[j] = field{key: a.Name, typ: e.d.code(a.Type)}
			}
		}
		e.f.Commentf("%s are the arguments of %s.%s.", args, fn.Schema, fn.Name)
		e.structType(args, fields)
	}

	switch {
	case len(fn.ReturnColumns) > 0:
		fields := make([]field, len(fn.ReturnColumns))
		for i, a := range fn.ReturnColumns {
			fields[i] = field{key: a.Name, typ: e.d.code(a.Type)}
		}
		e.f.Commentf("%sRow is a row returned by %s.%s.", name, fn.Schema, fn.Name)
		e.structType(name+"Row", fields)
		e.f.Type().Id(name + "Returns").Op("=").Index().Id(name + "Row")
	case fn.Returns != nil:
		e.f.Type().Id(name + "Returns").Op("=").Add(e.d.code(fn.Returns))
	}
}

func stringSlice(items []string) *jen.Statement {
	lits := make([]jen.Code, len(items))
	for i, s := range items {
		lits[i] = jen.Lit(s)
	}
	return jen.Index().String().Values(lits...)
}
