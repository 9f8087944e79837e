package dart

import (
	"fmt"
	"strings"

	"github.com/koustreak/pgmeta/internal/typegen"
)

const header = `// Generated by pgmeta. Do not edit.
// ignore_for_file: type=lint
`

const relationshipClass = `class Relationship {
const Relationship({
required this.foreignKeyName,
required this.columns,
this.isOneToOne,
required this.referencedRelation,
required this.referencedColumns,
});

final String foreignKeyName;
final List<String> columns;
final bool? isOneToOne;
final String referencedRelation;
final List<String> referencedColumns;
}
`

const intervalHelpers = `Duration _parseInterval(String value) {
var micros = 0;
for (final m in RegExp(r'(-?\d+) (year|mon|day)s?').allMatches(value)) {
final n = int.parse(m.group(1)!);
switch (m.group(2)) {
case 'year':
micros += n * 365 * Duration.microsecondsPerDay;
break;
case 'mon':
micros += n * 30 * Duration.microsecondsPerDay;
break;
default:
micros += n * Duration.microsecondsPerDay;
}
}
final time = RegExp(r'([+-])?(\d+):(\d\d):(\d\d)(?:\.(\d{1,6}))?').firstMatch(value);
if (time != null) {
final sign = time.group(1) == '-' ? -1 : 1;
final fraction = (time.group(5) ?? '').padRight(6, '0');
micros += sign * (int.parse(time.group(2)!) * Duration.microsecondsPerHour +
int.parse(time.group(3)!) * Duration.microsecondsPerMinute +
int.parse(time.group(4)!) * Duration.microsecondsPerSecond +
int.parse(fraction));
}
return Duration(microseconds: micros);
}

String _formatInterval(Duration value) {
final micros = value.inMicroseconds.abs();
final sign = value.isNegative ? '-' : '';
final seconds = micros ~/ Duration.microsecondsPerSecond;
final fraction = (micros % Duration.microsecondsPerSecond).toString().padLeft(6, '0');
return '$sign$seconds.$fraction seconds';
}
`

// unsetValue marks a builder parameter the caller left out, so that an
// explicit null still reaches the payload.
const unsetValue = `const _unset = Object();
`

type writer struct {
	b     strings.Builder
	d     *dialect
	unset bool
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// field is one constructor parameter and instance field of a value class.
type field struct {
	key   string
	ident string
	typ   typegen.Type
}

func fields(names []string, types []typegen.Type) []field {
	ids := idents(names)
	out := make([]field, len(names))
	for i := range names {
		out[i] = field{key: names[i], ident: ids[i], typ: types[i]}
	}
	return out
}

// Emit renders m. Enums and composites are declared in dependency order,
// followed by one class per relation and one builder per function.
func (t *Target) Emit(m *typegen.Model) (string, error) {
	w := &writer{d: newDialect(m)}

	w.line("%s", header)
	w.line("%s", relationshipClass)

	for _, decl := range m.Declarations {
		switch decl := decl.(type) {
		case *typegen.Enum:
			w.enum(decl)
		case *typegen.Composite:
			names := make([]string, len(decl.Attributes))
			types := make([]typegen.Type, len(decl.Attributes))
			for i, a := range decl.Attributes {
				names[i], types[i] = a.Name, a.Type
			}
			w.valueClass(className(decl.Schema, decl.Name), fields(names, types), nil)
		}
	}

	for _, s := range m.Schemas {
		for _, r := range s.Tables {
			w.relation(r)
		}
		for _, r := range s.Views {
			w.relation(r)
		}
		for _, f := range s.Functions {
			w.function(f)
		}
	}

	if w.d.intervals {
		w.line("%s", intervalHelpers)
	}
	if w.unset {
		w.line("%s", unsetValue)
	}
	return w.b.String(), nil
}

func (w *writer) enum(e *typegen.Enum) {
	name := className(e.Schema, e.Name)
	members := uniqueIdents(e.Members, enumIdent)

	if len(members) == 0 {
		w.line("class %s {", name)
		w.line("const %s._(this.value);", name)
		w.line("")
		w.line("final String value;")
		w.line("")
		w.line("static %s fromJson(String value) => %s._(value);", name, name)
		w.line("")
		w.line("String toJson() => value;")
		w.line("}")
		w.line("")
		return
	}

	w.line("enum %s {", name)
	for i, v := range e.Members {
		sep := ","
		if i == len(e.Members)-1 {
			sep = ";"
		}
		w.line("%s(%s)%s", members[i], str(v), sep)
	}
	w.line("")
	w.line("const %s(this.value);", name)
	w.line("")
	w.line("final String value;")
	w.line("")
	w.line("static %s fromJson(String value) => values.firstWhere((e) => e.value == value);", name)
	w.line("")
	w.line("String toJson() => value;")
	w.line("}")
	w.line("")
}

// valueClass declares an immutable class with fromJson, toJson and copyWith.
// extra writes additional members before the closing brace.
func (w *writer) valueClass(name string, fs []field, extra func()) {
	w.line("class %s {", name)

	if len(fs) == 0 {
		w.line("const %s();", name)
	} else {
		w.line("const %s({", name)
		for _, f := range fs {
			if _, nullable := f.typ.(typegen.Nullable); nullable {
				w.line("this.%s,", f.ident)
			} else {
				w.line("required this.%s,", f.ident)
			}
		}
		w.line("});")
	}
	w.line("")

	for _, f := range fs {
		w.line("final %s %s;", w.d.Spelling(f.typ), f.ident)
	}
	if len(fs) > 0 {
		w.line("")
	}

	w.line("factory %s.fromJson(Map<String, dynamic> json) {", name)
	w.line("return %s(", name)
	for _, f := range fs {
		w.line("%s: %s,", f.ident, w.d.Decode(f.typ, "json["+str(f.key)+"]"))
	}
	w.line(");")
	w.line("}")
	w.line("")

	w.line("Map<String, dynamic> toJson() {")
	w.line("return {")
	for _, f := range fs {
		w.line("%s: %s,", str(f.key), w.d.Encode(f.typ, f.ident))
	}
	w.line("};")
	w.line("}")
	w.line("")

	if len(fs) == 0 {
		w.line("%s copyWith() => const %s();", name, name)
	} else {
		params := make([]string, len(fs))
		for i, f := range fs {
			params[i] = w.d.Spelling(typegen.MakeNullable(f.typ)) + " " + f.ident
		}
		w.line("%s copyWith({%s}) {", name, strings.Join(params, ", "))
		w.line("return %s(", name)
		for _, f := range fs {
			w.line("%s: %s ?? this.%s,", f.ident, f.ident, f.ident)
		}
		w.line(");")
		w.line("}")
	}

	if extra != nil {
		w.line("")
		extra()
	}
	w.line("}")
	w.line("")
}

func (w *writer) relation(r *typegen.RelationModel) {
	name := className(r.Relation.Schema, r.Relation.Name)

	names := make([]string, len(r.Row))
	types := make([]typegen.Type, len(r.Row))
	for i, f := range r.Row {
		names[i], types[i] = f.Name, f.Type
	}
	fs := fields(names, types)
	ids := make(map[string]string, len(fs))
	for _, f := range fs {
		ids[f.key] = f.ident
	}

	w.valueClass(name, fs, func() {
		w.line("static const tableName = %s;", str(r.Relation.Name))
		w.line("static const schemaName = %s;", str(r.Relation.Schema))
		w.line("")
		w.relationships(r.Relationships)
		if r.Writable() {
			w.line("")
			w.builder("insert", r.Insert, ids)
			w.line("")
			w.builder("update", r.Update, ids)
		}
	})
}

func (w *writer) relationships(rels []typegen.Relationship) {
	if len(rels) == 0 {
		w.line("static const relationships = <Relationship>[];")
		return
	}
	w.line("static const relationships = <Relationship>[")
	for _, rel := range rels {
		w.line("Relationship(")
		w.line("foreignKeyName: %s,", str(rel.ForeignKeyName))
		w.line("columns: %s,", strList(rel.Columns))
		if rel.IsOneToOne != nil {
			w.line("isOneToOne: %t,", *rel.IsOneToOne)
		}
		w.line("referencedRelation: %s,", str(rel.ReferencedRelation))
		w.line("referencedColumns: %s,", strList(rel.ReferencedColumns))
		w.line("),")
	}
	w.line("];")
}

// builder declares a static method that assembles a write payload. Never
// fields have no parameter, so the payload cannot carry them. Optional
// nullable fields default to _unset: leaving one out omits the key, passing
// null writes NULL.
func (w *writer) builder(method string, shape []typegen.Field, ids map[string]string) {
	var accepted []typegen.Field
	for _, f := range shape {
		if !f.Never {
			accepted = append(accepted, f)
		}
	}
	if len(accepted) == 0 {
		w.line("static Map<String, dynamic> %s() => <String, dynamic>{};", method)
		return
	}

	w.line("static Map<String, dynamic> %s({", method)
	for _, f := range accepted {
		_, nullable := typegen.StripNullable(f.Type)
		switch {
		case f.Optional && nullable:
			w.unset = true
			w.line("Object? %s = _unset,", ids[f.Name])
		case f.Optional:
			w.line("%s %s,", w.d.Spelling(typegen.MakeNullable(f.Type)), ids[f.Name])
		default:
			w.line("required %s %s,", w.d.Spelling(f.Type), ids[f.Name])
		}
	}
	w.line("}) {")
	w.line("return {")
	for _, f := range accepted {
		id := ids[f.Name]
		inner, nullable := typegen.StripNullable(f.Type)
		switch {
		case f.Optional && nullable:
			cast := "(" + id + " as " + w.d.Spelling(f.Type) + ")"
			w.line("if (!identical(%s, _unset)) %s: %s,", id, str(f.Name), w.d.Encode(f.Type, cast))
		case f.Optional:
			w.line("if (%s != null) %s: %s,", id, str(f.Name), w.d.Encode(inner, id))
		default:
			w.line("%s: %s,", str(f.Name), w.d.Encode(f.Type, id))
		}
	}
	w.line("};")
	w.line("}")
}

func (w *writer) function(f *typegen.FunctionModel) {
	name := className(f.Schema, f.Name)

	var result string
	if len(f.ReturnColumns) > 0 {
		result = name + "Result"
		names := make([]string, len(f.ReturnColumns))
		types := make([]typegen.Type, len(f.ReturnColumns))
		for i, a := range f.ReturnColumns {
			names[i], types[i] = a.Name, a.Type
		}
		w.valueClass(result, fields(names, types), nil)
	}

	w.line("abstract class %sRpc {", name)
	w.line("static const functionName = %s;", str(f.Name))
	w.line("static const schemaName = %s;", str(f.Schema))

	for i, shape := range f.Shapes {
		method := "args"
		if i > 0 {
			method = fmt.Sprintf("args%d", i+1)
		}
		w.line("")
		w.args(method, shape)
	}

	switch {
	case result != "":
		w.line("")
		w.line("static List<%s> parse(dynamic json) => (json as List<dynamic>).map((v) => %s.fromJson(v as Map<String, dynamic>)).toList();", result, result)
	case f.Returns != nil:
		// A scalar or row function may return NULL; a set never does.
		returns := f.Returns
		if inner, _ := typegen.StripNullable(returns); !isList(inner) {
			returns = typegen.MakeNullable(returns)
		}
		w.line("")
		w.line("static %s parse(dynamic json) => %s;", w.d.Spelling(returns), w.d.Decode(returns, "json"))
	}
	w.line("}")
	w.line("")
}

func (w *writer) args(method string, shape typegen.ArgShape) {
	if len(shape) == 0 {
		w.line("static Map<String, dynamic> %s() => <String, dynamic>{};", method)
		return
	}

	names := make([]string, len(shape))
	for i, a := range shape {
		names[i] = a.Name
		if a.Name == "" {
			names[i] = "arg"
		}
	}
	ids := idents(names)

	w.line("static Map<String, dynamic> %s({", method)
	for i, a := range shape {
		if a.Optional {
			w.line("%s %s,", w.d.Spelling(typegen.MakeNullable(a.Type)), ids[i])
		} else {
			w.line("required %s %s,", w.d.Spelling(a.Type), ids[i])
		}
	}
	w.line("}) {")
	w.line("return {")
	for i, a := range shape {
		if a.Optional {
			inner, _ := typegen.StripNullable(a.Type)
			w.line("if (%s != null) %s: %s,", ids[i], str(a.Name), w.d.Encode(inner, ids[i]))
		} else {
			w.line("%s: %s,", str(a.Name), w.d.Encode(a.Type, ids[i]))
		}
	}
	w.line("};")
	w.line("}")
}

func isList(t typegen.Type) bool {
	_, ok := t.(typegen.List)
	return ok
}
