package typescript

import (
	"fmt"
	"strings"

	"github.com/koustreak/pgmeta/internal/typegen"
)

const jsonType = `export type Json =
| string
| number
| boolean
| null
| { [key: string]: Json | undefined }
| Json[]
`

const emptySection = "[_ in never]: never"

type writer struct {
	b strings.Builder
	d dialect
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// Emit renders m. Indentation is left to Format.
func (t *Target) Emit(m *typegen.Model) (string, error) {
	w := &writer{d: newDialect(m)}

	w.line("%s", jsonType)
	w.line("export type Database = {")
	if v := m.Options.PostgrestVersion; v != "" {
		w.line("__InternalSupabase: {")
		w.line("PostgrestVersion: %s", quote(v))
		w.line("}")
	}
	for _, s := range m.Schemas {
		w.schema(s)
	}
	w.line("}")
	w.line("")

	if m.Schema("public") != nil {
		w.helpers()
	}
	w.constants(m)
	return w.b.String(), nil
}

func (w *writer) schema(s *typegen.SchemaModel) {
	w.line("%s: {", key(s.Schema.Name))

	w.line("Tables: {")
	if len(s.Tables) == 0 {
		w.line(emptySection)
	}
	for _, r := range s.Tables {
		w.relation(r)
	}
	w.line("}")

	w.line("Views: {")
	if len(s.Views) == 0 {
		w.line(emptySection)
	}
	for _, r := range s.Views {
		w.relation(r)
	}
	w.line("}")

	w.line("Functions: {")
	if len(s.Functions) == 0 {
		w.line(emptySection)
	}
	for _, f := range s.Functions {
		w.function(f)
	}
	w.line("}")

	w.line("Enums: {")
	if len(s.Enums) == 0 {
		w.line(emptySection)
	}
	for _, e := range s.Enums {
		members := make([]string, len(e.Members))
		for i, v := range e.Members {
			members[i] = quote(v)
		}
		w.line("%s: %s", key(e.Name), strings.Join(members, " | "))
	}
	w.line("}")

	w.line("CompositeTypes: {")
	if len(s.Composites) == 0 {
		w.line(emptySection)
	}
	for _, c := range s.Composites {
		w.line("%s: {", key(c.Name))
		for _, a := range c.Attributes {
			w.line("%s: %s", key(a.Name), w.d.Spelling(a.Type))
		}
		w.line("}")
	}
	w.line("}")

	w.line("}")
}

func (w *writer) relation(r *typegen.RelationModel) {
	w.line("%s: {", key(r.Relation.Name))

	w.line("Row: {")
	for _, f := range r.Row {
		w.line("%s: %s", key(f.Name), w.d.Spelling(f.Type))
	}
	w.line("}")

	if r.Writable() {
		w.shape("Insert", r.Insert)
		w.shape("Update", r.Update)
	}

	if len(r.Relationships) == 0 {
		w.line("Relationships: []")
	} else {
		w.line("Relationships: [")
		for _, rel := range r.Relationships {
			w.line("{")
			w.line("foreignKeyName: %s", quote(rel.ForeignKeyName))
			w.line("columns: %s", tuple(rel.Columns))
			if rel.IsOneToOne != nil {
				w.line("isOneToOne: %t", *rel.IsOneToOne)
			}
			w.line("referencedRelation: %s", quote(rel.ReferencedRelation))
			w.line("referencedColumns: %s", tuple(rel.ReferencedColumns))
			w.line("},")
		}
		w.line("]")
	}

	w.line("}")
}

func (w *writer) shape(name string, fields []typegen.Field) {
	w.line("%s: {", name)
	for _, f := range fields {
		switch {
		case f.Never:
			w.line("%s?: never", key(f.Name))
		case f.Optional:
			w.line("%s?: %s", key(f.Name), w.d.Spelling(f.Type))
		default:
			w.line("%s: %s", key(f.Name), w.d.Spelling(f.Type))
		}
	}
	w.line("}")
}

func (w *writer) function(f *typegen.FunctionModel) {
	w.line("%s: {", key(f.Name))

	shapes := make([]string, 0, len(f.Shapes))
	for _, s := range f.Shapes {
		shapes = append(shapes, w.args(s))
	}
	w.line("Args: %s", strings.Join(dedupe(shapes), " | "))

	switch {
	case len(f.ReturnColumns) > 0:
		w.line("Returns: %s[]", w.object(f.ReturnColumns))
	case f.Returns == nil:
		w.line("Returns: undefined")
	default:
		w.line("Returns: %s", w.d.Spelling(f.Returns))
	}

	w.line("}")
}

func (w *writer) args(s typegen.ArgShape) string {
	if len(s) == 0 {
		return "Record<PropertyKey, never>"
	}
	return w.object(s)
}

// object spells an inline object type on a single line.
func (w *writer) object(args []typegen.Arg) string {
	props := make([]string, 0, len(args))
	for _, a := range args {
		name := key(a.Name)
		if a.Name == "" {
			name = `""`
		}
		if a.Optional {
			name += "?"
		}
		props = append(props, name+": "+w.d.Spelling(a.Type))
	}
	return "{ " + strings.Join(props, "; ") + " }"
}

func (w *writer) helpers() {
	w.line(`type DatabaseWithoutInternals = Omit<Database, "__InternalSupabase">`)
	w.line("")
	w.line(`type DefaultSchema = DatabaseWithoutInternals["public"]`)
	w.line("")
	w.line(`export type Tables<T extends keyof DefaultSchema["Tables"]> = DefaultSchema["Tables"][T]["Row"]`)
	w.line("")
	w.line(`export type TablesInsert<T extends keyof DefaultSchema["Tables"]> = DefaultSchema["Tables"][T] extends { Insert: infer I } ? I : never`)
	w.line("")
	w.line(`export type TablesUpdate<T extends keyof DefaultSchema["Tables"]> = DefaultSchema["Tables"][T] extends { Update: infer U } ? U : never`)
	w.line("")
	w.line(`export type Enums<T extends keyof DefaultSchema["Enums"]> = DefaultSchema["Enums"][T]`)
	w.line("")
	w.line(`export type CompositeTypes<T extends keyof DefaultSchema["CompositeTypes"]> = DefaultSchema["CompositeTypes"][T]`)
	w.line("")
}

// constants exposes enum members as runtime arrays.
func (w *writer) constants(m *typegen.Model) {
	w.line("export const Constants = {")
	for _, s := range m.Schemas {
		w.line("%s: {", key(s.Schema.Name))
		w.line("Enums: {")
		for _, e := range s.Enums {
			w.line("%s: %s,", key(e.Name), tuple(e.Members))
		}
		w.line("},")
		w.line("},")
	}
	w.line("} as const")
}

func tuple(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
