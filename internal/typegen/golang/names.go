package golang

import (
	"strconv"

	"github.com/koustreak/pgmeta/internal/typegen"
)

// typeName proposes the declaration name for schema.name. Only the public
// schema is left unprefixed.
func typeName(schema, name string) string {
	var id string
	if schema == "public" {
		id = typegen.PascalCase(name)
	} else {
		id = typegen.PascalCase(schema, name)
	}
	return exported(id, "T")
}

func exported(id, prefix string) string {
	if id == "" || typegen.StartsWithDigit(id) {
		return prefix + id
	}
	return id
}

// fieldNames assigns unique exported field names, suffixing collisions.
func fieldNames(names []string) []string {
	out := make([]string, len(names))
	used := map[string]bool{"TableName": true}
	for i, n := range names {
		base := exported(typegen.PascalCase(n), "F")
		id := base
		for k := 2; used[id]; k++ {
			id = base + strconv.Itoa(k)
		}
		used[id] = true
		out[i] = id
	}
	return out
}

func argsSuffix(i int) string {
	if i == 0 {
		return "Args"
	}
	return "Args" + strconv.Itoa(i+1)
}

// Kinds of declaration keys. Types share one namespace per schema in
// PostgreSQL; relations and functions each have their own.
const (
	keyType     = "type"
	keyRelation = "relation"
	keyFunction = "function"
)

func declKey(kind, schema, name string) string {
	return kind + ":" + schema + "." + name
}

// namer hands out package-level identifiers. A declaration claims a base
// name together with every identifier derived from it; when any of them is
// taken the base is suffixed with 2, 3 and so on.
type namer struct {
	used map[string]bool
}

func newNamer() *namer {
	return &namer{used: map[string]bool{
		"Relationship":     true,
		"PostgrestVersion": true,
		"boolPtr":          true,
	}}
}

func (n *namer) claim(base string, suffixes []string) string {
	id := base
	for k := 2; !n.free(id, suffixes); k++ {
		id = base + strconv.Itoa(k)
	}
	for _, s := range suffixes {
		n.used[id+s] = true
	}
	return id
}

func (n *namer) free(id string, suffixes []string) bool {
	for _, s := range suffixes {
		if n.used[id+s] {
			return false
		}
	}
	return true
}

// declNames assigns every declaration of m its base name, in emission order.
func declNames(m *typegen.Model) map[string]string {
	n := newNamer()
	names := make(map[string]string)

	for _, decl := range m.Declarations {
		switch decl := decl.(type) {
		case *typegen.Enum:
			suffixes := []string{""}
			if len(decl.Members) > 0 {
				suffixes = append(suffixes, "Values")
				suffixes = append(suffixes, fieldNames(decl.Members)...)
			}
			names[declKey(keyType, decl.Schema, decl.Name)] = n.claim(typeName(decl.Schema, decl.Name), suffixes)
		case *typegen.Composite:
			names[declKey(keyType, decl.Schema, decl.Name)] = n.claim(typeName(decl.Schema, decl.Name), []string{""})
		}
	}

	relation := func(r *typegen.RelationModel) {
		suffixes := []string{"", "Relationships"}
		if r.Writable() {
			suffixes = append(suffixes, "Insert", "Update")
		}
		rel := r.Relation
		names[declKey(keyRelation, rel.Schema, rel.Name)] = n.claim(typeName(rel.Schema, rel.Name), suffixes)
	}
	for _, s := range m.Schemas {
		for _, r := range s.Tables {
			relation(r)
		}
		for _, r := range s.Views {
			relation(r)
		}
		for _, fn := range s.Functions {
			var suffixes []string
			for i := range fn.Shapes {
				suffixes = append(suffixes, argsSuffix(i))
			}
			switch {
			case len(fn.ReturnColumns) > 0:
				suffixes = append(suffixes, "Row", "Returns")
			case fn.Returns != nil:
				suffixes = append(suffixes, "Returns")
			}
			names[declKey(keyFunction, fn.Schema, fn.Name)] = n.claim(typeName(fn.Schema, fn.Name), suffixes)
		}
	}
	return names
}
