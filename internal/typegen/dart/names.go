package dart

import (
	"strconv"
	"strings"

	"github.com/koustreak/pgmeta/internal/typegen"
)

var keywords = map[string]bool{
	"assert": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "default": true, "do": true, "else": true,
	"enum": true, "extends": true, "false": true, "final": true, "finally": true,
	"for": true, "if": true, "in": true, "is": true, "new": true, "null": true,
	"rethrow": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "var": true, "void": true,
	"while": true, "with": true,
}

// classMembers are the members every generated class already defines.
var classMembers = map[string]bool{
	"hashCode": true, "runtimeType": true, "toString": true, "noSuchMethod": true,
	"toJson": true, "fromJson": true, "copyWith": true,
	"insert": true, "update": true, "relationships": true,
	"tableName": true, "schemaName": true, "functionName": true,
}

// enumMembers are the members a Dart enum inherits or is generated with.
var enumMembers = map[string]bool{
	"hashCode": true, "runtimeType": true, "toString": true, "noSuchMethod": true,
	"toJson": true, "fromJson": true,
	"index": true, "name": true, "value": true, "values": true,
}

// ident turns a catalog name into a lowerCamel Dart identifier that does not
// clash with a class member.
func ident(name string) string {
	return identAvoiding(name, classMembers)
}

// enumIdent is ident for enum values.
func enumIdent(name string) string {
	return identAvoiding(name, enumMembers)
}

func identAvoiding(name string, members map[string]bool) string {
	id := typegen.CamelCase(name)
	switch {
	case id == "":
		id = "field"
	case typegen.StartsWithDigit(id):
		id = "v" + id
	}
	if keywords[id] || members[id] {
		id += "_"
	}
	return id
}

// className names the declaration for schema.name. Only the public schema
// is left unprefixed.
func className(schema, name string) string {
	var id string
	if schema == "public" {
		id = typegen.PascalCase(name)
	} else {
		id = typegen.PascalCase(schema, name)
	}
	if id == "" || typegen.StartsWithDigit(id) {
		id = "T" + id
	}
	return id
}

// idents assigns unique field identifiers to names, suffixing collisions.
func idents(names []string) []string {
	return uniqueIdents(names, ident)
}

func uniqueIdents(names []string, ident func(string) string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		base := ident(n)
		id := base
		for k := 2; used[id]; k++ {
			id = base + strconv.Itoa(k)
		}
		used[id] = true
		out[i] = id
	}
	return out
}

// str produces a single-quoted Dart string literal.
func str(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\', '\'', '$':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func strList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = str(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
