package typegen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// PascalCase turns a catalog name such as "order_items" into "OrderItems".
// Characters that cannot appear in an identifier are dropped.
func PascalCase(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(inflect.Camelize(identWords(p)))
	}
	return b.String()
}

// CamelCase turns "order_items" into "orderItems".
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	r := []rune(p)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// identWords lowercases shouting names ("IN_PROGRESS") so casing splits on
// underscores instead of on every capital, and turns every character that
// cannot appear in an identifier into a word separator.
func identWords(s string) string {
	if strings.ToUpper(s) == s {
		s = strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
}

// StartsWithDigit reports whether s cannot begin an identifier as is.
func StartsWithDigit(s string) bool {
	return s != "" && unicode.IsDigit([]rune(s)[0])
}
