// Package format pretty-prints generated TypeScript and Dart source.
//
// Indentation is recomputed from bracket depth, so emitters can write
// declarations without tracking indentation themselves. Unbalanced brackets
// and unterminated string literals are reported as errors: they mean an
// emitter produced invalid syntax.
package format

import (
	"fmt"
	"strings"
)

// Style describes the lexical conventions of one target language.
type Style struct {
	Indent string
	// Quotes lists the characters that open and close string literals.
	Quotes string
}

var (
	TypeScript = Style{Indent: "  ", Quotes: `"'` + "`"}
	Dart       = Style{Indent: "  ", Quotes: `"'`}
)

var pairs = map[rune]rune{'}': '{', ']': '[', ')': '('}

// SyntaxError reports where formatting gave up.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Source re-indents src according to s. Runs of blank lines collapse to one,
// trailing whitespace is removed and the result ends with a single newline.
func Source(src string, s Style) (string, error) {
	var (
		out          strings.Builder
		stack        []rune
		inComment    bool
		blank        bool
		wroteAnyLine bool
	)

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			blank = wroteAnyLine
			continue
		}

		depth := len(stack)
		lead := leadingClosers(line)
		if lead > depth {
			lead = depth
		}
		level := depth - lead
		if !inComment && isContinuation(line) {
			level++
		}
		if inComment {
			level = depth
		}

		var err error
		stack, inComment, err = scan(line, stack, inComment, s)
		if err != nil {
			return "", &SyntaxError{Line: lineNo, Msg: err.Error()}
		}

		if blank {
			out.WriteByte('\n')
			blank = false
		}
		out.WriteString(strings.Repeat(s.Indent, level))
		if strings.HasPrefix(line, "*") {
			// Doc comment bodies align under the opening "/**".
			out.WriteByte(' ')
		}
		out.WriteString(line)
		out.WriteByte('\n')
		wroteAnyLine = true
	}

	if inComment {
		return "", &SyntaxError{Line: strings.Count(src, "\n") + 1, Msg: "unterminated block comment"}
	}
	if len(stack) > 0 {
		return "", &SyntaxError{Line: strings.Count(src, "\n") + 1, Msg: fmt.Sprintf("unclosed %q", stack[len(stack)-1])}
	}
	return out.String(), nil
}

// scan walks one trimmed line and updates the bracket stack.
func scan(line string, stack []rune, inComment bool, s Style) ([]rune, bool, error) {
	runes := []rune(line)
	var quote rune
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch {
		case inComment:
			if c == '*' && next == '/' {
				inComment = false
				i++
			}
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '/' && next == '/':
			return stack, false, nil
		case c == '/' && next == '*':
			inComment = true
			i++
		case strings.ContainsRune(s.Quotes, c):
			quote = c
		case c == '{' || c == '[' || c == '(':
			stack = append(stack, c)
		case c == '}' || c == ']' || c == ')':
			if len(stack) == 0 {
				return nil, false, fmt.Errorf("unexpected %q", c)
			}
			if top := stack[len(stack)-1]; top != pairs[c] {
				return nil, false, fmt.Errorf("%q closes %q", c, top)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return nil, false, fmt.Errorf("unterminated string literal")
	}
	return stack, inComment, nil
}

func leadingClosers(line string) int {
	n := 0
	for _, c := range line {
		switch c {
		case '}', ']', ')':
			n++
		case ' ', ',', ';':
		default:
			return n
		}
	}
	return n
}

// isContinuation reports lines that continue the previous expression, such
// as the members of a multi-line union.
func isContinuation(line string) bool {
	return strings.HasPrefix(line, "| ") || strings.HasPrefix(line, "? ") ||
		(strings.HasPrefix(line, ": ") && !strings.HasPrefix(line, ":: "))
}
