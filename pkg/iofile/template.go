package iofile

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// defaultWildcardRegex is used for wildcards without a constraint.
const defaultWildcardRegex = ".+"

// token is either literal text or a wildcard slot. A closed slot is kept
// verbatim by substitution and only reopened by Expand.
type token struct {
	text       string
	slot       bool
	constraint string
	closed     bool
}

type template []token

// parseTemplate splits a path template into literal and slot tokens.
// "{{" and "}}" are literal braces; a "{" that does not start a well formed
// slot is kept as literal text, so parsing never fails.
func parseTemplate(s string) template {
	var tmpl template
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tmpl = append(tmpl, token{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			name, constraint, n, ok := scanSlot(s[i:])
			if !ok {
				lit.WriteByte(c)
				i++
				continue
			}
			flush()
			tmpl = append(tmpl, token{text: name, slot: true, constraint: constraint})
			i += n
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return tmpl
}

// scanSlot reads "{name}" or "{name,constraint}" from the start of s. The
// constraint may itself contain balanced braces such as "\d{2,3}".
func scanSlot(s string) (name, constraint string, n int, ok bool) {
	i := skipSpaces(s, 1)
	start := i
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	if i == start {
		return "", "", 0, false
	}
	name = s[start:i]
	i = skipSpaces(s, i)
	if i >= len(s) {
		return "", "", 0, false
	}
	if s[i] == '}' {
		return name, "", i + 1, true
	}
	if s[i] != ',' {
		return "", "", 0, false
	}

	cstart := skipSpaces(s, i+1)
	end := closingBrace(s, cstart)
	if end < 0 {
		return "", "", 0, false
	}
	return name, strings.TrimSpace(s[cstart:end]), end + 1, true
}

// closingBrace returns the index of the "}" that closes a slot whose
// constraint starts at from, or -1.
func closingBrace(s string, from int) int {
	depth := 0
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// source renders the template the way it would be written in a rule.
func (t template) source() string {
	var b strings.Builder
	for _, tok := range t {
		if !tok.slot {
			b.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(tok.text))
			continue
		}
		b.WriteString(tok.slotText())
	}
	return b.String()
}

// path renders the template with literal braces unescaped.
func (t template) path() string {
	var b strings.Builder
	for _, tok := range t {
		if tok.slot {
			b.WriteString(tok.slotText())
		} else {
			b.WriteString(tok.text)
		}
	}
	return b.String()
}

func (tok token) slotText() string {
	if tok.constraint != "" {
		return "{" + tok.text + "," + tok.constraint + "}"
	}
	return "{" + tok.text + "}"
}

// openNames lists the names of open slots in order of first appearance.
func (t template) openNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, tok := range t {
		if tok.slot && !tok.closed && !seen[tok.text] {
			seen[tok.text] = true
			names = append(names, tok.text)
		}
	}
	return names
}

// regex builds an anchored expression with one named group per wildcard.
// Repeated wildcards must match the same text and use a back-reference.
func (t template) regex() string {
	var b strings.Builder
	b.WriteString(`\A`)
	seen := make(map[string]bool)
	for _, tok := range t {
		switch {
		case !tok.slot:
			b.WriteString(regexp2.Escape(tok.text))
		case tok.closed:
			b.WriteString(regexp2.Escape(tok.slotText()))
		case seen[tok.text]:
			b.WriteString(`\k<` + tok.text + `>`)
		default:
			seen[tok.text] = true
			constraint := tok.constraint
			if constraint == "" {
				constraint = defaultWildcardRegex
			}
			b.WriteString("(?<" + tok.text + ">" + constraint + ")")
		}
	}
	b.WriteString(`\z`)
	return b.String()
}

// compact merges adjacent literal tokens.
func (t template) compact() template {
	out := make(template, 0, len(t))
	for _, tok := range t {
		if n := len(out); n > 0 && !tok.slot && !out[n-1].slot {
			out[n-1].text += tok.text
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (t template) clone() template {
	out := make(template, len(t))
	copy(out, t)
	return out
}
