package sexp

import (
	"strconv"
	"strings"
)

// Gen renders a record tree as parenthesized text. Scalars become tokens,
// quoted when they contain whitespace, parentheses, quotes, or backslashes
// (or are empty); each pair becomes "(key children…)"; sibling pairs and
// sequence members are joined with single spaces. Output carries no
// newlines, so two structurally equal trees render byte-identically.
func Gen(n Node) string {
	var b strings.Builder
	gen(&b, n)
	return b.String()
}

func gen(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case Str:
		b.WriteString(atom(string(v)))
	case Int:
		b.WriteString(strconv.Itoa(int(v)))
	case Seq:
		first := true
		for _, child := range v {
			if child == nil {
				continue
			}
			if !first {
				b.WriteByte(' ')
			}
			first = false
			gen(b, child)
		}
	case *Record:
		for i, p := range v.Pairs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('(')
			b.WriteString(p.Key)
			if p.Value != nil {
				b.WriteByte(' ')
				gen(b, p.Value)
			}
			b.WriteByte(')')
		}
	}
}

func atom(s string) string {
	if !needsQuote(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// needsQuote must cover every character atom escapes, otherwise the
// predicate and the escaper disagree and backslashes leak out unquoted.
func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\r\n()\"\\")
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
