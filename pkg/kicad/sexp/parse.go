package sexp

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// netlistLexer tokenizes parenthesized netlist text. Rule order matters:
// quoted strings must win over bare symbols.
var netlistLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Symbol", Pattern: `[^\s()"]+`},
})

// ParseError reports malformed wire-format text with its token position.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sexp: %d:%d: %s", e.Line, e.Col, e.Msg)
}

func errAt(pos lexer.Position, format string, args ...any) error {
	return &ParseError{Line: pos.Line, Col: pos.Column, Msg: fmt.Sprintf(format, args...)}
}

// Parse tokenizes and reconstructs a record tree from wire-format text. The
// result is a record holding one pair per top-level list; all scalars come
// back as Str. Unmatched parentheses, stray top-level atoms, and quoting
// errors are reported with line and column.
func Parse(text string) (*Record, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}

	root := NewRecord()
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return root, nil
		}
		switch tok.Type {
		case p.lparen:
			it, err := p.parseList(tok.Pos)
			if err != nil {
				return nil, err
			}
			pair, err := pairFromItems(it)
			if err != nil {
				return nil, err
			}
			root.Pairs = append(root.Pairs, pair)
		case p.rparen:
			return nil, errAt(tok.Pos, "unmatched ')'")
		default:
			return nil, errAt(tok.Pos, "expected '(', got %q", tok.Value)
		}
	}
}

type parser struct {
	lex        lexer.Lexer
	whitespace lexer.TokenType
	lparen     lexer.TokenType
	rparen     lexer.TokenType
	str        lexer.TokenType
}

func newParser(text string) (*parser, error) {
	lex, err := netlistLexer.Lex("", strings.NewReader(text))
	if err != nil {
		return nil, &ParseError{Line: 1, Col: 1, Msg: err.Error()}
	}
	syms := netlistLexer.Symbols()
	return &parser{
		lex:        lex,
		whitespace: syms["Whitespace"],
		lparen:     syms["LParen"],
		rparen:     syms["RParen"],
		str:        syms["String"],
	}, nil
}

// next returns the next non-whitespace token.
func (p *parser) next() (lexer.Token, error) {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return lexer.Token{}, lexError(err)
		}
		if tok.Type == p.whitespace {
			continue
		}
		return tok, nil
	}
}

func lexError(err error) error {
	var perr participleError
	if ok := asParticipleError(err, &perr); ok {
		pos := perr.Position()
		return &ParseError{Line: pos.Line, Col: pos.Column, Msg: perr.Message()}
	}
	return &ParseError{Line: 0, Col: 0, Msg: err.Error()}
}

// participleError is the position-carrying error interface participle's
// lexers return.
type participleError interface {
	error
	Message() string
	Position() lexer.Position
}

func asParticipleError(err error, target *participleError) bool {
	pe, ok := err.(participleError)
	if ok {
		*target = pe
	}
	return ok
}

// item is one parsed element: an atom or a nested list, with the position
// of its opening token for error reporting.
type item struct {
	list     bool
	atom     string
	quoted   bool
	children []item
	pos      lexer.Position
}

// parseList consumes elements until the matching ')'.
func (p *parser) parseList(open lexer.Position) (item, error) {
	out := item{list: true, pos: open}
	for {
		tok, err := p.next()
		if err != nil {
			return item{}, err
		}
		switch {
		case tok.EOF():
			return item{}, errAt(open, "unterminated list")
		case tok.Type == p.rparen:
			return out, nil
		case tok.Type == p.lparen:
			sub, err := p.parseList(tok.Pos)
			if err != nil {
				return item{}, err
			}
			out.children = append(out.children, sub)
		case tok.Type == p.str:
			out.children = append(out.children, item{
				atom:   unquote(tok.Value),
				quoted: true,
				pos:    tok.Pos,
			})
		default:
			out.children = append(out.children, item{atom: tok.Value, pos: tok.Pos})
		}
	}
}

func unquote(raw string) string {
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// pairFromItems converts a parsed list into a record pair: the leading
// symbol is the key; the remainder becomes a scalar, a nested record, or a
// mixed sequence.
func pairFromItems(it item) (Pair, error) {
	if len(it.children) == 0 {
		return Pair{}, errAt(it.pos, "empty list")
	}
	key := it.children[0]
	if key.list || key.quoted {
		return Pair{}, errAt(key.pos, "expected key symbol")
	}

	rest := it.children[1:]
	switch {
	case len(rest) == 0:
		return Pair{Key: key.atom}, nil
	case len(rest) == 1 && !rest[0].list:
		return Pair{Key: key.atom, Value: Str(rest[0].atom)}, nil
	}

	allLists := true
	for _, child := range rest {
		if !child.list {
			allLists = false
			break
		}
	}

	if allLists {
		rec := NewRecord()
		for _, child := range rest {
			pair, err := pairFromItems(child)
			if err != nil {
				return Pair{}, err
			}
			rec.Pairs = append(rec.Pairs, pair)
		}
		return Pair{Key: key.atom, Value: rec}, nil
	}

	var seq Seq
	for _, child := range rest {
		if !child.list {
			seq = append(seq, Str(child.atom))
			continue
		}
		pair, err := pairFromItems(child)
		if err != nil {
			return Pair{}, err
		}
		rec := NewRecord()
		rec.Pairs = append(rec.Pairs, pair)
		seq = append(seq, rec)
	}
	return Pair{Key: key.atom, Value: seq}, nil
}
