package selector

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/text/unicode/norm"
)

type token struct {
	tt   css.TokenType
	data string
	pos  int
}

type parser struct {
	src  string
	toks []token
	i    int
}

// Parse parses a single selector (no commas).
func Parse(s string) (*Selector, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return nil, &SyntaxError{Selector: s, Msg: "empty selector"}
	}

	p := &parser{src: src}
	if err := p.tokenize(); err != nil {
		return nil, err
	}

	sel := &Selector{Raw: src}
	comb := CombinatorNone
	for {
		start := p.peek()
		seg, err := p.compound()
		if err != nil {
			return nil, err
		}
		if len(sel.Segments) > 0 && sel.Segments[len(sel.Segments)-1].Subcontrol != "" {
			return nil, p.errorAt(start, "subcontrol is only allowed in the last segment")
		}
		seg.Combinator = comb
		sel.Segments = append(sel.Segments, seg)

		spaced := p.skipSpace()
		t := p.peek()
		switch {
		case t.tt == css.ErrorToken:
			return sel, nil
		case t.tt == css.DelimToken && t.data == ">":
			p.next()
			p.skipSpace()
			if p.peek().tt == css.ErrorToken {
				return nil, p.errorAt(p.peek(), "missing selector after '>'")
			}
			comb = CombinatorChild
		case t.tt == css.CommaToken:
			return nil, p.errorAt(t, "selector lists are not allowed here")
		case spaced:
			comb = CombinatorDescendant
		default:
			return nil, p.errorAt(t, "unexpected token")
		}
	}
}

// MustParse is like Parse but panics on error. Intended for tests and
// statically known selectors.
func MustParse(s string) *Selector {
	sel, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func (p *parser) tokenize() error {
	l := css.NewLexer(parse.NewInputString(p.src))
	pos := 0
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return &SyntaxError{Selector: p.src, Pos: pos, Msg: err.Error()}
			}
			return nil
		case css.CommentToken:
			pos += len(data)
			continue
		case css.BadStringToken:
			return &SyntaxError{Selector: p.src, Token: string(data), Pos: pos, Msg: "unterminated string"}
		}
		p.toks = append(p.toks, token{tt: tt, data: string(data), pos: pos})
		pos += len(data)
	}
}

func (p *parser) peek() token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	return token{tt: css.ErrorToken, pos: len(p.src)}
}

func (p *parser) next() token {
	t := p.peek()
	if p.i < len(p.toks) {
		p.i++
	}
	return t
}

func (p *parser) skipSpace() bool {
	skipped := false
	for p.peek().tt == css.WhitespaceToken {
		p.next()
		skipped = true
	}
	return skipped
}

func (p *parser) errorAt(t token, msg string) *SyntaxError {
	return &SyntaxError{Selector: p.src, Token: t.data, Pos: t.pos, Msg: msg}
}

func (p *parser) ident(what string) (string, error) {
	t := p.next()
	if t.tt != css.IdentToken {
		return "", p.errorAt(t, "expected "+what)
	}
	return t.data, nil
}

func (p *parser) compound() (Segment, error) {
	var seg Segment
	parts := 0

	t := p.peek()
	switch {
	case t.tt == css.IdentToken:
		p.next()
		seg.Type = t.data
		parts++
	case t.tt == css.DelimToken && t.data == "*":
		p.next()
		parts++
	case t.tt == css.DelimToken && t.data == ".":
		p.next()
		name, err := p.ident("type name after '.'")
		if err != nil {
			return seg, err
		}
		seg.Type, seg.Exact = name, true
		parts++
	}

	for {
		t := p.peek()
		switch t.tt {
		case css.HashToken:
			p.next()
			if seg.Name != "" {
				return seg, p.errorAt(t, "object name given twice")
			}
			seg.Name = strings.TrimPrefix(t.data, "#")
		case css.LeftBracketToken:
			attr, err := p.attr()
			if err != nil {
				return seg, err
			}
			seg.Attrs = append(seg.Attrs, attr)
		case css.ColonToken:
			p.next()
			if p.peek().tt == css.ColonToken {
				p.next()
				sub, err := p.ident("subcontrol name")
				if err != nil {
					return seg, err
				}
				if seg.Subcontrol != "" {
					return seg, p.errorAt(t, "only one subcontrol is allowed")
				}
				seg.Subcontrol = strings.ToLower(sub)
				break
			}
			st, err := p.state()
			if err != nil {
				return seg, err
			}
			seg.States = append(seg.States, st)
		default:
			if parts == 0 {
				return seg, p.errorAt(t, "expected type, '*', '#name', '[' or ':'")
			}
			return seg, nil
		}
		parts++
	}
}

func (p *parser) state() (State, error) {
	var st State
	t := p.peek()
	if t.tt == css.DelimToken && t.data == "!" {
		p.next()
		st.Negated = true
		t = p.peek()
	}
	switch t.tt {
	case css.IdentToken:
		p.next()
		st.Name = strings.ToLower(t.data)
		return st, nil
	case css.FunctionToken:
		return st, p.errorAt(t, "functional pseudo-classes are not supported")
	}
	return st, p.errorAt(t, "expected pseudo-state name")
}

func (p *parser) attr() (Attr, error) {
	p.next() // [
	p.skipSpace()
	name, err := p.ident("attribute name")
	if err != nil {
		return Attr{}, err
	}
	p.skipSpace()

	op := p.next()
	switch op.tt {
	case css.DelimToken:
		if op.data != "=" {
			return Attr{}, p.errorAt(op, "expected '='")
		}
	case css.IncludeMatchToken, css.DashMatchToken, css.PrefixMatchToken,
		css.SuffixMatchToken, css.SubstringMatchToken:
		return Attr{}, p.errorAt(op, "only exact attribute match is supported")
	case css.RightBracketToken:
		return Attr{}, p.errorAt(op, "attribute predicate requires a value")
	default:
		return Attr{}, p.errorAt(op, "expected '='")
	}
	p.skipSpace()

	var value string
	switch v := p.next(); v.tt {
	case css.StringToken:
		value = unquote(v.data)
	case css.IdentToken, css.NumberToken:
		value = v.data
	default:
		return Attr{}, p.errorAt(v, "expected attribute value")
	}
	p.skipSpace()

	if t := p.next(); t.tt != css.RightBracketToken {
		return Attr{}, p.errorAt(t, "expected ']'")
	}
	return Attr{Name: name, Value: norm.NFC.String(value)}, nil
}

// unquote strips quotes and resolves simple escapes of a string token.
func unquote(s string) string {
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		j := i
		for j < len(s) && j-i < 6 && isHex(s[j]) {
			j++
		}
		if j == i {
			// escaped newline continues the string
			if s[i] != '\n' {
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteRune(hexRune(s[i:j]))
		// single whitespace terminates hex escape
		if strings.HasPrefix(s[j:], "\r\n") {
			j += 2
		} else if j < len(s) && strings.IndexByte(" \t\n\r\f", s[j]) >= 0 {
			j++
		}
		i = j - 1
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func hexRune(h string) rune {
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil || v == 0 || v > unicode.MaxRune || 0xD800 <= v && v <= 0xDFFF {
		return unicode.ReplacementChar
	}
	return rune(v)
}
