package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Parser splits stylesheet text into rule blocks and declarations.
// Selectors and values are kept as text, interpreting them is left to
// packages selector and vars.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new stylesheet parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// session keeps per call state, Parser itself is safe for concurrent use.
type session struct {
	in        *parse.Input
	gp        *css.Parser
	errs      error
	truncated bool
}

func (s *session) fail(err error) {
	s.errs = multierr.Append(s.errs, err)
}

// closed checks end of block, grammar parser closes blocks left open at the
// end of input and those are reported once.
func (s *session) closed(tt css.TokenType) {
	if tt != css.ErrorToken || s.truncated {
		return
	}
	s.truncated = true
	s.fail(&PropertySyntaxError{Msg: "unterminated rule block at end of stylesheet"})
}

// done reports whether grammar error terminates parsing. Recoverable syntax
// errors are collected and parsing continues.
func (s *session) done() bool {
	err := s.gp.Err()
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.fail(fromParseError(err))
	return errors.Is(s.in.Err(), io.EOF)
}

// Parse parses stylesheet text. It never stops at the first problem: returned
// Stylesheet contains everything that could be parsed and error (if not nil)
// aggregates every PropertySyntaxError encountered.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	sheet := &Stylesheet{
		Blocks:   make([]Block, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing stylesheet", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	in := parse.NewInput(bytes.NewReader(data))
	s := &session{in: in, gp: css.NewParser(in, false)}

	for {
		gt, tt, data := s.gp.Next()

		switch gt {
		case css.ErrorGrammar:
			if s.done() {
				return sheet, s.errs
			}

		case css.BeginAtRuleGrammar:
			atRule := string(data)
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+atRule)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			p.skipBlock(s)

		case css.AtRuleGrammar:
			atRule := string(data)
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+atRule)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.BeginRulesetGrammar:
			block := Block{Index: len(sheet.Blocks)}
			block.Prelude, block.Selectors = splitSelectors(tt, data, s.gp.Values())
			block.Declarations = p.parseDeclarations(s, sheet)
			sheet.Blocks = append(sheet.Blocks, block)

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			s.fail(&PropertySyntaxError{Property: string(data), Msg: "declaration outside of rule block"})
		}
	}
}

// ParseInline parses declarations without selector and braces, the way
// widget level stylesheets are set: "color: red; font-size: 14px;".
func (p *Parser) ParseInline(data []byte) ([]Declaration, error) {
	in := parse.NewInput(bytes.NewReader(data))
	s := &session{in: in, gp: css.NewParser(in, true)}

	var decls []Declaration
	for {
		gt, _, data := s.gp.Next()

		switch gt {
		case css.ErrorGrammar:
			if s.done() {
				return decls, s.errs
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d, err := makeDeclaration(gt, string(data), s.gp.Values())
			if err != nil {
				s.fail(err)
				continue
			}
			decls = append(decls, d)
		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			s.fail(&PropertySyntaxError{Msg: "rule blocks are not allowed in inline declarations"})
			p.skipBlock(s)
		}
	}
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(s *session, sheet *Stylesheet) []Declaration {
	decls := make([]Declaration, 0)

	for {
		gt, tt, data := s.gp.Next()

		switch gt {
		case css.ErrorGrammar:
			if s.done() {
				return decls
			}

		case css.EndRulesetGrammar:
			s.closed(tt)
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d, err := makeDeclaration(gt, string(data), s.gp.Values())
			if err != nil {
				s.fail(err)
				continue
			}
			decls = append(decls, d)

		case css.BeginRulesetGrammar:
			sheet.Warnings = append(sheet.Warnings, "nested rule block skipped")
			p.log.Debug("Skipping nested rule block")
			p.skipBlock(s)
		}
	}
}

// skipBlock skips tokens until the matching end of a block.
func (p *Parser) skipBlock(s *session) {
	depth := 1
	for depth > 0 {
		gt, tt, _ := s.gp.Next()
		switch gt {
		case css.ErrorGrammar:
			if s.done() {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			s.closed(tt)
			depth--
		}
	}
}

func makeDeclaration(gt css.GrammarType, name string, values []css.Token) (Declaration, error) {
	d := Declaration{Property: name}

	if gt == css.CustomPropertyGrammar {
		d.Custom = true
		var sb strings.Builder
		for _, t := range values {
			sb.Write(t.Data)
		}
		d.Raw, d.Important = cutImportant(collapseSpaces(sb.String()))
	} else {
		d.Property = strings.ToLower(name)
		d.Raw, d.Important = cutImportant(joinTokens(values))
	}

	if d.Raw == "" {
		return d, &PropertySyntaxError{Property: d.Property, Msg: "empty value"}
	}
	return d, nil
}

// joinTokens builds value text collapsing whitespace runs to a single space.
func joinTokens(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			// Add space between non-whitespace tokens
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cutImportant strips trailing "!important" marker ("! important" is legal too).
func cutImportant(raw string) (string, bool) {
	const marker = "important"
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < len(marker) || !strings.EqualFold(trimmed[len(trimmed)-len(marker):], marker) {
		return trimmed, false
	}
	rest := strings.TrimSpace(trimmed[:len(trimmed)-len(marker)])
	if !strings.HasSuffix(rest, "!") {
		return trimmed, false
	}
	return strings.TrimSpace(strings.TrimSuffix(rest, "!")), true
}

// splitSelectors extracts selector texts from prelude tokens splitting on top
// level commas only, so commas inside attribute values survive. Empty items of
// a list are kept for the selector parser to reject.
func splitSelectors(tt css.TokenType, data []byte, values []css.Token) (string, []string) {
	tokens := make([]css.Token, 0, len(values)+1)
	tokens = append(tokens, css.Token{TokenType: tt, Data: data})
	tokens = append(tokens, values...)

	var (
		selectors []string
		prelude   strings.Builder
		current   strings.Builder
		depth     int
		list      bool
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" || list {
			selectors = append(selectors, s)
		}
		current.Reset()
	}
	for _, t := range tokens {
		prelude.Write(t.Data)
		switch t.TokenType {
		case css.LeftBracketToken, css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightBracketToken, css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				list = true
				flush()
				continue
			}
		}
		current.Write(t.Data)
	}
	flush()
	return collapseSpaces(prelude.String()), selectors
}
