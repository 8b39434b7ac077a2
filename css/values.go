package css

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var (
	lengthUnits = map[string]bool{
		"px": true, "pt": true, "pc": true, "em": true, "ex": true, "ch": true, "rem": true,
		"cm": true, "mm": true, "in": true, "vw": true, "vh": true,
	}
	durationUnits = map[string]bool{"s": true, "ms": true}
)

// ParseValue classifies literal value text. It never fails: anything not
// recognized as a single typed token is a keyword, a function or a list.
func ParseValue(raw string) Value {
	raw = strings.TrimSpace(raw)
	val := Value{Raw: raw}

	tokens := lexValue(raw)
	if len(tokens) == 0 {
		return val
	}

	if len(tokens) == 1 {
		t := tokens[0]
		data := string(t.Data)
		switch t.TokenType {
		case css.DimensionToken:
			val.Number, val.Unit = parseDimension(data)
			switch {
			case lengthUnits[val.Unit]:
				val.Kind = KindLength
			case durationUnits[val.Unit]:
				val.Kind = KindDuration
			default:
				val.Kind = KindNumber
			}
		case css.PercentageToken:
			val.Kind = KindPercentage
			val.Number, _ = strconv.ParseFloat(strings.TrimSuffix(data, "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Kind = KindNumber
			val.Number, _ = strconv.ParseFloat(data, 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(data)
			if c, ok := parseColor(val.Keyword); ok {
				val.Kind, val.Color = KindColor, c
			}
		case css.HashToken:
			val.Keyword = data
			if c, ok := parseColor(data); ok {
				val.Kind, val.Color = KindColor, c
			}
		case css.StringToken:
			val.Kind = KindString
			val.Keyword = unquote(data)
		case css.URLToken:
			val.Kind = KindUrl
			val.Keyword = urlTarget(data)
		default:
			val.Keyword = raw
		}
		return val
	}

	val.Keyword = raw
	if isSingleFunction(tokens) {
		val.Kind = KindFunction
		if c, ok := parseColor(raw); ok {
			val.Kind, val.Color = KindColor, c
		}
		return val
	}
	val.Kind = KindList
	return val
}

// lexValue returns non-whitespace tokens of the value.
func lexValue(raw string) []css.Token {
	var tokens []css.Token
	l := css.NewLexer(parse.NewInputString(raw))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return tokens
		case css.WhitespaceToken, css.CommentToken:
			continue
		}
		tokens = append(tokens, css.Token{TokenType: tt, Data: parse.Copy(data)})
	}
}

// isSingleFunction checks for "name( ... )" spanning all tokens.
func isSingleFunction(tokens []css.Token) bool {
	if tokens[0].TokenType != css.FunctionToken {
		return false
	}
	depth := 0
	for i, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth == 0 && i != len(tokens)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func parseColor(s string) (color.NRGBA, bool) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, true
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	end := numberEnd(s)
	if end == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:end], 64)
	return num, strings.ToLower(s[end:])
}

// numberEnd returns length of CSS number at the start of s. Exponent is part
// of the number only when digits follow, so "2em" keeps its unit.
func numberEnd(s string) int {
	digits := func(i int) int {
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
		return i
	}

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	i = digits(i)
	if i < len(s) && s[i] == '.' {
		if j := digits(i + 1); j > i+1 {
			i = j
		}
	}
	if i == start {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if k := digits(j); k > j {
			i = k
		}
	}
	return i
}

// urlTarget extracts target from url(...) token. Targets are opaque, loading
// them is up to the renderer.
func urlTarget(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "url("), ")")
	return unquote(strings.TrimSpace(s))
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
