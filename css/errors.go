package css

import (
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
)

// PropertySyntaxError reports a malformed declaration.
type PropertySyntaxError struct {
	Property string // may be empty when the tokenizer could not get that far
	Line     int    // 1-based, 0 when unknown
	Column   int    // 1-based, 0 when unknown
	Msg      string
}

func (e *PropertySyntaxError) Error() string {
	var b strings.Builder
	b.WriteString("property syntax error")
	if e.Property != "" {
		fmt.Fprintf(&b, " in %q", e.Property)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

// fromParseError converts tokenizer error into PropertySyntaxError keeping position.
func fromParseError(err error) *PropertySyntaxError {
	pe := &PropertySyntaxError{Msg: err.Error()}
	var perr *parse.Error
	if errors.As(err, &perr) {
		pe.Line, pe.Column, pe.Msg = perr.Line, perr.Column, perr.Message
	}
	return pe
}
