// Package vars keeps custom property definitions of a stylesheet ("--name:
// value;" in the global "*" block) and substitutes var(--name) references.
//
// A Table is filled during compilation and is read only afterwards, so it may
// be shared by any number of goroutines. Definitions may refer to other
// definitions, references are followed when resolved (not when defined since
// declaration order is not guaranteed) and reference cycles are reported.
package vars

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	lex "github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"

	"wss/css"
)

var (
	// ErrMalformedReference is returned for var(...) forms other than var(--name).
	ErrMalformedReference = errors.New("malformed variable reference")
	// ErrInvalidName is returned when defining a name without leading "--".
	ErrInvalidName = errors.New("variable name must start with \"--\"")
)

// Table holds variable definitions of one scope.
type Table struct {
	defs  map[string]string
	names []string // in definition order
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{defs: make(map[string]string)}
}

// Define adds a variable. Value is kept unresolved.
func (t *Table) Define(name, value string) error {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "--") || len(name) == 2 {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if prev, exists := t.defs[name]; exists {
		return &DuplicateError{Name: name, Previous: prev, Value: value}
	}
	t.defs[name] = strings.TrimSpace(value)
	t.names = append(t.names, name)
	return nil
}

// Clone returns an independent copy of the table, used to seed several
// stylesheets with the same host palette.
func (t *Table) Clone() *Table {
	return &Table{defs: maps.Clone(t.defs), names: slices.Clone(t.names)}
}

// Lookup returns the value as defined, without resolving references.
func (t *Table) Lookup(name string) (string, bool) {
	v, ok := t.defs[name]
	return v, ok
}

// Len returns number of defined variables.
func (t *Table) Len() int {
	return len(t.names)
}

// Names returns variable names in definition order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Resolve returns the literal value of a variable following references.
func (t *Table) Resolve(name string) (string, error) {
	return t.resolve(name, nil)
}

// Value returns the resolved variable as a typed literal.
func (t *Table) Value(name string) (css.Value, error) {
	raw, err := t.Resolve(name)
	if err != nil {
		return css.Value{}, err
	}
	return css.ParseValue(raw), nil
}

// Substitute replaces every var(--name) reference in value with its literal.
// All problems found in value are reported together.
func (t *Table) Substitute(value string) (string, error) {
	return t.substitute(value, nil)
}

// HasReferences returns true if value refers to any variable. Text inside
// strings and url() targets never does.
func HasReferences(value string) bool {
	l := lex.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		switch tt {
		case lex.ErrorToken:
			return false
		case lex.FunctionToken:
			if isVar(data) {
				return true
			}
		}
	}
}

func isVar(fn []byte) bool {
	return strings.EqualFold(string(fn), "var(")
}

func (t *Table) resolve(name string, path []string) (string, error) {
	if i := slices.Index(path, name); i >= 0 {
		cycle := append(slices.Clone(path[i:]), name)
		return "", &CycleError{Path: cycle}
	}
	value, ok := t.defs[name]
	if !ok {
		return "", &UndefinedError{Name: name}
	}
	return t.substitute(value, append(slices.Clip(path), name))
}

func (t *Table) substitute(value string, path []string) (string, error) {
	if !HasReferences(value) {
		return value, nil
	}

	var (
		out  strings.Builder
		errs error
	)
	l := lex.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		if tt == lex.ErrorToken {
			break
		}
		if tt != lex.FunctionToken || !isVar(data) {
			out.Write(data)
			continue
		}
		name, ok := referenceName(l)
		if !ok {
			return "", fmt.Errorf("%w in %q", ErrMalformedReference, value)
		}
		literal, err := t.resolve(name, path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out.WriteString(literal)
	}
	if errs != nil {
		return "", errs
	}
	return out.String(), nil
}

// referenceName consumes arguments of var( up to the closing parenthesis.
// The only accepted form is a single custom property name.
func referenceName(l *lex.Lexer) (string, bool) {
	var name string
	for {
		tt, data := l.Next()
		switch tt {
		case lex.WhitespaceToken, lex.CommentToken:
		case lex.CustomPropertyNameToken:
			if name != "" {
				return "", false
			}
			name = string(data)
		case lex.RightParenthesisToken:
			return name, name != ""
		default:
			return "", false
		}
	}
}
