package rules

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wss/css"
	"wss/selector"
	"wss/vars"
)

// Compiler turns stylesheet text into rule sets. It keeps no state between
// calls and is safe for concurrent use.
type Compiler struct {
	log    *zap.Logger
	parser *css.Parser
}

// NewCompiler creates a new rule compiler.
func NewCompiler(log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		log:    log.Named("compiler"),
		parser: css.NewParser(log),
	}
}

// Compile compiles stylesheet with variables of the global "*" block defined
// on top of palette (which may be nil and is never modified).
//
// Compilation does not stop at the first problem. Returned rule set is never
// nil and contains every rule which compiled cleanly, error (if not nil)
// aggregates all diagnostics, use Diagnostics to list them. A rule block with
// a bad declaration or an unresolvable reference is rejected as a whole, a
// bad selector rejects only its own rule.
func (c *Compiler) Compile(data []byte, palette *vars.Table, source ...string) (*RuleSet, error) {
	sheet, errs := c.parser.Parse(data, source...)

	tbl := vars.NewTable()
	if palette != nil {
		tbl = palette.Clone()
	}

	// variables first, references may point forward
	defined := make(map[string]int)
	for _, b := range sheet.Blocks {
		for _, d := range b.Declarations {
			if !d.Custom {
				continue
			}
			if !b.IsGlobal() {
				errs = multierr.Append(errs, &RuleError{Block: b.Index, Selector: b.Prelude,
					Err: &css.PropertySyntaxError{Property: d.Property, Msg: "custom property outside of global \"*\" block"}})
				continue
			}
			if err := tbl.Define(d.Property, d.Raw); err != nil {
				errs = multierr.Append(errs, &RuleError{Block: b.Index, Selector: b.Prelude, Err: err})
				continue
			}
			defined[d.Property] = b.Index
		}
	}
	for _, name := range tbl.Names() {
		block, ok := defined[name]
		if !ok {
			// palette entries are checked by whoever built the palette
			continue
		}
		if _, err := tbl.Resolve(name); err != nil {
			errs = multierr.Append(errs, wrap(block, "*", err))
		}
	}

	var (
		compiled []*Rule
		order    int
	)
	for _, b := range sheet.Blocks {
		decls, err := compileDeclarations(b.Declarations, tbl)
		if err != nil {
			errs = multierr.Append(errs, wrap(b.Index, b.Prelude, err))
		}
		for _, text := range b.Selectors {
			order++
			sel, serr := selector.Parse(text)
			if serr != nil {
				errs = multierr.Append(errs, &RuleError{Block: b.Index, Selector: text, Err: serr})
				continue
			}
			if err != nil || len(decls) == 0 {
				continue
			}
			compiled = append(compiled, &Rule{
				Selector:     sel,
				Specificity:  sel.Specificity(),
				Declarations: decls,
				Order:        order,
				Block:        b.Index,
			})
		}
	}

	rs := newRuleSet(compiled, tbl, sheet.Warnings)
	c.log.Debug("Stylesheet compiled",
		zap.Int("bytes", len(data)),
		zap.Int("blocks", len(sheet.Blocks)),
		zap.Int("rules", rs.Len()),
		zap.Int("variables", tbl.Len()),
		zap.Int("diagnostics", len(multierr.Errors(errs))),
		zap.Stringer("id", rs.ID()))
	return rs, errs
}

// CompileInline compiles widget level declaration text against variables of
// the rule set. Valid declarations are returned even when error is not nil.
func (c *Compiler) CompileInline(text string, tbl *vars.Table) ([]Declaration, error) {
	parsed, errs := c.parser.ParseInline([]byte(text))
	if tbl == nil {
		tbl = vars.NewTable()
	}

	var out []Declaration
	for _, d := range parsed {
		if d.Custom {
			errs = multierr.Append(errs, &css.PropertySyntaxError{Property: d.Property, Msg: "custom property outside of global \"*\" block"})
			continue
		}
		decl, err := compileDeclaration(d, tbl)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, decl)
	}
	return out, errs
}

// Compile compiles stylesheet text without palette and logging.
func Compile(text string) (*RuleSet, error) {
	return NewCompiler(nil).Compile([]byte(text), nil)
}

// compileDeclarations compiles non custom declarations of a block. Any error
// fails the whole block.
func compileDeclarations(decls []css.Declaration, tbl *vars.Table) ([]Declaration, error) {
	var (
		out  []Declaration
		errs error
	)
	for _, d := range decls {
		if d.Custom {
			continue
		}
		decl, err := compileDeclaration(d, tbl)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, decl)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func compileDeclaration(d css.Declaration, tbl *vars.Table) (Declaration, error) {
	text, err := tbl.Substitute(d.Raw)
	if err != nil {
		var errs error
		for _, e := range multierr.Errors(err) {
			if errors.Is(e, vars.ErrMalformedReference) {
				e = &css.PropertySyntaxError{Property: d.Property, Msg: e.Error()}
			} else {
				e = fmt.Errorf("property %s: %w", d.Property, e)
			}
			errs = multierr.Append(errs, e)
		}
		return Declaration{}, errs
	}
	return Declaration{
		Property:  d.Property,
		Value:     css.ParseValue(text),
		Important: d.Important,
		Source:    d.Raw,
	}, nil
}

// wrap produces one RuleError per aggregated problem.
func wrap(block int, sel string, err error) error {
	var out error
	for _, e := range multierr.Errors(err) {
		out = multierr.Append(out, &RuleError{Block: block, Selector: sel, Err: e})
	}
	return out
}
