package state

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wss/archive"
	"wss/config"
	"wss/rules"
	"wss/widget"
)

// ErrStrict is returned when stylesheet compiled with diagnostics in strict mode.
var ErrStrict = errors.New("stylesheet has diagnostics")

// StylesheetPath returns stylesheet to use: path when given, configured one otherwise.
func (e *LocalEnv) StylesheetPath(path string) (string, error) {
	if len(path) == 0 && e.Cfg != nil {
		path = e.Cfg.Engine.StylesheetPath
	}
	if len(path) == 0 {
		return "", errors.New("no stylesheet specified")
	}
	return path, nil
}

// LoadRuleSet reads and compiles stylesheet on top of the palette.
// Returned rule set is usable even when error is returned.
func (e *LocalEnv) LoadRuleSet(path string) (*rules.RuleSet, error) {
	path, err := e.StylesheetPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	e.Rpt.StoreData(config.EntryName("stylesheet", path), data)
	return e.CompileRuleSet(path, data)
}

// Compiled is a stylesheet from theme bundle.
type Compiled struct {
	Name  string
	Rules *rules.RuleSet
}

// LoadBundle compiles every stylesheet of zip theme bundle in archive order.
// Unreadable bundle is an error, in strict mode so are diagnostics of any of
// its stylesheets.
func (e *LocalEnv) LoadBundle(path string) ([]Compiled, error) {
	e.Rpt.Store(config.EntryName("bundle", path), path)

	var (
		out  []Compiled
		errs error
	)
	err := archive.Walk(path, archive.Stylesheets, func(name string, data []byte) error {
		rs, err := e.CompileRuleSet(path+"/"+name, data)
		errs = multierr.Append(errs, err)
		out = append(out, Compiled{Name: name, Rules: rs})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read theme bundle %s: %w", path, err)
	}
	if len(out) == 0 {
		e.Log.Warn("No stylesheets in theme bundle", zap.String("file", path))
	}
	return out, errs
}

// CompileRuleSet compiles stylesheet data logging every diagnostic, in strict
// mode having any makes CompileRuleSet fail. Rule set is always returned.
func (e *LocalEnv) CompileRuleSet(name string, data []byte) (*rules.RuleSet, error) {
	rs, err := rules.NewCompiler(e.Log).Compile(data, e.Palette, name)

	diags := rules.Diagnostics(err)
	for _, d := range diags {
		e.Log.Warn("Stylesheet diagnostic", zap.String("file", name), zap.Error(d))
	}
	for _, w := range rs.Warnings() {
		e.Log.Warn("Stylesheet warning", zap.String("file", name), zap.String("warning", w))
	}
	e.Log.Info("Stylesheet loaded",
		zap.String("file", name),
		zap.Int("rules", rs.Len()),
		zap.Int("variables", rs.Variables().Len()),
		zap.Int("diagnostics", len(diags)),
		zap.Stringer("id", rs.ID()))

	if len(diags) > 0 && e.strict() {
		return rs, multierr.Append(fmt.Errorf("%s: %w", name, ErrStrict), err)
	}
	return rs, nil
}

// LoadTree reads widget tree description.
func (e *LocalEnv) LoadTree(path string) (*widget.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read widget tree: %w", err)
	}
	e.Rpt.StoreData(config.EntryName("tree", path), data)

	tree, err := widget.LoadTree(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bad widget tree %s: %w", path, err)
	}
	e.Log.Debug("Widget tree loaded", zap.String("file", path), zap.Int("roots", len(tree.Roots)), zap.Int("widgets", len(tree.Nodes)))
	return tree, nil
}

func (e *LocalEnv) strict() bool {
	return e.Strict || (e.Cfg != nil && e.Cfg.Engine.Strict)
}
