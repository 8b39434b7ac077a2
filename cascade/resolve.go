// Package cascade computes resolved styles of widget nodes from a compiled
// rule set.
//
// Matching rules are applied in cascade order (specificity, then source
// order, later wins) in four passes: normal rule declarations, normal inline
// declarations of the widget, important rule declarations and important
// inline declarations. Resolution never fails, a node no rule matches gets an
// empty style.
package cascade

import (
	"wss/css"
	"wss/rules"
	"wss/widget"
)

// Resolve computes style of the node without caching. Inline declarations of
// the node are compiled on every call, use Engine to avoid that.
func Resolve(rs *rules.RuleSet, n *widget.Node) *Style {
	var inline []rules.Declaration
	if n != nil && n.Inline != "" && n.Subcontrol == "" {
		inline, _ = rules.NewCompiler(nil).CompileInline(n.Inline, rs.Variables())
	}
	return compute(rs, n, inline)
}

// Matching returns rules matching the node in the order they are applied.
func Matching(rs *rules.RuleSet, n *widget.Node) []*rules.Rule {
	if n == nil {
		return nil
	}
	var matched []*rules.Rule
	for _, r := range rs.Candidates(n.Subcontrol) {
		if r.Selector.Matches(n) {
			matched = append(matched, r)
		}
	}
	return matched
}

func compute(rs *rules.RuleSet, n *widget.Node, inline []rules.Declaration) *Style {
	matched := Matching(rs, n)
	if len(matched) == 0 && len(inline) == 0 {
		return empty
	}

	props := make(map[string]css.Value)
	merge := func(decls []rules.Declaration, important bool) {
		for _, d := range decls {
			if d.Important == important {
				props[d.Property] = d.Value
			}
		}
	}
	for _, important := range []bool{false, true} {
		for _, r := range matched {
			merge(r.Declarations, important)
		}
		merge(inline, important)
	}
	return &Style{props: props}
}
