// Package rules compiles stylesheet text into an immutable, ordered rule set.
package rules

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/maruel/natural"

	"wss/css"
	"wss/selector"
	"wss/utils/debug"
	"wss/vars"
)

// namespace for content derived rule set identifiers.
var namespace = uuid.MustParse("6f9d0c0e-3b1a-5c47-9a53-3e0f7f2b8d41")

// Declaration is a compiled declaration with all variable references replaced.
type Declaration struct {
	Property  string
	Value     css.Value
	Important bool
	Source    string // value text before substitution
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value.Raw + " !important"
	}
	return d.Property + ": " + d.Value.Raw
}

// Rule is a single compiled selector with its declarations.
type Rule struct {
	Selector     *selector.Selector
	Specificity  selector.Specificity
	Declarations []Declaration
	Order        int // source order index, unique within rule set
	Block        int // rule block the rule came from
}

// Compare orders rules the way cascade applies them: lower specificity first,
// equal specificity by source order.
func (r *Rule) Compare(o *Rule) int {
	if c := r.Specificity.Compare(o.Specificity); c != 0 {
		return c
	}
	return cmp.Compare(r.Order, o.Order)
}

// RuleSet is a compiled stylesheet. It is immutable and safe for concurrent use.
type RuleSet struct {
	id       uuid.UUID
	rules    []*Rule            // source order
	ordered  map[string][]*Rule // by subcontrol, cascade order
	vars     *vars.Table
	depth    int
	warnings []string
}

func newRuleSet(rules []*Rule, tbl *vars.Table, warnings []string) *RuleSet {
	rs := &RuleSet{
		rules:    rules,
		ordered:  make(map[string][]*Rule),
		vars:     tbl,
		warnings: warnings,
	}

	for _, r := range rules {
		sub := r.Selector.Subcontrol()
		rs.ordered[sub] = append(rs.ordered[sub], r)

		switch d := r.Selector.AncestorDepth(); {
		case rs.depth == selector.Unbounded:
		case d == selector.Unbounded:
			rs.depth = selector.Unbounded
		default:
			rs.depth = max(rs.depth, d)
		}
	}
	for _, list := range rs.ordered {
		slices.SortStableFunc(list, (*Rule).Compare)
	}
	rs.id = uuid.NewSHA1(namespace, []byte(rs.canonical()))
	return rs
}

// ID identifies rule set content: compiling the same text with the same
// variables always produces the same ID.
func (rs *RuleSet) ID() uuid.UUID {
	return rs.id
}

// Rules returns rules in source order.
func (rs *RuleSet) Rules() []*Rule {
	return slices.Clone(rs.rules)
}

// Len returns number of compiled rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Variables returns variable table rules were compiled with.
func (rs *RuleSet) Variables() *vars.Table {
	return rs.vars
}

// Warnings returns unsupported constructs skipped by the parser.
func (rs *RuleSet) Warnings() []string {
	return slices.Clone(rs.warnings)
}

// AncestorDepth returns deepest ancestor level any rule may inspect,
// selector.Unbounded when some rule uses descendant combinator.
func (rs *RuleSet) AncestorDepth() int {
	return rs.depth
}

// Candidates returns rules addressing the subcontrol (empty for the widget
// itself) in cascade order. Returned slice must not be modified.
func (rs *RuleSet) Candidates(subcontrol string) []*Rule {
	return rs.ordered[strings.ToLower(subcontrol)]
}

// Subcontrols returns subcontrol names addressed by the rule set.
func (rs *RuleSet) Subcontrols() []string {
	var subs []string
	for s := range rs.ordered {
		if s != "" {
			subs = append(subs, s)
		}
	}
	sort.Sort(natural.StringSlice(subs))
	return subs
}

func (rs *RuleSet) canonical() string {
	var b strings.Builder
	for _, name := range rs.vars.Names() {
		v, _ := rs.vars.Lookup(name)
		fmt.Fprintf(&b, "%s=%s\n", name, v)
	}
	for _, r := range rs.rules {
		fmt.Fprintf(&b, "%d %s {", r.Order, r.Selector)
		for _, d := range r.Declarations {
			fmt.Fprintf(&b, "%s;", d)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// String returns readable dump of the rule set for inspection.
func (rs *RuleSet) String() string {
	if rs == nil {
		return "<nil RuleSet>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "RuleSet %s: %d rules, ancestor depth %d", rs.id, len(rs.rules), rs.depth)

	if rs.vars.Len() > 0 {
		tw.Section(1, "Variables", rs.vars.Len())
		names := rs.vars.Names()
		sort.Sort(natural.StringSlice(names))
		for _, name := range names {
			v, _ := rs.vars.Lookup(name)
			tw.TextBlock(2, name, v)
		}
	}

	subs := append([]string{""}, rs.Subcontrols()...)
	for _, sub := range subs {
		list := rs.ordered[sub]
		if len(list) == 0 {
			continue
		}
		if sub == "" {
			tw.Section(1, "Widget rules", len(list))
		} else {
			tw.Section(1, fmt.Sprintf("Subcontrol %q rules", sub), len(list))
		}
		for _, r := range list {
			tw.Line(2, "[%d] %s %s", r.Order, r.Selector, r.Specificity)
			for _, d := range r.Declarations {
				tw.Line(3, "%s", d)
			}
		}
	}

	for _, w := range rs.warnings {
		tw.Line(1, "Warning: %s", w)
	}
	return tw.String()
}
