// Package selector parses widget stylesheet selectors and matches them
// against widget node descriptors.
//
// Supported grammar, segments separated by whitespace (descendant) or ">"
// (child):
//
//	Type | * | .Type      type, any type, exact type without subclasses
//	#name                 object name
//	[attr="value"]        exact attribute value
//	:state  :!state       active and inactive pseudo-state, all must hold
//	::sub                 subcontrol, last segment only
//
// Selector is immutable after parsing and safe for concurrent use.
package selector

import (
	"cmp"
	"fmt"
	"strings"
	"unicode"

	"wss/widget"
)

//go:generate go tool go-enum --marshal --names

// Combinator joins a segment to the one before it.
// ENUM(none, descendant, child)
type Combinator int

// Unbounded is returned by AncestorDepth when a selector may look at any ancestor.
const Unbounded = -1

// Attr is an attribute predicate, value is in NFC normal form.
type Attr struct {
	Name  string
	Value string
}

// State is a pseudo-state predicate.
type State struct {
	Name    string // lower case
	Negated bool   // ":!state" matches when state is not active
}

// Segment is a compound selector: predicates on a single node.
type Segment struct {
	Type       string // empty matches any type
	Exact      bool   // ".Type" form, subclasses do not match
	Name       string
	Attrs      []Attr
	States     []State
	Subcontrol string
	Combinator Combinator // relation to previous segment, CombinatorNone for the first one
}

// Selector is a parsed selector.
type Selector struct {
	Raw      string
	Segments []Segment // left to right, last one is the subject
}

// Specificity ranks selectors: object names, then types with pseudo-states
// and attributes, then subcontrols.
type Specificity [3]int

// Compare returns -1, 0 or +1.
func (s Specificity) Compare(o Specificity) int {
	for i := range s {
		if c := cmp.Compare(s[i], o[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Less returns true if s is less specific than o.
func (s Specificity) Less(o Specificity) bool {
	return s.Compare(o) < 0
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s[0], s[1], s[2])
}

// Specificity computes selector specificity.
func (s *Selector) Specificity() Specificity {
	var spec Specificity
	for _, seg := range s.Segments {
		if seg.Name != "" {
			spec[0]++
		}
		if seg.Type != "" {
			spec[1]++
		}
		spec[1] += len(seg.States) + len(seg.Attrs)
		if seg.Subcontrol != "" {
			spec[2]++
		}
	}
	return spec
}

// Subcontrol returns subcontrol the selector addresses, empty for widgets.
func (s *Selector) Subcontrol() string {
	return s.Segments[len(s.Segments)-1].Subcontrol
}

// AncestorDepth returns how many ancestor levels matching may inspect:
// 0 when only the node itself is looked at, Unbounded when a descendant
// combinator is present.
func (s *Selector) AncestorDepth() int {
	for _, seg := range s.Segments[1:] {
		if seg.Combinator == CombinatorDescendant {
			return Unbounded
		}
	}
	return len(s.Segments) - 1
}

// Matches returns true if node satisfies the selector. Subcontrol of the node
// must be exactly the one selector names: widget selectors never match
// subcontrol queries and the other way around.
func (s *Selector) Matches(n *widget.Node) bool {
	if n == nil || !strings.EqualFold(n.Subcontrol, s.Subcontrol()) {
		return false
	}
	return s.matchAt(len(s.Segments)-1, n)
}

// matchAt matches segment i against n and the rest of the selector against
// ancestors of n, backtracking over descendant combinators.
func (s *Selector) matchAt(i int, n *widget.Node) bool {
	seg := &s.Segments[i]
	if !seg.matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	switch seg.Combinator {
	case CombinatorChild:
		return n.Parent != nil && s.matchAt(i-1, n.Parent)
	default:
		for p := n.Parent; p != nil; p = p.Parent {
			if s.matchAt(i-1, p) {
				return true
			}
		}
		return false
	}
}

func (seg *Segment) matches(n *widget.Node) bool {
	if seg.Type != "" {
		if seg.Exact {
			if n.Type != seg.Type {
				return false
			}
		} else if !n.IsA(seg.Type) {
			return false
		}
	}
	if seg.Name != "" && n.Name != seg.Name {
		return false
	}
	for _, a := range seg.Attrs {
		if v, ok := n.Attr(a.Name); !ok || v != a.Value {
			return false
		}
	}
	for _, st := range seg.States {
		if n.HasState(st.Name) == st.Negated {
			return false
		}
	}
	return true
}

// String returns canonical selector text.
func (s *Selector) String() string {
	var b strings.Builder
	for i, seg := range s.Segments {
		switch {
		case i == 0:
		case seg.Combinator == CombinatorChild:
			b.WriteString(" > ")
		default:
			b.WriteByte(' ')
		}
		seg.write(&b)
	}
	return b.String()
}

func (seg *Segment) write(b *strings.Builder) {
	switch {
	case seg.Exact:
		b.WriteByte('.')
		b.WriteString(seg.Type)
	case seg.Type != "":
		b.WriteString(seg.Type)
	case seg.Name == "" && len(seg.Attrs) == 0 && len(seg.States) == 0 && seg.Subcontrol == "":
		b.WriteByte('*')
	}
	if seg.Name != "" {
		b.WriteByte('#')
		b.WriteString(seg.Name)
	}
	for _, a := range seg.Attrs {
		b.WriteByte('[')
		b.WriteString(a.Name)
		b.WriteByte('=')
		quote(b, a.Value)
		b.WriteByte(']')
	}
	for _, st := range seg.States {
		b.WriteByte(':')
		if st.Negated {
			b.WriteByte('!')
		}
		b.WriteString(st.Name)
	}
	if seg.Subcontrol != "" {
		b.WriteString("::")
		b.WriteString(seg.Subcontrol)
	}
}

// quote writes s as CSS string, control characters are hex escaped.
func quote(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case unicode.IsControl(r):
			fmt.Fprintf(b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
