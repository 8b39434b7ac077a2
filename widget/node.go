// Package widget describes widget nodes the way the styling engine sees
// them: type, object name, attributes, active pseudo-states, subcontrol being
// queried and the ancestor chain. Descriptors are built by the host toolkit
// for every query and are never modified by the engine.
package widget

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID is host assigned node identity. Empty ID means the node has no stable
// identity and its styles are never cached.
type ID string

// Pseudo-states toolkits usually report. Any other name is allowed.
const (
	StateHover    = "hover"
	StatePressed  = "pressed"
	StateChecked  = "checked"
	StateDisabled = "disabled"
	StateFocus    = "focus"
)

// Subcontrols of composite widgets commonly addressed by stylesheets.
const (
	SubIndicator = "indicator"
	SubHandle    = "handle"
	SubChunk     = "chunk"
	SubDropDown  = "drop-down"
	SubGroove    = "groove"
)

// Node is a widget node descriptor.
type Node struct {
	ID         ID
	Type       string            // widget type name, e.g. "QPushButton"
	Inherits   []string          // base type names, nearest first
	Name       string            // object name, empty if none
	Attrs      map[string]string // attribute values observed at query time, e.g. "text"
	States     []string          // active pseudo-states
	Subcontrol string            // queried subcontrol, empty for the widget itself
	Inline     string            // widget level declarations: "color: red;"
	Parent     *Node

	// Parts lists subcontrols the widget exposes. It does not take part in
	// matching, hosts use it to know which subcontrol queries to make.
	Parts []string
}

// HasState returns true if the pseudo-state is active. Names are case insensitive.
func (n *Node) HasState(state string) bool {
	return slices.ContainsFunc(n.States, func(s string) bool {
		return strings.EqualFold(s, state)
	})
}

// Attr returns attribute value in NFC normal form, so composed and decomposed
// spelling of localized text compare equal.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return "", false
	}
	return norm.NFC.String(v), true
}

// IsA returns true if node type or any of its base types is typeName.
func (n *Node) IsA(typeName string) bool {
	return n.Type == typeName || slices.Contains(n.Inherits, typeName)
}

// For returns a copy of the node describing one of its subcontrols. Passing
// empty name returns descriptor of the widget itself. Subcontrol names are
// case insensitive.
func (n *Node) For(subcontrol string) *Node {
	c := *n
	c.Subcontrol = strings.ToLower(subcontrol)
	return &c
}

// Depth returns number of ancestors.
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// NormalizedStates returns lower case active states, sorted and deduplicated.
func (n *Node) NormalizedStates() []string {
	states := make([]string, 0, len(n.States))
	for _, s := range n.States {
		states = append(states, strings.ToLower(s))
	}
	slices.Sort(states)
	return slices.Compact(states)
}

// String returns short human readable path of the node for logs, e.g.
// "QDialog > QPushButton#ok:hover::indicator".
func (n *Node) String() string {
	var parts []string
	for p := n; p != nil; p = p.Parent {
		parts = append(parts, p.label(p == n))
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}

func (n *Node) label(self bool) string {
	var b strings.Builder
	if n.Type == "" {
		b.WriteByte('*')
	} else {
		b.WriteString(n.Type)
	}
	if n.Name != "" {
		b.WriteByte('#')
		b.WriteString(n.Name)
	}
	for _, s := range n.NormalizedStates() {
		b.WriteByte(':')
		b.WriteString(s)
	}
	if self && n.Subcontrol != "" {
		b.WriteString("::")
		b.WriteString(n.Subcontrol)
	}
	return b.String()
}
