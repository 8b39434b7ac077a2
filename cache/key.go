package cache

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"wss/widget"
)

// Key identifies a resolution: node identity plus everything about the node
// (and its ancestors up to the consulted depth) matching can observe.
type Key struct {
	ID        widget.ID
	Signature string
	deps      []widget.ID // ancestor identities embedded in signature
}

// NewKey builds cache key for the node. Depth limits how many ancestors take
// part in the key, selector.Unbounded (any negative value) means all of them.
// Nodes without identity are not cacheable and false is returned.
func NewKey(n *widget.Node, depth int) (Key, bool) {
	if n == nil || n.ID == "" {
		return Key{}, false
	}

	var b strings.Builder
	writeNode(&b, n)
	b.WriteString("|sub=")
	b.WriteString(strconv.Quote(n.Subcontrol))
	b.WriteString("|inline=")
	b.WriteString(strconv.Quote(n.Inline))

	key := Key{ID: n.ID}
	level := 0
	for p := n.Parent; p != nil && (depth < 0 || level < depth); p = p.Parent {
		b.WriteString("|^")
		b.WriteString(strconv.Quote(string(p.ID)))
		writeNode(&b, p)
		if p.ID != "" {
			key.deps = append(key.deps, p.ID)
		}
		level++
	}
	key.Signature = b.String()
	return key, true
}

// Depends returns identities of ancestors embedded in the key.
func (k Key) Depends() []widget.ID {
	return slices.Clone(k.deps)
}

func (k Key) String() string {
	return string(k.ID) + "@" + k.Signature
}

// writeNode adds matchable properties of a single node, order independent
// collections are sorted.
func writeNode(b *strings.Builder, n *widget.Node) {
	b.WriteString(strconv.Quote(n.Type))
	for _, t := range n.Inherits {
		b.WriteByte('<')
		b.WriteString(strconv.Quote(t))
	}
	b.WriteByte('#')
	b.WriteString(strconv.Quote(n.Name))

	for _, name := range slices.Sorted(maps.Keys(n.Attrs)) {
		b.WriteByte('[')
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(norm.NFC.String(n.Attrs[name])))
		b.WriteByte(']')
	}
	for _, s := range n.NormalizedStates() {
		b.WriteByte(':')
		b.WriteString(strconv.Quote(s))
	}
}
