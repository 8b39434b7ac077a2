package cascade

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"wss/css"
	"wss/utils/debug"
)

// Style is a resolved property set. It is immutable, the same instance may
// be returned to many callers from cache.
type Style struct {
	props map[string]css.Value
}

var empty = &Style{props: map[string]css.Value{}}

// Get returns property value. Absent property means no rule sets it, there
// are no implicit defaults.
func (s *Style) Get(property string) (css.Value, bool) {
	v, ok := s.props[property]
	return v, ok
}

// Len returns number of resolved properties.
func (s *Style) Len() int {
	return len(s.props)
}

// Names returns property names in natural order.
func (s *Style) Names() []string {
	names := slices.Collect(maps.Keys(s.props))
	sort.Sort(natural.StringSlice(names))
	return names
}

// Map returns a copy of resolved properties.
func (s *Style) Map() map[string]css.Value {
	return maps.Clone(s.props)
}

// Equal returns true if both styles resolve to the same literals.
func (s *Style) Equal(o *Style) bool {
	return maps.EqualFunc(s.props, o.props, func(a, b css.Value) bool {
		return a.Raw == b.Raw
	})
}

// String returns "property: value;" lines in natural property order.
func (s *Style) String() string {
	tw := debug.NewTreeWriter()
	for _, name := range s.Names() {
		tw.Line(0, "%s: %s;", name, s.props[name].Raw)
	}
	return tw.String()
}
