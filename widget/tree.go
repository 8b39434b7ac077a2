package widget

import (
	"errors"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"
)

type nodeSpec struct {
	ID       string            `yaml:"id"`
	Type     string            `yaml:"type"`
	Inherits []string          `yaml:"inherits,omitempty"`
	Name     string            `yaml:"name,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	States   []string          `yaml:"states,omitempty"`
	Parts    []string          `yaml:"parts,omitempty"`
	Inline   string            `yaml:"style,omitempty"`
	Children []nodeSpec        `yaml:"children,omitempty"`
}

type treeSpec struct {
	Widgets []nodeSpec `yaml:"widgets"`
}

// Tree is a widget hierarchy described outside of a toolkit, used by tools
// and tests to issue queries without a running application.
type Tree struct {
	Roots []*Node
	Nodes []*Node // every node in document order, parents before children
	byID  map[ID]*Node
}

// LoadTree decodes YAML widget hierarchy:
//
//	widgets:
//	  - id: main
//	    type: QMainWindow
//	    children:
//	      - id: ok
//	        type: QPushButton
//	        inherits: [QAbstractButton, QWidget]
//	        name: okButton
//	        states: [hover]
//	        attrs: {text: OK}
//	        parts: [menu-indicator]
//	        style: "color: var(--error-color);"
func LoadTree(r io.Reader) (*Tree, error) {
	var spec treeSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode widget tree: %w", err)
	}

	t := &Tree{byID: make(map[ID]*Node)}
	for i := range spec.Widgets {
		root, err := t.add(&spec.Widgets[i], nil)
		if err != nil {
			return nil, err
		}
		t.Roots = append(t.Roots, root)
	}
	return t, nil
}

// Find returns node with given identity or nil.
func (t *Tree) Find(id ID) *Node {
	return t.byID[id]
}

func (t *Tree) add(spec *nodeSpec, parent *Node) (*Node, error) {
	if spec.Type == "" {
		return nil, fmt.Errorf("widget %q: type is required", spec.ID)
	}
	n := &Node{
		ID:       ID(spec.ID),
		Type:     spec.Type,
		Inherits: spec.Inherits,
		Name:     spec.Name,
		Attrs:    spec.Attrs,
		States:   spec.States,
		Parts:    spec.Parts,
		Inline:   spec.Inline,
		Parent:   parent,
	}
	if n.ID != "" {
		if _, exists := t.byID[n.ID]; exists {
			return nil, fmt.Errorf("widget %q: duplicate id", spec.ID)
		}
		t.byID[n.ID] = n
	}
	t.Nodes = append(t.Nodes, n)
	for i := range spec.Children {
		if _, err := t.add(&spec.Children[i], n); err != nil {
			return nil, err
		}
	}
	return n, nil
}
