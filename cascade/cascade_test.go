package cascade_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"wss/cascade"
	"wss/css"
	"wss/rules"
	"wss/widget"
)

func compile(t *testing.T, text string) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Compile(text)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return rs
}

func loadTheme(t *testing.T) (*rules.RuleSet, *widget.Tree) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "theme.qss"))
	if err != nil {
		t.Fatalf("Failed to read theme: %v", err)
	}
	rs, err := rules.NewCompiler(zap.NewNop()).Compile(data, nil, "theme.qss")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	f, err := os.Open(filepath.Join("testdata", "widgets.yaml"))
	if err != nil {
		t.Fatalf("Failed to open widget tree: %v", err)
	}
	defer f.Close()
	tree, err := widget.LoadTree(f)
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}
	return rs, tree
}

func expect(t *testing.T, s *cascade.Style, property, want string) {
	t.Helper()
	v, ok := s.Get(property)
	if !ok {
		t.Errorf("%s is absent, want %q", property, want)
		return
	}
	if v.Raw != want {
		t.Errorf("%s = %q, want %q", property, v.Raw, want)
	}
}

func absent(t *testing.T, s *cascade.Style, property string) {
	t.Helper()
	if v, ok := s.Get(property); ok {
		t.Errorf("%s = %q, want absent", property, v.Raw)
	}
}

func TestSpecificityObjectNameWins(t *testing.T) {
	node := &widget.Node{ID: "ok", Type: "QPushButton", Name: "okButton"}

	for _, text := range []string{
		"QPushButton { background-color: red; } #okButton { background-color: green; }",
		"#okButton { background-color: green; } QPushButton { background-color: red; }",
		"#okButton { background-color: green; } QDialog QPushButton:hover:!pressed { background-color: red; }",
	} {
		rs := compile(t, text)
		expect(t, cascade.Resolve(rs, node), "background-color", "green")
	}
}

func TestSourceOrderTieBreak(t *testing.T) {
	rs := compile(t, `
QPushButton { color: red; margin: 1px; }
QPushButton { color: blue; }
`)
	node := &widget.Node{Type: "QPushButton"}
	for range 10 {
		s := cascade.Resolve(rs, node)
		expect(t, s, "color", "blue")
		expect(t, s, "margin", "1px")
	}
}

func TestLaterDeclarationInBlockWins(t *testing.T) {
	rs := compile(t, "QLabel { color: red; color: blue; }")
	expect(t, cascade.Resolve(rs, &widget.Node{Type: "QLabel"}), "color", "blue")
}

func TestPseudoStateAndSemantics(t *testing.T) {
	rs := compile(t, "QPushButton:hover:pressed { color: red; }")

	hover := &widget.Node{Type: "QPushButton", States: []string{"hover"}}
	if s := cascade.Resolve(rs, hover); s.Len() != 0 {
		t.Errorf("hover only node resolved to %v", s)
	}

	both := &widget.Node{Type: "QPushButton", States: []string{"pressed", "hover"}}
	expect(t, cascade.Resolve(rs, both), "color", "red")
}

func TestVariableSubstitution(t *testing.T) {
	rs := compile(t, `
* { --accent-color: #6366f1; }
QPushButton { background-color: var(--accent-color); }
`)
	s := cascade.Resolve(rs, &widget.Node{Type: "QPushButton"})
	expect(t, s, "background-color", "#6366f1")
	v, _ := s.Get("background-color")
	if v.Kind != css.KindColor {
		t.Errorf("Kind = %v, want color", v.Kind)
	}
}

func TestNoImplicitDefaults(t *testing.T) {
	rs := compile(t, "QLabel { color: red; }")
	s := cascade.Resolve(rs, &widget.Node{Type: "QSlider"})
	if s.Len() != 0 || len(s.Names()) != 0 {
		t.Errorf("unmatched node resolved to %v", s.Names())
	}
	if cascade.Resolve(rs, nil).Len() != 0 {
		t.Error("nil node should resolve to empty style")
	}
}

func TestSubcontrolIsolation(t *testing.T) {
	rs := compile(t, `
QCheckBox { color: black; spacing: 4px; }
QCheckBox::indicator { width: 16px; color: blue; }
QCheckBox::indicator:checked { background-color: green; }
`)
	box := &widget.Node{ID: "cb", Type: "QCheckBox", States: []string{"checked"}}

	own := cascade.Resolve(rs, box)
	expect(t, own, "color", "black")
	absent(t, own, "width")
	absent(t, own, "background-color")

	ind := cascade.Resolve(rs, box.For(widget.SubIndicator))
	expect(t, ind, "color", "blue")
	expect(t, ind, "width", "16px")
	expect(t, ind, "background-color", "green")
	absent(t, ind, "spacing")
}

func TestImportantAndInline(t *testing.T) {
	rs := compile(t, `
* { --error-color: #ef4444; }
#status { color: green; margin: 1px !important; padding: 2px; }
QLabel { margin: 3px; border: none !important; }
QLabel:hover { border: 1px solid red !important; }
`)
	node := &widget.Node{
		Type:   "QLabel",
		Name:   "status",
		Inline: "color: var(--error-color); margin: 5px; padding: 4px !important; border: 0",
	}

	s := cascade.Resolve(rs, node)
	expect(t, s, "color", "#ef4444") // inline beats any normal rule declaration
	expect(t, s, "margin", "1px")    // important rule beats normal inline
	expect(t, s, "padding", "4px")   // important inline beats everything
	expect(t, s, "border", "none")   // important rule beats normal inline

	node.States = []string{"hover"}
	expect(t, cascade.Resolve(rs, node), "border", "1px solid red")

	// inline text does not style subcontrols
	absent(t, cascade.Resolve(rs, node.For("indicator")), "color")
}

func TestBadInlineKeepsValidDeclarations(t *testing.T) {
	rs := compile(t, "QLabel { color: red; }")
	node := &widget.Node{ID: "l", Type: "QLabel", Inline: "margin: var(--undefined); font-size: 14px"}

	e := cascade.New(rs, cascade.WithLogger(zap.NewNop()))
	s := e.Resolve(node)
	expect(t, s, "color", "red")
	expect(t, s, "font-size", "14px")
	absent(t, s, "margin")
}

func TestEngineIdempotence(t *testing.T) {
	rs, tree := loadTheme(t)
	e := cascade.New(rs)

	for _, n := range tree.Nodes {
		first := e.Resolve(n)
		before := e.Stats().Hits
		second := e.Resolve(n)
		if !first.Equal(second) {
			t.Errorf("%s: second resolution differs", n)
		}
		if first != second {
			t.Errorf("%s: second resolution was not served from cache", n)
		}
		if e.Stats().Hits != before+1 {
			t.Errorf("%s: hit counter did not advance", n)
		}
	}

	st := e.Stats()
	if st.Misses != uint64(len(tree.Nodes)) || st.Entries != len(tree.Nodes) {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestInvalidationScenario(t *testing.T) {
	rs, tree := loadTheme(t)
	e := cascade.New(rs)

	search := tree.Find("search")
	a := e.Resolve(search)
	expect(t, a, "background-color", "#4f46e5")

	search.States = []string{widget.StateHover}
	if n := e.Invalidate(search.ID); n != 1 {
		t.Errorf("Invalidate() = %d, want 1", n)
	}

	b := e.Resolve(search)
	expect(t, b, "background-color", "#6366f1")
	if a.Equal(b) {
		t.Error("stale style returned after invalidation")
	}

	// state change the rule set ignores yields an equal style
	search.States = []string{widget.StateHover, widget.StateFocus}
	e.Invalidate(search.ID)
	if c := e.Resolve(search); !c.Equal(b) {
		t.Errorf("style changed unexpectedly: %v", c)
	}

	if n := e.Invalidate("never-resolved"); n != 0 {
		t.Errorf("unknown identity evicted %d entries", n)
	}
}

func TestInvalidateAncestor(t *testing.T) {
	rs, tree := loadTheme(t)
	e := cascade.New(rs)

	count := tree.Find("count")
	expect(t, e.Resolve(count), "color", "#10b981")

	// rename group: descendant rule no longer applies
	results := tree.Find("results")
	results.Name = "other_group"
	if n := e.Invalidate(results.ID); n != 1 {
		t.Errorf("Invalidate(results) = %d, want 1", n)
	}
	expect(t, e.Resolve(count), "color", "#1f2937")
}

func TestTheme(t *testing.T) {
	rs, tree := loadTheme(t)
	e := cascade.New(rs)

	search := e.Resolve(tree.Find("search"))
	expect(t, search, "background-color", "#4f46e5")
	expect(t, search, "color", "white")
	expect(t, search, "font-weight", "bold")
	expect(t, search, "border", "1px solid #d1d5db")
	expect(t, search, "padding", "6px 12px")
	expect(t, search, "font-size", "13px")

	expect(t, e.Resolve(tree.Find("cancel")), "background-color", "#ef4444")

	parts := e.ResolveParts(tree.Find("use_cnn"))
	ind := parts[widget.SubIndicator]
	expect(t, ind, "background-color", "#6366f1")
	expect(t, ind, "width", "16px")
	absent(t, ind, "color")
	if v, _ := ind.Get("image"); v.Kind != css.KindUrl || v.Keyword != "icons/check.svg" {
		t.Errorf("image = %+v", v)
	}
	absent(t, parts[""], "width")
	expect(t, parts[""], "color", "#1f2937")

	chunk := e.ResolveParts(tree.Find("progress"))[widget.SubChunk]
	expect(t, chunk, "background-color", "#10b981")

	status := e.Resolve(tree.Find("status"))
	expect(t, status, "color", "#ef4444")
	expect(t, status, "font-size", "14px")

	main := e.Resolve(tree.Find("main"))
	expect(t, main, "background-color", "#f9fafb")
}

func TestWithoutCache(t *testing.T) {
	rs, tree := loadTheme(t)
	e := cascade.New(rs, cascade.WithoutCache())

	n := tree.Find("search")
	e.Resolve(n)
	e.Resolve(n)
	if st := e.Stats(); st.Hits != 0 || st.Uncached != 2 || st.Entries != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestNodesWithoutIdentityAreNotCached(t *testing.T) {
	rs := compile(t, "QLabel { color: red; }")
	e := cascade.New(rs)
	n := &widget.Node{Type: "QLabel"}
	expect(t, e.Resolve(n), "color", "red")
	expect(t, e.Resolve(n), "color", "red")
	if st := e.Stats(); st.Uncached != 2 || st.Hits != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestConcurrentResolve(t *testing.T) {
	rs, tree := loadTheme(t)
	e := cascade.New(rs)
	want := make(map[widget.ID]*cascade.Style)
	for _, n := range tree.Nodes {
		want[n.ID] = cascade.Resolve(rs, n)
	}

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				n := tree.Nodes[(i+w)%len(tree.Nodes)]
				if got := e.Resolve(n); !got.Equal(want[n.ID]) {
					t.Errorf("%s resolved to %v", n, got)
					return
				}
				if i%25 == 0 {
					e.Invalidate(n.ID)
				}
			}
		}()
	}
	wg.Wait()
}

func TestStyleString(t *testing.T) {
	rs := compile(t, "QLabel { padding: 2px; color: red; margin: 1px; }")
	s := cascade.Resolve(rs, &widget.Node{Type: "QLabel"})
	want := "color: red;\nmargin: 1px;\npadding: 2px;\n"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	m := s.Map()
	delete(m, "color")
	if _, ok := s.Get("color"); !ok {
		t.Error("Map() returned internal state")
	}
}

func TestMatching(t *testing.T) {
	rs := compile(t, "#a { color: red; } QLabel { color: blue; } QFrame { color: green; }")
	got := cascade.Matching(rs, &widget.Node{Type: "QLabel", Name: "a", Inherits: []string{"QFrame"}})
	if len(got) != 3 || got[2].Selector.String() != "#a" {
		t.Errorf("Matching() = %v", got)
	}
}
