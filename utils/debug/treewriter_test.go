package debug

import (
	"strings"
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "test", nil, "test\n"},
		{"depth 1", 1, "indented", nil, "  indented\n"},
		{"depth 3", 3, "deep", nil, "      deep\n"},
		{"with args", 1, "[%d] %s", []any{2, "QLabel"}, "  [2] QLabel\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "--accent-color", "#6366f1")
	tw.TextBlock(0, "empty", "")
	tw.TextBlock(0, "multi", "a\nb")

	want := "  --accent-color: \"#6366f1\"\nempty: \nmulti: \"a\\nb\"\n"
	if got := tw.String(); got != want {
		t.Errorf("TextBlock() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Section(t *testing.T) {
	tw := NewTreeWriter().WithIndent("\t")
	tw.Section(0, "Rules", 2)
	tw.Line(1, "QLabel")

	if got := tw.String(); got != "Rules (2)\n\tQLabel\n" {
		t.Errorf("Section() = %q", got)
	}

	var b strings.Builder
	n, err := tw.WriteTo(&b)
	if err != nil || n != int64(len(tw.String())) || b.String() != tw.String() {
		t.Errorf("WriteTo() = %d, %v", n, err)
	}
}

func TestTreeWriter_Empty(t *testing.T) {
	if got := NewTreeWriter().String(); got != "" {
		t.Errorf("String() = %q", got)
	}
}
