package css

import (
	"image/color"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw     string
		kind    Kind
		number  float64
		unit    string
		keyword string
	}{
		{"14px", KindLength, 14, "px", ""},
		{"1.5em", KindLength, 1.5, "em", ""},
		{"-2pt", KindLength, -2, "pt", ""},
		{"1e3px", KindLength, 1000, "px", ""},
		{"2.5E-1s", KindDuration, 0.25, "s", ""},
		{"+.5em", KindLength, 0.5, "em", ""},
		{"3ex", KindLength, 3, "ex", ""},
		{"200ms", KindDuration, 200, "ms", ""},
		{"3dpi", KindNumber, 3, "dpi", ""},
		{"50%", KindPercentage, 50, "%", ""},
		{"2", KindNumber, 2, "", ""},
		{"bold", KindKeyword, 0, "", "bold"},
		{"Center", KindKeyword, 0, "", "center"},
		{`"Segoe UI"`, KindString, 0, "", "Segoe UI"},
		{"url(icons/check.svg)", KindUrl, 0, "", "icons/check.svg"},
		{`url("icons/arrow down.png")`, KindUrl, 0, "", "icons/arrow down.png"},
		{"qlineargradient(x1: 0, y1: 0, x2: 0, y2: 1)", KindFunction, 0, "", "qlineargradient(x1: 0, y1: 0, x2: 0, y2: 1)"},
		{"1px solid #ccc", KindList, 0, "", "1px solid #ccc"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseValue(tt.raw)
			if v.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", v.Kind, tt.kind)
			}
			if v.Number != tt.number || v.Unit != tt.unit {
				t.Errorf("Number, Unit = %v, %q, want %v, %q", v.Number, v.Unit, tt.number, tt.unit)
			}
			if tt.keyword != "" && v.Keyword != tt.keyword {
				t.Errorf("Keyword = %q, want %q", v.Keyword, tt.keyword)
			}
			if v.Raw != tt.raw || v.String() != tt.raw {
				t.Errorf("Raw = %q", v.Raw)
			}
		})
	}
}

func TestParseValueColors(t *testing.T) {
	tests := []struct {
		raw  string
		want color.NRGBA
	}{
		{"#6366f1", color.NRGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff}},
		{"#fff", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{"red", color.NRGBA{R: 0xff, A: 0xff}},
		{"rgb(16, 185, 129)", color.NRGBA{R: 16, G: 185, B: 129, A: 0xff}},
		{"rgba(0, 0, 0, 0)", color.NRGBA{}},
	}
	for _, tt := range tests {
		v := ParseValue(tt.raw)
		if v.Kind != KindColor {
			t.Errorf("%q: Kind = %v, want color", tt.raw, v.Kind)
			continue
		}
		if v.Color != tt.want {
			t.Errorf("%q: Color = %v, want %v", tt.raw, v.Color, tt.want)
		}
	}
}

func TestParseValueEmpty(t *testing.T) {
	v := ParseValue("   ")
	if v.Raw != "" || v.Kind != KindKeyword || v.IsNumeric() {
		t.Errorf("ParseValue(blank) = %+v", v)
	}
}

func TestIsNumeric(t *testing.T) {
	for raw, want := range map[string]bool{"1px": true, "10%": true, "1s": true, "3": true, "red": false, "a b": false} {
		if got := ParseValue(raw).IsNumeric(); got != want {
			t.Errorf("IsNumeric(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestKind(t *testing.T) {
	k, err := ParseKind("color")
	if err != nil || k != KindColor {
		t.Errorf("ParseKind() = %v, %v", k, err)
	}
	if _, err := ParseKind("nope"); err == nil {
		t.Error("expected error")
	}
	if KindUrl.String() != "url" {
		t.Errorf("String() = %q", KindUrl.String())
	}
}
