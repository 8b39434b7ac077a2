package css

import (
	"fmt"
	"image/color"
	"io"
	"strings"
)

//go:generate go tool go-enum --marshal --names

// Kind of a literal property value.
// ENUM(keyword, color, length, percentage, duration, number, string, url, function, list)
type Kind int

// Value is a typed literal property value.
type Value struct {
	Raw     string      // value text as written, whitespace collapsed (e.g. "1px solid #ccc")
	Kind    Kind        // classification of Raw
	Number  float64     // numeric part for length, percentage, duration and number
	Unit    string      // unit for length and duration: "px", "pt", "ms", ...
	Keyword string      // identifier, unquoted string or url target
	Color   color.NRGBA // set when Kind is KindColor
}

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case KindLength, KindPercentage, KindDuration, KindNumber:
		return true
	}
	return false
}

// String returns the literal as it would be written in a stylesheet.
func (v Value) String() string {
	return v.Raw
}

// Declaration is a single "property: value" pair of a rule block.
type Declaration struct {
	Property  string // lower case property name, custom properties keep leading "--"
	Raw       string // value text, whitespace collapsed and "!important" removed
	Important bool   // declaration was marked "!important"
	Custom    bool   // custom property (--name)
}

// Block is a rule block: selector list followed by declarations.
type Block struct {
	Prelude      string        // selector list as written, whitespace collapsed
	Selectors    []string      // prelude split on top level commas
	Declarations []Declaration // source order
	Index        int           // position of the block in the stylesheet
}

// IsGlobal returns true for the global variable scope "* { ... }".
func (b Block) IsGlobal() bool {
	return len(b.Selectors) == 1 && b.Selectors[0] == "*"
}

// Stylesheet is a parsed stylesheet, blocks are kept in source order.
type Stylesheet struct {
	Blocks   []Block
	Warnings []string // unsupported constructs which were skipped
}

// BlocksBySelector returns all blocks whose selector list contains the given selector.
func (s *Stylesheet) BlocksBySelector(selector string) []Block {
	var matches []Block
	for _, b := range s.Blocks {
		for _, sel := range b.Selectors {
			if sel == selector {
				matches = append(matches, b)
				break
			}
		}
	}
	return matches
}

// Variables returns custom property declarations of all global blocks in source order.
func (s *Stylesheet) Variables() []Declaration {
	var decls []Declaration
	for _, b := range s.Blocks {
		if !b.IsGlobal() {
			continue
		}
		for _, d := range b.Declarations {
			if d.Custom {
				decls = append(decls, d)
			}
		}
	}
	return decls
}

// WriteTo writes the stylesheet to w in canonical form, implementing io.WriterTo.
// Declarations keep their source order since later ones override earlier ones.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := range s.Blocks {
		n, err := writeBlock(w, &s.Blocks[i])
		total += int64(n)
		if err != nil {
			return total, err
		}

		// Blank line between blocks (except after last)
		if i < len(s.Blocks)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the canonical text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeBlock(w io.Writer, b *Block) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s {\n", strings.Join(b.Selectors, ",\n"))
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range b.Declarations {
		n, err = fmt.Fprintf(w, "    %s;\n", d)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

// String returns declaration text without trailing semicolon.
func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Raw + " !important"
	}
	return d.Property + ": " + d.Raw
}
