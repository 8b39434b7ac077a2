package selector

import "fmt"

// SyntaxError describes malformed selector text.
type SyntaxError struct {
	Selector string // selector text as given
	Token    string // offending token, empty at end of input
	Pos      int    // byte offset of the offending token
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("selector %q: %s at end of input", e.Selector, e.Msg)
	}
	return fmt.Sprintf("selector %q: %s at offset %d (%q)", e.Selector, e.Msg, e.Pos, e.Token)
}
