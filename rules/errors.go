package rules

import (
	"fmt"

	"go.uber.org/multierr"
)

// RuleError attaches stylesheet location to a compile problem. Err is one of
// *selector.SyntaxError, *css.PropertySyntaxError or a vars error.
type RuleError struct {
	Block    int    // index of the rule block in the stylesheet
	Selector string // offending selector, or the whole prelude for declaration problems
	Err      error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule block %d (%s): %v", e.Block, e.Selector, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Diagnostics flattens compile report into individual problems in the order
// they were found. Nil error yields nil.
func Diagnostics(err error) []error {
	return multierr.Errors(err)
}
