package vars

import (
	"fmt"
	"strings"
)

// UndefinedError is returned when a reference names unknown variable.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return "undefined variable " + e.Name
}

// DuplicateError is returned when a variable is defined twice in the same scope.
type DuplicateError struct {
	Name     string
	Previous string // value of the first definition
	Value    string // rejected value
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("variable %s already defined as %q", e.Name, e.Previous)
}

// CycleError is returned when following references leads back to a variable
// already being resolved. Path starts and ends with the same name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cyclic variable reference: " + strings.Join(e.Path, " -> ")
}
