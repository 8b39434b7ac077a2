//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// entryUnsafe lists characters replaced in report entry names.
const entryUnsafe = "/:"

// EnableColorOutput checks if console log written to stream could be colored.
func EnableColorOutput(stream *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
