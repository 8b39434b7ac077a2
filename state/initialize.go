package state

import (
	"time"

	"wss/vars"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		Palette: vars.NewTable(),
		start:   time.Now(),
	}
}
