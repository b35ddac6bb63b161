//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// path and path list separators
const forbiddenInName = "/:"

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
