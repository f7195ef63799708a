//go:build !linux && !darwin

package shell

import "os"

// IsTerminal always reports false on platforms without termios.
func IsTerminal(_ *os.File) bool { return false }
