//go:build !linux && !darwin

package logger

// isTerminal reports false so output stays uncolored on platforms without
// a termios ioctl.
func isTerminal(uintptr) bool {
	return false
}
