//go:build !linux

package logger

import "os"

func isTerminal(_ *os.File) bool {
	return false
}
