//go:build !windows

package interp

import "golang.org/x/sys/unix"

const (
	sigAbrt = int(unix.SIGABRT)
	sigFpe  = int(unix.SIGFPE)
	sigIll  = int(unix.SIGILL)
	sigInt  = int(unix.SIGINT)
	sigSegv = int(unix.SIGSEGV)
	sigTerm = int(unix.SIGTERM)
)
