//go:build windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// setDaemonAttrs is a no-op on Windows; the "serve start" child has no
// Setsid equivalent.
func setDaemonAttrs(_ *exec.Cmd) {}

// shutdownSignals returns the signals that stop "serve" and "mcp" gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// sigTERM is what "serve stop" sends first.
func sigTERM() syscall.Signal { return syscall.SIGTERM }

// sigKILL is sent when the server ignores sigTERM past the stop timeout.
func sigKILL() syscall.Signal { return syscall.SIGKILL }
