//go:build !windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// setDaemonAttrs detaches the background recode server started by
// "serve start" into its own session, so it outlives the terminal.
func setDaemonAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// shutdownSignals returns the signals that stop "serve" and "mcp" gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// sigTERM is what "serve stop" sends first.
func sigTERM() syscall.Signal { return syscall.SIGTERM }

// sigKILL is sent when the server ignores sigTERM past the stop timeout.
func sigKILL() syscall.Signal { return syscall.SIGKILL }
