//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// detachDaemon starts the daemon in its own session so it outlives the console.
func detachDaemon(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
