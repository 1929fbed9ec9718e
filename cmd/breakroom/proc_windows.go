//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detachDaemon keeps console Ctrl+C from reaching the background daemon.
func detachDaemon(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
