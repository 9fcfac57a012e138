//go:build windows

package mpv

import (
	"os/exec"
	"syscall"
)

// setupProcessAttributes puts mpv in its own process group so console Ctrl+C
// and keyboard input stay with the TUI
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
