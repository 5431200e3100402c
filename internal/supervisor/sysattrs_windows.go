//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

const detachedProcess = 0x00000008

// configureSysProcAttr detaches the worker from the supervisor's console so
// it keeps running after this invocation exits.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
