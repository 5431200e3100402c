//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr starts the worker in a new session (setsid) so it is
// detached from the supervisor's controlling terminal and keeps running
// after this invocation exits.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
