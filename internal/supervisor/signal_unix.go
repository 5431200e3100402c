//go:build !windows

package supervisor

import "syscall"

// terminateProcess asks a process to exit voluntarily.
func terminateProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// killProcess terminates a process unconditionally.
func killProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}
