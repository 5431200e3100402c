//go:build windows

package supervisor

import "os"

// Windows has no graceful POSIX signal; both phases terminate directly.
func terminateProcess(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func killProcess(pid int) error { return terminateProcess(pid) }
