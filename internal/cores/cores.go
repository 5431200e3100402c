package cores

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// Available returns the number of logical cores. Falls back to
// runtime.NumCPU when the platform query fails.
func Available() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// WorkerThreads computes the worker's concurrency argument: available cores
// minus the configured reservation, floored at 1 so the worker always gets
// at least one thread.
func WorkerThreads(reserved int) int {
	n := Available() - reserved
	if n < 1 {
		n = 1
	}
	return n
}
