package locator

import (
	"os"
	"path/filepath"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Signature describes how the worker appears in the OS process table.
// Program is matched by base name against the command line; ArgPrefix is a
// fixed argument prefix (e.g. "--cache=") that must appear among the
// arguments. Matching the full command line rather than the executable path
// keeps discovery working for interpreter-launched workers (shebang
// scripts), where argv[0] is the interpreter.
type Signature struct {
	Program   string
	ArgPrefix string
}

// Locator discovers worker processes from the live process table.
// It is the sole liveness authority: a pidfile is only ever a hint.
type Locator struct {
	sig     Signature
	selfPID int32
}

func New(sig Signature) *Locator {
	return &Locator{sig: sig, selfPID: int32(os.Getpid())}
}

// Locate returns the PIDs of all processes matching the worker signature,
// excluding the calling process itself. Enumeration failures and processes
// that disappear mid-scan are treated as "no match"; an empty result is a
// normal outcome, never an error.
func (l *Locator) Locate() []int32 {
	if l.sig.Program == "" {
		return nil
	}
	procs, err := gopsproc.Processes()
	if err != nil {
		return nil
	}
	base := filepath.Base(l.sig.Program)
	var pids []int32
	for _, p := range procs {
		if p.Pid == l.selfPID {
			continue
		}
		args, err := p.CmdlineSlice()
		if err != nil || len(args) == 0 {
			continue
		}
		if !l.matches(base, args) {
			continue
		}
		pids = append(pids, p.Pid)
	}
	return pids
}

// IsRunning reports whether any process matches the signature.
func (l *Locator) IsRunning() bool { return len(l.Locate()) > 0 }

func (l *Locator) matches(base string, args []string) bool {
	found := false
	for _, a := range args {
		if strings.Contains(a, base) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if l.sig.ArgPrefix == "" {
		return true
	}
	for _, a := range args[1:] {
		if strings.HasPrefix(a, l.sig.ArgPrefix) {
			return true
		}
	}
	return false
}
