package supervisor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The pidfile holds the PID of the immediately spawned process as plain
// text. It is advisory only: descendants forked by the worker carry other
// PIDs, and liveness always comes from the locator.

func (s *Supervisor) writePIDFile(pid int) {
	if s.cfg.PIDFile == "" || pid == 0 {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.cfg.PIDFile), 0o750)
	_ = os.WriteFile(s.cfg.PIDFile, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func (s *Supervisor) readPIDFile() (int, error) {
	b, err := os.ReadFile(s.cfg.PIDFile)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

// removePIDFile best-effort
func (s *Supervisor) removePIDFile() {
	if s.cfg.PIDFile == "" {
		return
	}
	_ = os.Remove(s.cfg.PIDFile)
}
