package supervisor

import (
	"os"
	"path/filepath"
	"strings"
)

// openOutput creates (truncating) the captured-output file and returns it
// for use as the child's stdout/stderr. A real descriptor is required here:
// the detached worker must keep writing after this invocation exits, so the
// output cannot be piped through an in-process writer.
func (s *Supervisor) openOutput() (*os.File, error) {
	path := s.cfg.OutputFile
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o750)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
}

// removeOutput best-effort
func (s *Supervisor) removeOutput() {
	if s.cfg.OutputFile == "" {
		return
	}
	_ = os.Remove(s.cfg.OutputFile)
}

// tailLines returns up to n trailing lines of the file at path. A missing
// file surfaces as os.IsNotExist; an existing empty file yields no lines.
func tailLines(path string, n int) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(b), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
