package supervisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/loykin/soloproc/internal/config"
	"github.com/loykin/soloproc/internal/cores"
	"github.com/loykin/soloproc/internal/history"
	"github.com/loykin/soloproc/internal/locator"
)

// State of the supervised job as derived from the live process table.
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateStopping State = "stopping" // transient, only during stop's escalation window
)

// CacheFlag is the fixed argument prefix of the worker invocation; it doubles
// as the discriminating part of the process-table signature.
const CacheFlag = "--cache="

// Supervisor manages a single long-running worker process. The process table
// (via the locator) is the only liveness authority; the pidfile and the
// captured-output file are advisory records owned exclusively by the
// supervisor. One invocation at a time is assumed; overlapping invocations
// are an accepted race.
type Supervisor struct {
	cfg  config.Config
	loc  *locator.Locator
	hist history.Sink
	log  *slog.Logger
	out  io.Writer // operator-facing reports
}

func New(cfg config.Config) *Supervisor {
	return &Supervisor{
		cfg:  cfg,
		loc:  locator.New(locator.Signature{Program: cfg.WorkerCommand, ArgPrefix: CacheFlag}),
		hist: history.NopSink{},
		log:  slog.Default(),
		out:  os.Stdout,
	}
}

// SetLogger replaces the structured logger (default slog.Default).
func (s *Supervisor) SetLogger(l *slog.Logger) { s.log = l }

// SetHistory attaches a lifecycle event sink (default discards).
func (s *Supervisor) SetHistory(h history.Sink) { s.hist = h }

// SetReportWriter redirects operator-facing reports (default os.Stdout).
func (s *Supervisor) SetReportWriter(w io.Writer) { s.out = w }

// CurrentState derives the job state from the process table.
func (s *Supervisor) CurrentState() State {
	if s.loc.IsRunning() {
		return StateRunning
	}
	return StateStopped
}

// Start launches the worker unless it is already running. Idempotent: a
// second call reports the running PIDs and succeeds. A fresh start removes
// any stale records first so a previous crash cannot leak old output into
// the new run's log.
func (s *Supervisor) Start(ctx context.Context) error {
	if pids := s.loc.Locate(); len(pids) > 0 {
		s.reportf("already running: pid %s\n", joinPIDs(pids))
		return nil
	}

	s.removePIDFile()
	s.removeOutput()

	threads := cores.WorkerThreads(s.cfg.ReservedCores)
	// #nosec G204 -- worker command comes from operator-owned config
	cmd := exec.Command(s.cfg.WorkerCommand, strconv.Itoa(threads), CacheFlag+s.cfg.CachePath)
	configureSysProcAttr(cmd)

	out, err := s.openOutput()
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		_ = out.Close()
		return fmt.Errorf("start worker: %w", err)
	}
	// The child holds its own descriptor; drop ours.
	_ = out.Close()
	pid := cmd.Process.Pid
	// Reap the child if it exits while this invocation is still alive
	// (cycle mode); the worker itself is detached and survives us.
	go func() { _ = cmd.Wait() }()

	s.writePIDFile(pid)
	s.log.Debug("worker spawned", "pid", pid, "threads", threads)

	// Give the worker a moment to establish itself before reporting.
	sleepCtx(ctx, s.cfg.SettleWait)

	if _, err := s.readPIDFile(); err != nil {
		s.log.Warn("pidfile not readable after start; worker may still be running",
			"path", s.cfg.PIDFile, "error", err)
	}
	s.recordEvent(ctx, history.EventStart, pid, fmt.Sprintf("threads=%d", threads))
	s.reportf("started: pid %d (threads=%d)\n", pid, threads)
	return nil
}

// Stop terminates the worker with graceful-then-forceful escalation:
// SIGTERM to every located PID, bounded wait, SIGKILL to survivors, shorter
// bounded wait, final check. When nothing is running it still removes both
// records, so stop doubles as idempotent cleanup. A stop that leaves
// survivors reports a warning and keeps the records so a later stop can
// retry; it is not an error.
func (s *Supervisor) Stop(ctx context.Context) error {
	pids := s.loc.Locate()
	if len(pids) == 0 {
		s.cleanup()
		s.reportf("not running\n")
		return nil
	}

	s.log.Debug("stopping worker", "state", string(StateStopping), "pids", joinPIDs(pids))
	for _, pid := range pids {
		_ = terminateProcess(int(pid))
	}
	sleepCtx(ctx, s.cfg.GracefulWait)

	if rem := s.loc.Locate(); len(rem) > 0 {
		s.log.Warn("graceful stop timed out, escalating to kill", "pids", joinPIDs(rem))
		for _, pid := range rem {
			_ = killProcess(int(pid))
		}
		s.recordEvent(ctx, history.EventKill, int(rem[0]), "escalated after graceful wait")
		sleepCtx(ctx, s.cfg.KillWait)
	}

	if still := s.loc.Locate(); len(still) > 0 {
		s.log.Warn("worker survived kill, manual intervention may be required",
			"pids", joinPIDs(still))
		s.reportf("stop incomplete: still running: pid %s\n", joinPIDs(still))
		return nil
	}

	s.cleanup()
	s.recordEvent(ctx, history.EventStop, int(pids[0]), "")
	s.reportf("stopped\n")
	return nil
}

// Status reports liveness, the advisory pidfile value, and a tail of the
// captured output. It never mutates persisted state.
func (s *Supervisor) Status(_ context.Context) error {
	pids := s.loc.Locate()
	if len(pids) > 0 {
		s.reportf("running: pid %s\n", joinPIDs(pids))
	} else {
		s.reportf("not running\n")
	}

	if pid, err := s.readPIDFile(); err == nil {
		s.reportf("last recorded pid: %d (advisory)\n", pid)
	}

	lines, err := tailLines(s.cfg.OutputFile, s.cfg.TailLines)
	switch {
	case err != nil && os.IsNotExist(err):
		s.reportf("no captured output (worker never started)\n")
	case err != nil:
		s.reportf("captured output unreadable: %v\n", err)
	case len(lines) == 0:
		s.reportf("captured output is empty\n")
	default:
		s.reportf("last %d output line(s):\n", len(lines))
		for _, ln := range lines {
			s.reportf("  %s\n", ln)
		}
	}
	return nil
}

// Cycle repeats start -> run -> stop -> cooldown until ctx is cancelled.
// Each iteration leans on Start/Stop's own idempotence, so a crash mid-cycle
// leaves state recoverable by the next invocation. Cancellation aborts the
// sleeps promptly; cancellation during the run phase still performs a final
// stop so the worker is not left behind.
func (s *Supervisor) Cycle(ctx context.Context) error {
	for i := 1; ; i++ {
		s.log.Info("cycle iteration", "n", i)
		if err := s.Start(ctx); err != nil {
			s.log.Warn("cycle start failed", "error", err)
		}
		if !sleepCtx(ctx, s.cfg.RunDuration) {
			_ = s.Stop(context.Background())
			return ctx.Err()
		}
		if err := s.Stop(context.Background()); err != nil {
			s.log.Warn("cycle stop failed", "error", err)
		}
		if !sleepCtx(ctx, s.cfg.Cooldown) {
			return ctx.Err()
		}
	}
}

// cleanup removes both persisted records; called only once the job is
// confirmed not running.
func (s *Supervisor) cleanup() {
	s.removePIDFile()
	s.removeOutput()
}

func (s *Supervisor) recordEvent(ctx context.Context, t history.EventType, pid int, detail string) {
	e := history.Event{Type: t, OccurredAt: time.Now(), PID: pid, Detail: detail}
	if err := s.hist.Record(ctx, e); err != nil {
		s.log.Warn("history record failed", "event", string(t), "error", err)
	}
}

func (s *Supervisor) reportf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func joinPIDs(pids []int32) string {
	parts := make([]string, 0, len(pids))
	for _, pid := range pids {
		parts = append(parts, strconv.Itoa(int(pid)))
	}
	return strings.Join(parts, ", ")
}

// sleepCtx blocks for d or until ctx is done; reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
