package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/soloproc/internal/config"
	"github.com/loykin/soloproc/internal/history"
	"github.com/loykin/soloproc/internal/logger"
	"github.com/loykin/soloproc/internal/supervisor"
	"github.com/spf13/cobra"
)

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

func buildRoot() *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "soloproc",
		Short: "Single-job worker process supervisor",
		Long: `Soloproc supervises one long-running worker process: it starts the
worker detached with its output captured, reports liveness from the live
process table, stops it with graceful-then-forceful escalation, or runs it
in repeating start/stop cycles.

Examples:
  soloproc start
  soloproc status
  soloproc stop
  soloproc cycle --config=soloproc.toml`,
		// A bare invocation is a usage error, the only kind that exits non-zero.
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("a command is required: start|stop|status|cycle")
		},
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")

	root.AddCommand(
		createStartCommand(flags),
		createStopCommand(flags),
		createStatusCommand(flags),
		createCycleCommand(flags),
	)
	return root
}

// newSupervisor wires config, logging, and the history sink for one operation.
// The returned func releases the sink.
func newSupervisor(flags *GlobalFlags) (*supervisor.Supervisor, func(), error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	log := logger.Config{
		Level:      cfg.Log.Level,
		Color:      cfg.Log.Color,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}.NewSlogger()
	slog.SetDefault(log)

	sup := supervisor.New(cfg)
	sup.SetLogger(log)
	cleanup := func() {}
	if sink, err := history.Open(cfg.HistoryDSN); err != nil {
		log.Warn("history sink unavailable", "dsn", cfg.HistoryDSN, "error", err)
	} else {
		sup.SetHistory(sink)
		cleanup = func() { _ = sink.Close() }
	}
	return sup, cleanup, nil
}

func createStartCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the worker if it is not already running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := newSupervisor(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			// Job outcome never changes the exit code; failures are reported.
			if err := sup.Start(cmd.Context()); err != nil {
				slog.Error("start failed", "error", err)
			}
			return nil
		},
	}
}

func createStopCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the worker, escalating from SIGTERM to SIGKILL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := newSupervisor(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := sup.Stop(cmd.Context()); err != nil {
				slog.Error("stop failed", "error", err)
			}
			return nil
		},
	}
}

func createStatusCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report worker liveness and recent output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := newSupervisor(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := sup.Status(cmd.Context()); err != nil {
				slog.Error("status failed", "error", err)
			}
			return nil
		},
	}
}

func createCycleCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run the worker in repeating start/stop cycles",
		Long: `Cycle starts the worker, lets it run for run_duration, stops it, waits
for cooldown, and repeats until the supervisor itself is interrupted.
An interrupt during the run phase still stops the worker before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := newSupervisor(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := sup.Cycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("cycle ended", "error", err)
			}
			return nil
		},
	}
}
