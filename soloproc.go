package soloproc

import (
	"github.com/loykin/soloproc/internal/config"
	"github.com/loykin/soloproc/internal/history"
	"github.com/loykin/soloproc/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type LogConfig = config.LogConfig

type State = supervisor.State

type HistorySink = history.Sink

type HistoryEvent = history.Event

const (
	StateStopped  = supervisor.StateStopped
	StateRunning  = supervisor.StateRunning
	StateStopping = supervisor.StateStopping
)

// Supervisor is the single-job lifecycle controller. See internal/supervisor.
type Supervisor = supervisor.Supervisor

// DefaultConfig returns a configuration usable without any config file.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a TOML config file merged over DefaultConfig.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// New builds a Supervisor for the given configuration.
func New(cfg Config) *Supervisor { return supervisor.New(cfg) }

// OpenHistory returns a lifecycle event sink for the DSN ("" -> discard).
func OpenHistory(dsn string) (HistorySink, error) { return history.Open(dsn) }
