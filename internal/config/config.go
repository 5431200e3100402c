package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LogConfig controls the supervisor's own structured log output.
// When File is set the log is additionally written there with rotation
// (lumberjack semantics), which matters for long-lived cycle runs.
type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"` // debug|info|warn|error
	Color      bool   `toml:"color" mapstructure:"color"`
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Config is the top-level TOML structure.
type Config struct {
	// Worker invocation: <worker_command> <threads> --cache=<cache_path>
	WorkerCommand string `toml:"worker_command" mapstructure:"worker_command"`
	CachePath     string `toml:"cache_path" mapstructure:"cache_path"`
	ReservedCores int    `toml:"reserved_cores" mapstructure:"reserved_cores"`

	// Persisted records, relative to the working directory by default.
	// OutputFile receives the worker's combined stdout/stderr; it is handed
	// to the detached child as a plain file descriptor so it keeps filling
	// after the supervisor invocation exits.
	PIDFile    string `toml:"pidfile" mapstructure:"pidfile"`
	OutputFile string `toml:"output_file" mapstructure:"output_file"`
	TailLines  int    `toml:"tail_lines" mapstructure:"tail_lines"`

	SettleWait   time.Duration `toml:"settle_wait" mapstructure:"settle_wait"`     // pause after spawn before reporting
	GracefulWait time.Duration `toml:"graceful_wait" mapstructure:"graceful_wait"` // SIGTERM grace period
	KillWait     time.Duration `toml:"kill_wait" mapstructure:"kill_wait"`         // reap window after SIGKILL

	RunDuration time.Duration `toml:"run_duration" mapstructure:"run_duration"` // cycle: time the worker runs
	Cooldown    time.Duration `toml:"cooldown" mapstructure:"cooldown"`         // cycle: pause between runs

	HistoryDSN string `toml:"history_dsn" mapstructure:"history_dsn"` // optional sqlite lifecycle audit

	Log LogConfig `toml:"log" mapstructure:"log"`
}

// Default returns a configuration usable without any config file.
func Default() Config {
	return Config{
		WorkerCommand: "./worker",
		CachePath:     "./cache",
		ReservedCores: 1,
		PIDFile:       "worker.pid",
		OutputFile:    "worker.out",
		TailLines:     20,
		SettleWait:    3 * time.Second,
		GracefulWait:  5 * time.Second,
		KillWait:      2 * time.Second,
		RunDuration:   time.Hour,
		Cooldown:      30 * time.Second,
		Log:           LogConfig{Level: "info", Color: true},
	}
}

// Load reads a TOML config file and merges it over Default. An empty path
// returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	if c.TailLines <= 0 {
		c.TailLines = 20
	}
	if c.SettleWait < 0 {
		c.SettleWait = 0
	}
	if c.GracefulWait <= 0 {
		c.GracefulWait = 5 * time.Second
	}
	if c.KillWait <= 0 {
		c.KillWait = 2 * time.Second
	}
	return c
}
