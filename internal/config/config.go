package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/logging"
)

// Allowed values for enumerated settings.
var (
	IdleStopPolicies = []string{"ignore", "exit", "disarm"}
	InputSources     = []string{"terminal", "none"}
	OutputSinks      = []string{"trace", "virtual"}
	LogFormats       = []string{"text", "json"}
)

// MaxPollInterval is the coarsest accepted playback polling quantum.
const MaxPollInterval = 10 * time.Millisecond

// Config holds every keyloop setting.
type Config struct {
	Hotkeys  HotkeyConfig   `mapstructure:"hotkeys"`
	Record   RecordConfig   `mapstructure:"record"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Session  SessionConfig  `mapstructure:"session"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// HotkeyConfig holds the start and stop chords.
type HotkeyConfig struct {
	Start string `mapstructure:"start"`
	Stop  string `mapstructure:"stop"`
}

// RecordConfig controls where sequences are stored.
type RecordConfig struct {
	// Path is the sequence document location.
	Path string `mapstructure:"path"`
	// Watch reloads the document when it changes on disk while idle.
	Watch bool `mapstructure:"watch"`
}

// PlaybackConfig tunes the playback scheduler.
type PlaybackConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RestartDelay time.Duration `mapstructure:"restart_delay"`
	// MaxDuration caps one playback session; zero means unlimited.
	MaxDuration time.Duration `mapstructure:"max_duration"`
}

// SessionConfig controls the session controller.
type SessionConfig struct {
	// IdleStop is what a stop trigger does while idle: "ignore", "exit"
	// or "disarm".
	IdleStop string `mapstructure:"idle_stop"`
}

// InputConfig selects the input source.
type InputConfig struct {
	Source    string `mapstructure:"source"`
	QueueSize int    `mapstructure:"queue_size"`
}

// OutputConfig selects the output sink.
type OutputConfig struct {
	Sink string `mapstructure:"sink"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Listen
// disables it.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hotkeys: HotkeyConfig{
			Start: "<ctrl>+<alt>+b",
			Stop:  "<ctrl>+<alt>+h",
		},
		Record: RecordConfig{
			Path: "data.json",
		},
		Playback: PlaybackConfig{
			PollInterval: 2 * time.Millisecond,
			RestartDelay: time.Second,
			MaxDuration:  7 * time.Hour,
		},
		Session: SessionConfig{
			IdleStop: "disarm",
		},
		Input: InputConfig{
			Source:    "terminal",
			QueueSize: 256,
		},
		Output: OutputConfig{
			Sink: "trace",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(key, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Key: key, Msg: msg, Value: value, Code: code})
	}

	start, err := key.ParseChord(c.Hotkeys.Start)
	if err != nil {
		add("hotkeys.start", err.Error(), c.Hotkeys.Start, ErrCodePatternMismatch)
	}
	stop, err2 := key.ParseChord(c.Hotkeys.Stop)
	if err2 != nil {
		add("hotkeys.stop", err2.Error(), c.Hotkeys.Stop, ErrCodePatternMismatch)
	}
	if err == nil && err2 == nil && sameChord(start, stop) {
		add("hotkeys.stop", "must differ from hotkeys.start", c.Hotkeys.Stop, ErrCodeConflict)
	}

	if c.Record.Path == "" {
		add("record.path", "must not be empty", c.Record.Path, ErrCodeRequiredMissing)
	}

	if c.Playback.PollInterval <= 0 || c.Playback.PollInterval > MaxPollInterval {
		add("playback.poll_interval", fmt.Sprintf("must be in (0, %s]", MaxPollInterval), c.Playback.PollInterval, ErrCodeOutOfRange)
	}
	if c.Playback.RestartDelay < 0 {
		add("playback.restart_delay", "must not be negative", c.Playback.RestartDelay, ErrCodeOutOfRange)
	}
	if c.Playback.MaxDuration < 0 {
		add("playback.max_duration", "must not be negative", c.Playback.MaxDuration, ErrCodeOutOfRange)
	}

	checkEnum := func(path, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			add(path, fmt.Sprintf("must be one of %v", allowed), value, ErrCodeInvalidEnum)
		}
	}
	checkEnum("session.idle_stop", c.Session.IdleStop, IdleStopPolicies)
	checkEnum("input.source", c.Input.Source, InputSources)
	checkEnum("output.sink", c.Output.Sink, OutputSinks)
	checkEnum("log.format", c.Log.Format, LogFormats)

	if c.Input.QueueSize <= 0 {
		add("input.queue_size", "must be positive", c.Input.QueueSize, ErrCodeOutOfRange)
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		add("log.level", "must be one of [debug info warn error]", c.Log.Level, ErrCodeInvalidEnum)
	}

	return errors.Join(errs...)
}

// sameChord reports whether two canonical chords hold the same keys.
func sameChord(a, b []key.Key) bool {
	if len(a) != len(b) {
		return false
	}
	for _, k := range a {
		if !slices.Contains(b, k) {
			return false
		}
	}
	return true
}
