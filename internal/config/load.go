package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dshills/keyloop/internal/config/loader"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "KEYLOOP"

// ErrConfigNotFound is returned when an explicitly named config file does
// not exist.
var ErrConfigNotFound = errors.New("config file not found")

// SetDefaults registers every built-in value on v so that environment
// variables and flags can override any key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("hotkeys.start", d.Hotkeys.Start)
	v.SetDefault("hotkeys.stop", d.Hotkeys.Stop)
	v.SetDefault("record.path", d.Record.Path)
	v.SetDefault("record.watch", d.Record.Watch)
	v.SetDefault("playback.poll_interval", d.Playback.PollInterval)
	v.SetDefault("playback.restart_delay", d.Playback.RestartDelay)
	v.SetDefault("playback.max_duration", d.Playback.MaxDuration)
	v.SetDefault("session.idle_stop", d.Session.IdleStop)
	v.SetDefault("input.source", d.Input.Source)
	v.SetDefault("input.queue_size", d.Input.QueueSize)
	v.SetDefault("output.sink", d.Output.Sink)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
}

// Load builds the effective configuration on v.
//
// If path is empty the default locations are searched and a missing file
// is not an error. An explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	explicit := path != ""
	if !explicit {
		path = Discover()
	}
	if path != "" {
		values, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		if values == nil && explicit {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		if values != nil {
			if err := v.MergeConfigMap(values); err != nil {
				return nil, fmt.Errorf("merging %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths returns the config file candidates in priority order.
func SearchPaths() []string {
	paths := []string{"keyloop.toml", "keyloop.yaml", "keyloop.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, "keyloop")
		paths = append(paths,
			filepath.Join(base, "config.toml"),
			filepath.Join(base, "config.yaml"),
		)
	}
	return paths
}

// Discover returns the first existing config file, or "".
func Discover() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
