// Package config loads and validates keyloop's settings.
//
// Settings come from four layers, highest priority first:
//
//  1. Command-line flags bound to the viper instance
//  2. KEYLOOP_* environment variables (KEYLOOP_PLAYBACK_POLL_INTERVAL, ...)
//  3. A TOML or YAML config file
//  4. Built-in defaults
//
// Load merges the layers and returns a validated Config.
package config
