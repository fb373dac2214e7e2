// Package config loads deckshow settings from defaults, a YAML file and
// DECKSHOW_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "deckshow.yml"

// EnvPrefix prefixes environment overrides
const EnvPrefix = "DECKSHOW_"

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Deck:     "deck.dsh",
		DecksDir: ".",
		Pipeline: PipelineInProcess,
		BinDir:   ".bin",
		WasmPath: ".bin/deckshow.wasm",
		Width:    1920,
		Height:   1080,
		Store: StoreConfig{
			Backend: StoreSQLite,
			Path:    ".deckshow/deckshow.db",
			Prefix:  "steam-presentation-",
		},
		TimerMinutes:   10,
		SwipeThreshold: 50,
		IdleHide:       3,
		Theme:          "default",
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Log: LogConfig{Level: "info"},
	}
}

// nested are the config sections that env names map into
var nested = []string{"store", "server", "log"}

// envKey maps DECKSHOW_STORE_BACKEND to store.backend and
// DECKSHOW_TIMER_MINUTES to timer_minutes
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range nested {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Load reads the YAML file at path, when it exists, over the defaults and
// then applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validPipelines = map[PipelineKind]bool{
	PipelineInProcess: true,
	PipelineNative:    true,
	PipelineWazero:    true,
}

var validBackends = map[StoreBackend]bool{
	StoreMemory: true,
	StoreFile:   true,
	StoreSQLite: true,
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that the configuration contains valid values
func (c *Config) Validate() error {
	if c.Deck == "" && c.RemoteURL == "" {
		return fmt.Errorf("deck or remote_url is required")
	}
	if !validPipelines[c.Pipeline] {
		return fmt.Errorf("invalid pipeline %q: must be one of inprocess, native, wazero", c.Pipeline)
	}
	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("invalid store.backend %q: must be one of memory, file, sqlite", c.Store.Backend)
	}
	if c.Store.Backend != StoreMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	if c.TimerMinutes < 1 {
		return fmt.Errorf("timer_minutes must be at least 1")
	}
	if c.SwipeThreshold < 0 {
		return fmt.Errorf("swipe_threshold must be non-negative")
	}
	if c.IdleHide < 0 {
		return fmt.Errorf("idle_hide must be non-negative")
	}
	for name, n := range c.Sections {
		if n < 1 {
			return fmt.Errorf("section %q points at slide %d", name, n)
		}
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// IdleHideDuration is IdleHide as a duration
func (c *Config) IdleHideDuration() time.Duration {
	return time.Duration(c.IdleHide) * time.Second
}
