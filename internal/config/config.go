// Package config loads and hot-reloads the demo binary's strategy
// parameters from a TOML file, the way the teacher's own Option
// functions default the core package but exposed here as a
// serializable struct so an operator can edit it without a rebuild.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunables for building a lineterm.Strategy.
type Config struct {
	// Strategy selects which emission strategy to build: "immediate",
	// "fixed", or "stateful".
	Strategy string `toml:"strategy"`
	// TimeoutMS is the coalescing window for the "fixed" strategy.
	TimeoutMS int `toml:"timeout_ms"`
	// VolatileMS is the flush delay for "stateful" while a line is
	// under active cursor motion or erasure.
	VolatileMS int `toml:"volatile_ms"`
	// StableMS is the flush delay for "stateful" once a line has
	// settled into plain text.
	StableMS int `toml:"stable_ms"`
	// MaxPending bounds the adapter's polling buffer.
	MaxPending int `toml:"max_pending"`
	// LogLevel is passed straight through to obslog.Config.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is present.
// Timeouts match the emission strategies' own documented defaults:
// fixed=100ms, stateful volatile=50ms/stable=200ms.
func DefaultConfig() Config {
	return Config{
		Strategy:   "stateful",
		TimeoutMS:  100,
		VolatileMS: 50,
		StableMS:   200,
		MaxPending: 1000,
		LogLevel:   "info",
	}
}

// Load reads and parses a TOML config file at path. A missing file is
// not an error: DefaultConfig is returned instead, matching the
// teacher's policy of sane defaults over required configuration.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Watcher hot-reloads a config file on write, invoking onChange with
// the newly parsed Config each time. It tolerates parse errors on an
// in-progress edit by keeping the last good Config.
type Watcher struct {
	mu       sync.RWMutex
	path     string
	current  Config
	fsw      *fsnotify.Watcher
	onChange func(Config)
	done     chan struct{}
}

// WatchFile starts watching path for changes, calling onChange (if
// non-nil) whenever it reparses successfully. The returned Watcher
// must be closed with Stop.
func WatchFile(path string, onChange func(Config)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		current:  cfg,
		fsw:      fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	// A fresh edit may be briefly unreadable mid-write; a short settle
	// avoids reacting to a half-written file.
	time.Sleep(10 * time.Millisecond)

	cfg, err := Load(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop stops watching and releases the underlying file watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsw.Close()
}
