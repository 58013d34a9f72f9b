package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder keeps the current Config of a long-running process and swaps it
// when the file changes. Each accepted Config is applied process-wide, so
// trees declared after a reload validate under the new settings while
// in-flight calls keep the snapshot they started with.
type Holder struct {
	mu        sync.RWMutex
	config    *Config
	path      string
	logger    zerolog.Logger
	listeners []func(*Config)

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// NewHolder loads path and applies it.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	cfg, err := Load(abs)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Apply()
	return &Holder{
		config: cfg,
		path:   abs,
		logger: logger.With().Str("config", abs).Logger(),
		done:   make(chan struct{}),
	}, nil
}

// Get returns the Config currently in effect.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// OnChange registers fn to run after every successful reload.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Reload re-reads the file. A file that fails to load or validate leaves
// the current Config in effect.
func (h *Holder) Reload() error {
	return h.reload("manual")
}

func (h *Holder) reload(trigger string) error {
	next, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("trigger", trigger).Msg("config rejected, keeping current settings")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.config
	h.config = next
	listeners := slices.Clone(h.listeners)
	h.mu.Unlock()

	next.Apply()
	h.logger.Info().
		Str("trigger", trigger).
		Strs("changed", changedKeys(prev, next)).
		Bool("ignore_unexpected", next.AcceptParams.IgnoreUnexpected).
		Bool("remove_unexpected", next.AcceptParams.RemoveUnexpected).
		Msg("config reloaded")

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// WatchFile reloads whenever the file is written or replaced. The parent
// directory is watched so rename-on-save editors are picked up.
func (h *Holder) WatchFile() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(h.path), err)
	}
	h.watcher = w
	go h.watch(w)
	return nil
}

func (h *Holder) watch(w *fsnotify.Watcher) {
	name := filepath.Base(h.path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == name && ev.Has(fsnotify.Write|fsnotify.Create) {
				_ = h.reload("file:" + ev.Op.String())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Warn().Err(err).Msg("config watcher error")
		case <-h.done:
			return
		}
	}
}

// WatchSignals reloads on SIGHUP until Stop.
func (h *Holder) WatchSignals() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-hup:
				_ = h.reload("sighup")
			case <-h.done:
				return
			}
		}
	}()
}

// Stop ends file and signal watching. Calling it again is a no-op.
func (h *Holder) Stop() {
	h.once.Do(func() {
		close(h.done)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

// changedKeys lists the YAML keys whose values differ between a and b,
// limited to what takes effect without a restart.
func changedKeys(a, b *Config) []string {
	var keys []string
	diff := func(key string, changed bool) {
		if changed {
			keys = append(keys, key)
		}
	}
	pa, pb := a.AcceptParams, b.AcceptParams
	diff("accept_params.ignore_unexpected", pa.IgnoreUnexpected != pb.IgnoreUnexpected)
	diff("accept_params.remove_unexpected", pa.RemoveUnexpected != pb.RemoveUnexpected)
	diff("accept_params.ignore_params", !slices.Equal(pa.IgnoreParams, pb.IgnoreParams))
	diff("accept_params.ignore_columns", !slices.Equal(pa.IgnoreColumns, pb.IgnoreColumns))
	diff("language", a.Language != b.Language)
	diff("logging.level", a.Logging.Level != b.Logging.Level)
	return keys
}
