package routing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/metrics"
)

const (
	// DefaultPollInterval is used when the watcher falls back to polling.
	DefaultPollInterval = 2 * time.Second
	// DefaultFile is the routing file name used when none is configured.
	DefaultFile = "configs/callbacks.json"

	settleDelay = 100 * time.Millisecond
)

// Config locates the routing file.
type Config struct {
	File         string        `yaml:"file" envconfig:"ROUTING_FILE"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"ROUTING_POLL_INTERVAL"`
}

// Normalize fills defaults.
func (c *Config) Normalize() error {
	if c.File == "" {
		c.File = DefaultFile
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("routing.poll_interval must be >= 0")
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	return nil
}

// Store holds the active Table. Readers never block; Reload swaps the pointer.
type Store struct {
	path    string
	poll    time.Duration
	current atomic.Pointer[Table]
}

// NewStore loads the initial table. A failure here is a startup error.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	t, err := Load(cfg.File)
	if err != nil {
		return nil, err
	}
	s := &Store{path: cfg.File, poll: cfg.PollInterval}
	s.current.Store(t)
	logger.Routing.Info("routing loaded",
		slog.String("event", "routing.load"),
		slog.String("path", s.path),
		slog.Int("servers", len(t.Servers)),
		slog.Int("international_servers", len(t.International)),
	)
	return s, nil
}

// Current returns the active table.
func (s *Store) Current() *Table {
	return s.current.Load()
}

// Lookup resolves code against the active table.
func (s *Store) Lookup(code string) (string, bool, bool) {
	return s.Current().Lookup(code)
}

// Reload re-reads the file. On failure the previous table stays active.
func (s *Store) Reload() error {
	start := time.Now()
	t, err := Load(s.path)
	if err != nil {
		metrics.ObserveRoutingReload("error")
		logger.Routing.Warn("routing reload failed",
			slog.String("event", "routing.reload"),
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		return err
	}
	s.current.Store(t)
	metrics.ObserveRoutingReload("ok")
	logger.Routing.Info("routing reloaded",
		slog.String("event", "routing.reload"),
		slog.String("path", s.path),
		slog.Int("servers", len(t.Servers)),
		slog.Int("international_servers", len(t.International)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Watch reloads the table whenever the file changes, until ctx is done.
// It watches the parent directory so atomic renames are seen; when a watcher
// cannot be created it polls the modification time instead.
func (s *Store) Watch(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err == nil {
		err = w.Add(filepath.Dir(s.path))
		if err != nil {
			_ = w.Close()
		}
	}
	if err != nil {
		logger.Routing.Warn("routing watch unavailable, polling",
			slog.String("event", "routing.watch"),
			slog.String("path", s.path),
			slog.Duration("interval", s.poll),
			slog.String("err", err.Error()),
		)
		s.pollLoop(ctx)
		return
	}
	defer w.Close()
	logger.Routing.Debug("routing watch started",
		slog.String("event", "routing.watch"),
		slog.String("path", s.path),
	)

	target := filepath.Clean(s.path)
	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Editors emit bursts of events; reload once they settle.
			settle.Reset(settleDelay)
		case <-settle.C:
			_ = s.Reload()
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Routing.Warn("routing watch error",
				slog.String("event", "routing.watch"),
				slog.String("err", werr.Error()),
			)
		}
	}
}

func (s *Store) pollLoop(ctx context.Context) {
	last := modTime(s.path)
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mt := modTime(s.path)
			if mt.Equal(last) {
				continue
			}
			last = mt
			_ = s.Reload()
		}
	}
}

func modTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
