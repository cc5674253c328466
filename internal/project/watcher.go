package project

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the discovery cache when descriptor files change
// on disk: a registry entry is added or removed, or a scanned
// project's .mdt.yaml appears, changes, or disappears. Discovery keeps
// working without it — the cache TTL already bounds staleness — but
// the watcher makes registration and descriptor edits visible
// immediately.
type Watcher struct {
	discovery *Discovery
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
}

// NewWatcher creates a watcher over the discovery service's registry
// directory and scan roots.
func NewWatcher(discovery *Discovery, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		discovery: discovery,
		logger:    logger,
		watcher:   fsw,
		debounce:  200 * time.Millisecond,
	}, nil
}

// Start watches until the context is canceled. Watch targets that do
// not exist yet are skipped; events are debounced so a burst of writes
// causes one invalidation.
func (w *Watcher) Start(ctx context.Context) {
	w.addTarget(w.discovery.Registry.Dir)
	for _, root := range w.discovery.Scanner.Roots {
		if !strings.ContainsAny(root, "*?[{") {
			w.addTarget(root)
		}
	}

	go w.loop(ctx)
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addTarget(dir string) {
	if dir == "" {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug("watch target unavailable", "dir", dir, "err", err)
	}
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.logger.Debug("descriptor change detected; invalidating discovery cache")
			w.discovery.Invalidate()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// relevant filters events down to descriptor-shaped files: the
// per-project descriptor and YAML registry entries.
func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if name == DescriptorFile {
		return true
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
