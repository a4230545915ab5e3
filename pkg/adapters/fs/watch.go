package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/kardex/kardex/pkg/core"
)

// debounceDelay coalesces the event bursts editors produce on save
// (truncate, write, chmod) into a single notification per set.
const debounceDelay = 50 * time.Millisecond

// Watch emits an event whenever a deck file matching pattern is created,
// modified or removed. An empty pattern uses the repository's configured
// pattern. The returned channel closes when ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = r.config.Pattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: invalid watch pattern %q", core.ErrInvalidInput, pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := r.recursiveAdd(watcher); err != nil {
		watcher.Close()
		return nil, err
	}

	events := make(chan core.Event, 16)
	w := &watchWorker{
		repo:      r,
		pattern:   pattern,
		watcher:   watcher,
		events:    events,
		debouncer: newDebouncer(debounceDelay),
	}
	go w.run(ctx)

	return events, nil
}

// recursiveAdd registers the deck directory and all its subdirectories,
// skipping the system directory and dot directories.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != r.Path && (name == r.config.SystemDir || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

type watchWorker struct {
	repo      *Repository
	pattern   string
	watcher   *fsnotify.Watcher
	events    chan core.Event
	debouncer *debouncer
}

func (w *watchWorker) run(ctx context.Context) {
	defer close(w.events)
	defer w.watcher.Close()
	defer w.debouncer.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.repo.logger.Error("fsnotify error", "error", err)
		}
	}
}

func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	// New subdirectories must be watched too; fsnotify is not recursive.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") && filepath.Base(event.Name) != w.repo.config.SystemDir {
				_ = w.watcher.Add(event.Name)
			}
			return
		}
	}

	relPath, err := filepath.Rel(w.repo.Path, event.Name)
	if err != nil {
		return
	}
	relPath = filepath.ToSlash(relPath)

	if w.shouldIgnore(relPath) {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.repo.logger.Debug("deck change", "set", relPath, "type", eType)
	w.debouncer.add(relPath, func() {
		select {
		case w.events <- core.Event{Type: eType, Set: relPath, Timestamp: time.Now().Unix()}:
		case <-ctx.Done():
		}
	})
}

func (w *watchWorker) shouldIgnore(relPath string) bool {
	if w.repo.hidden(relPath) {
		return true
	}
	if strings.HasPrefix(filepath.Base(relPath), TempFilePrefix) {
		return true
	}
	ok, err := doublestar.Match(w.pattern, relPath)
	return err != nil || !ok
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// debouncer delays the callback per key, resetting the timer when the same
// key fires again within the delay window.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(key string, fire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stopped := d.stopped
		delete(d.timers, key)
		d.mu.Unlock()
		if !stopped {
			fire()
		}
	})
}

// stop cancels all pending timers and rejects new events. Safe to call while
// timers are firing; late timers see stopped and do not fire their callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

var _ core.Watchable = (*Repository)(nil)
