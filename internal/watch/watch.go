// Package watch reports changes to project files so they can be exported
// again.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting.
const DefaultDebounce = 200 * time.Millisecond

// Config selects the files to watch.
type Config struct {
	Files    []string // exact files
	Patterns []string // doublestar patterns, matched against cleaned paths
	Debounce time.Duration
}

// Watcher calls a handler with the changed files after each debounced burst.
// Parent directories are watched rather than the files themselves, so
// editors that save by renaming a temp file are still seen.
type Watcher struct {
	cfg      Config
	files    map[string]bool
	fsw      *fsnotify.Watcher
	log      logrus.FieldLogger
	debounce *debouncer
}

// New creates a watcher for cfg. handle receives sorted, de-duplicated
// paths and runs on the debouncer's goroutine.
func New(cfg Config, log logrus.FieldLogger, handle func(paths []string)) (*Watcher, error) {
	if len(cfg.Files) == 0 && len(cfg.Patterns) == 0 {
		return nil, errors.New("watch: nothing to watch")
	}
	for _, p := range cfg.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.New("watch: bad pattern " + p)
		}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:   cfg,
		files: make(map[string]bool),
		fsw:   fsw,
		log:   log,
	}
	w.debounce = newDebouncer(cfg.Debounce, handle)

	dirs := make(map[string]bool)
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for _, p := range cfg.Patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		dirs[filepath.Clean(filepath.FromSlash(base))] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
		log.WithField("dir", dir).Debug("watching directory")
	}
	return w, nil
}

// Run dispatches events until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.Matches(ev.Name) {
				continue
			}
			w.log.WithFields(logrus.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("file event")
			w.debounce.add(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

// Matches reports whether path is one of the watched files.
func (w *Watcher) Matches(path string) bool {
	abs, err := filepath.Abs(path)
	if err == nil && w.files[abs] {
		return true
	}
	slashed := filepath.ToSlash(filepath.Clean(path))
	for _, p := range w.cfg.Patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(p), slashed); ok {
			return true
		}
	}
	return false
}

type debouncer struct {
	window time.Duration
	handle func([]string)

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	stopped bool
}

func newDebouncer(window time.Duration, handle func([]string)) *debouncer {
	return &debouncer{window: window, handle: handle, pending: make(map[string]bool)}
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[path] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]bool)
	d.timer = nil
	d.mu.Unlock()

	sort.Strings(paths)
	d.handle(paths)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
