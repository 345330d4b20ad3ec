// Package watch reports changes to a single input file.
//
// Editors rarely write a file in place: many write a temporary file and
// rename it over the original, which removes the watched inode. A [Watcher]
// therefore watches the file's directory and filters events by name, so
// that it keeps working across such replacements.
//
// Bursts of events (a write followed by a chmod, or several partial writes)
// are collapsed into a single callback once the file has been quiet for the
// debounce interval.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithLogger sets the logger for watch errors.
func WithLogger(l *log.Logger) Option { return func(w *Watcher) { w.logger = l } }

// Watcher calls back when one file is created, written, or replaced.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *log.Logger
}

// New returns a Watcher for path. Nothing is watched until Run is called.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{path: path, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return w
}

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

// Run watches until ctx is cancelled and calls onChange once per settled
// burst of changes. onChange runs on the Run goroutine; a slow callback
// delays later notifications but never loses the last one. Run returns
// ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.logger.Debug("watching for changes", "path", abs)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !relevant(event.Op) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", abs, "error", err)

		case <-timer.C:
			w.logger.Debug("file changed", "path", abs)
			onChange()
		}
	}
}

// relevant reports whether op can change the file's contents. A removal is
// not: the replacement that follows it is reported as a create.
func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
