// Package watch re-runs a callback when a source file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sable-lang/sable/internal/cli"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Op describes what happened to the watched file.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Event is delivered to the callback after the debounce window closes.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher follows a single file. The containing directory is watched so
// that editors which save by rename are still noticed.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *cli.Logger
	w        *fsnotify.Watcher
}

// New creates a watcher for path. logger may be nil.
func New(path string, debounce time.Duration, logger *cli.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: abs, debounce: debounce, logger: logger, w: w}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close releases the underlying OS watch.
func (w *Watcher) Close() error { return w.w.Close() }

// Run blocks until ctx is cancelled or the watcher fails, calling onChange
// once per debounced burst of create or write events on the file.
// Removes and renames are logged but do not trigger a run.
func (w *Watcher) Run(ctx context.Context, onChange func(Event)) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			op := convertOp(ev.Op)
			if op&(OpCreate|OpWrite) == 0 {
				w.logger.Debug("ignoring %s on %s", ev.Op, ev.Name)
				continue
			}
			pending.Path = w.path
			pending.Op |= op
			pending.Time = time.Now()
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.logger.Debug("change on %s", pending.Path)
			onChange(pending)
			pending = Event{}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

func convertOp(in fsnotify.Op) Op {
	var op Op
	if in&fsnotify.Create != 0 {
		op |= OpCreate
	}
	if in&fsnotify.Write != 0 {
		op |= OpWrite
	}
	if in&fsnotify.Remove != 0 {
		op |= OpRemove
	}
	if in&fsnotify.Rename != 0 {
		op |= OpRename
	}
	return op
}
