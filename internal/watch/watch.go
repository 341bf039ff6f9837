// Package watch notifies the simulator when a profile file changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher calls a callback each time a single file is written, created or
// replaced. The parent directory is watched so that editors which save by
// rename are still observed.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onChange func()
	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher for path.
//
// Precondition: onChange must be non-nil.
// Postcondition: returns a Watcher registered on the parent directory, or an error.
func New(path string, logger *zap.Logger, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		logger:   logger,
		onChange: onChange,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start delivers change notifications until Stop is called.
//
// Postcondition: returns nil after Stop, or the first watcher error.
func (w *Watcher) Start() error {
	for {
		select {
		case <-w.done:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("profile changed",
				zap.String("path", w.path),
				zap.String("op", ev.Op.String()),
			)
			w.onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", w.path, err)
		}
	}
}

// Stop ends Start and releases the underlying watcher. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing watcher", zap.Error(err))
		}
	})
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
