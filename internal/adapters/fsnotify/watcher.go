// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches the directory holding the corpus file, filters events down to
// that one file, and debounces bursts (editors and export tools often write a
// file in several chunks or replace it by rename).
package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before onChange fires.
const DefaultDebounce = 250 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	// OnError receives watcher errors. Nil drops them; fsnotify recovers on its own.
	OnError func(error)
}

// NewWatcher creates a new file watcher. debounce <= 0 uses DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. onChange is called with the absolute path
// once writes, creates, renames or removals of the file have settled.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	} else if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", dir)
	}
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(absPath, onChange)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				if w.OnError != nil {
					w.OnError(err)
				}

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)arms the debounce timer so one callback fires per burst.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			onChange(path)
		}
	})
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fw.Close()
}
