// Package watcher re-triggers packaging when plugin sources change
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/plugforge/plugforge/pkg/logger"
)

// defaultSettling batches rapid-fire editor saves into one trigger
const defaultSettling = 500 * time.Millisecond

// Directories never worth watching inside a plugin tree
var defaultExclusions = []string{"Binaries", "Intermediate", "Saved", ".git", ".plugforge"}

// Watcher watches a plugin directory tree and invokes a callback once
// changes have settled
type Watcher struct {
	watcher    *fsnotify.Watcher
	logger     logger.Logger
	settling   time.Duration
	exclusions []string

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a new plugin source watcher
func New(log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:    fsw,
		logger:     log,
		settling:   defaultSettling,
		exclusions: defaultExclusions,
		pending:    make(map[string]struct{}),
	}, nil
}

// SetSettlingDelay sets the delay for event settling
func (w *Watcher) SetSettlingDelay(delay time.Duration) {
	w.mu.Lock()
	w.settling = delay
	w.mu.Unlock()
}

// Close closes the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch recursively watches root and calls onChange with the batch of
// changed paths each time events settle. It blocks until the context is
// cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context, root string, onChange func(paths []string)) error {
	if err := w.addTree(root); err != nil {
		return err
	}

	w.logger.Info(fmt.Sprintf("Watching %s for changes", root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.isExcluded(event.Name) {
				continue
			}
			// New directories need to be added to the watch set
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn(fmt.Sprintf("Failed to watch new directory %s: %v", event.Name, err))
					}
				}
			}
			w.record(event.Name, onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(fmt.Sprintf("Watcher error: %v", err))
		}
	}
}

// record notes a changed path and (re)arms the settling timer
func (w *Watcher) record(path string, onChange func(paths []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settling, func() {
		w.mu.Lock()
		paths := make([]string, 0, len(w.pending))
		for p := range w.pending {
			paths = append(paths, p)
		}
		w.pending = make(map[string]struct{})
		w.mu.Unlock()

		if len(paths) > 0 {
			onChange(paths)
		}
	})
}

// addTree adds a directory and all non-excluded subdirectories
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.isExcluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn(fmt.Sprintf("Failed to watch directory %s: %v", path, err))
		}
		return nil
	})
}

func (w *Watcher) isExcluded(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, excl := range w.exclusions {
			if part == excl {
				return true
			}
		}
	}
	return false
}
