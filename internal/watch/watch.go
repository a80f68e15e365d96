// Package watch implements the background refresh hook for the `server`
// long-running process (SPEC_FULL.md ambient stack): a debounced
// fsnotify.Watcher that coalesces filesystem events and hands a batch
// of changed paths to a callback once the tree goes quiet. The CLI's
// one-shot pipeline never watches; this only runs under `mantic server`.
// Grounded on the teacher's internal/indexing/watcher.go
// FileWatcher/eventDebouncer pair, trimmed to path-level coalescing
// since mantic's refresh (unlike the teacher's) re-parses whole files
// rather than tracking per-symbol deltas.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/theodags/mantic/internal/diag"
)

// skipDirs mirrors the enumerator's built-in ignore set for directories
// that are never worth a watch descriptor.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, ".mantic": true,
}

// Watcher debounces filesystem change events under a project root.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *diag.Logger

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// New creates a Watcher rooted at root, recursively adding a watch
// descriptor to every directory that is not in the built-in skip set.
func New(root string, debounce time.Duration, logger *diag.Logger) (*Watcher, error) {
	if logger == nil {
		logger = diag.Default
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger,
		pending:  make(map[string]bool),
	}

	if err := w.addWatches(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // transient per-path error (spec §7); skip and continue
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.WarnOnce("watch-add-"+path, "failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Run processes filesystem events until ctx is cancelled, invoking
// onChange with the set of changed relative paths once the debounce
// window elapses with no further activity.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnOnce("watch-error", "watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, onChange func(paths []string)) {
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			_ = w.addWatches(event.Name)
		}
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		rel = event.Name
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "..") {
		return
	}

	w.mu.Lock()
	w.pending[rel] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(onChange) })
	w.mu.Unlock()
}

func (w *Watcher) flush(onChange func(paths []string)) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	onChange(paths)
}
