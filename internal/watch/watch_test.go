package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesBurstIntoSingleCallback(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))

	w, err := New(root, 100*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	done := make(chan struct{})

	go func() {
		_ = w.Run(ctx, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
			close(done)
		})
	}()

	// give fsnotify a moment to register its watch descriptors.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n// v2"), 0o644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n// v3"), 0o644))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1, "two rapid writes to the same file should coalesce into one callback")
	require.Contains(t, batches[0], "a.go")
}

func TestWatcher_IgnoresSkippedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))

	w, err := New(root, 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, func(paths []string) {}) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.js"), []byte("x"), 0o644))

	// no assertion on a callback firing; this only guards against addWatches
	// panicking or erroring when it walks into a skip-listed directory.
	time.Sleep(150 * time.Millisecond)
}
