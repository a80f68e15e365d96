package enumerator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/config"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestEnumerate_GlobWalkFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/app.go", "package main")
	writeFile(t, dir, "node_modules/react/index.js", "// vendored")
	writeFile(t, dir, "README.md", "# hi")

	cfg := config.Default()
	cfg.Project.Root = dir

	res := Enumerate(context.Background(), cfg, nil)
	require.NotEmpty(t, res.Files)
	require.Contains(t, res.Files, "README.md")
	require.Contains(t, res.Files, "src/app.go")
	require.NotContains(t, res.Files, "node_modules/react/index.js")
}

func TestEnumerate_TimeoutYieldsEmptyResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a")

	cfg := config.Default()
	cfg.Project.Root = dir
	cfg.Index.ScanTimeoutMs = 1

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	res := Enumerate(ctx, cfg, nil)
	require.Empty(t, res.Files)
	require.True(t, res.Truncated)
}

func TestIgnoreSet_CuratedPrefixes(t *testing.T) {
	is := NewIgnoreSet(nil)
	require.True(t, is.Match("node_modules/react/index.js"))
	require.True(t, is.Match("src/vendor/node_modules/x.js"))
	require.False(t, is.Match("src/app.go"))
}

func TestIgnoreSet_UserPatterns(t *testing.T) {
	is := NewIgnoreSet([]string{"*.generated.go", "tmp/"})
	require.True(t, is.Match("pkg/types.generated.go"))
	require.True(t, is.Match("tmp/scratch.txt"))
	require.False(t, is.Match("pkg/types.go"))
}
