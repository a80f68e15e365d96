// Package semanticindex implements the optional Semantic Index (spec
// §4.5): a persisted, per-project CacheIndex plus an in-process LRU
// fronting re-reads. Persistence style (temp file + atomic rename) is
// grounded on the teacher's manifest save path
// (internal/mcp/context_manifest_tool.go); the LRU is grounded on
// internal/semantic/lru_cache.go (container/list-based).
package semanticindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/theodags/mantic/internal/types"
	"github.com/theodags/mantic/internal/version"
)

// IndexFileName is the persisted index path, relative to the repository
// root's tool directory (spec §4.5, §6).
const IndexFileName = "index.json"

// ToolDir is the tool-private directory name under a project root.
const ToolDir = ".mantic"

// MaxAge is the default staleness window before a full rebuild is
// forced (spec §4.5).
const MaxAge = 24 * time.Hour

// IndexPath returns the absolute path to the persisted index for root.
func IndexPath(root string) string {
	return filepath.Join(root, ToolDir, IndexFileName)
}

// Load reads and validates the persisted index for root. A missing file,
// a version mismatch, a project-root mismatch, or an index older than
// MaxAge all return (nil, nil) so the caller treats it as absent and
// triggers a full rebuild (spec §4.5 "Invalidation").
func Load(root string) (*types.CacheIndex, error) {
	data, err := os.ReadFile(IndexPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var idx types.CacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, nil
	}

	if !isValid(&idx, root) {
		return nil, nil
	}
	return &idx, nil
}

// isValid applies the spec §4.5 invalidation rules (manifest-mtime
// invalidation is applied by the caller, which has enumerator context).
func isValid(idx *types.CacheIndex, root string) bool {
	if idx.Version != version.Version {
		return false
	}
	if filepath.Clean(idx.ProjectRoot) != filepath.Clean(root) {
		return false
	}
	if time.Since(idx.ScannedAt) > MaxAge {
		return false
	}
	return true
}

// Save persists idx to root's index file via a temp-file-plus-rename so
// a concurrent reader never observes a partially written document.
func Save(root string, idx *types.CacheIndex) error {
	dir := filepath.Join(root, ToolDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := ensureIgnoreFile(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "index-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, IndexPath(root))
}

// ensureIgnoreFile writes a `.gitignore` marking the tool directory as
// excluded from version control by default (spec §4.5), while keeping
// the ignore file itself tracked so the exclusion survives a clone.
func ensureIgnoreFile(toolDir string) error {
	p := filepath.Join(toolDir, ".gitignore")
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	return os.WriteFile(p, []byte("*\n!.gitignore\n"), 0o644)
}

// New builds an empty CacheIndex for root.
func New(root string) *types.CacheIndex {
	return &types.CacheIndex{
		Version:     version.Version,
		ScannedAt:   time.Time{},
		ProjectRoot: root,
		Files:       make(map[string]types.FileEntry),
	}
}

// ManifestChanged reports whether a package-manifest file's mtime moved
// past the index's ScannedAt, which forces a full rebuild because the
// tech stack may have changed (spec §4.5).
func ManifestChanged(root string, scannedAt time.Time) bool {
	for _, name := range manifestBasenames {
		info, err := os.Stat(filepath.Join(root, name))
		if err != nil {
			continue
		}
		if info.ModTime().After(scannedAt) {
			return true
		}
	}
	return false
}

var manifestBasenames = []string{
	"package.json", "go.mod", "Cargo.toml", "pyproject.toml", "pom.xml",
	"build.gradle", "build.gradle.kts", "composer.json", "Gemfile",
}
