// Ignore-pattern handling for the File Enumerator (spec §4.1): a curated
// prefix set for performance, a compiled glob set for complex patterns,
// plus user-supplied overrides. Grounded on the teacher's
// internal/indexing/pipeline_scanner.go / watcher.go glob handling, which
// already imports doublestar/v4 for ** patterns.
package enumerator

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/theodags/mantic/internal/config"
)

// DefaultIgnorePrefixes is the curated set of directory prefixes dropped
// before any glob matching runs, because checking these first dominates
// enumeration speed on large trees (spec §4.1).
var DefaultIgnorePrefixes = []string{
	"node_modules/",
	".git/",
	"dist/",
	"build/",
	"target/",
	"vendor/",
	"__pycache__/",
	".venv/",
	"venv/",
	".next/",
	".nuxt/",
	"coverage/",
	".cache/",
	".turbo/",
	// OS-sensitive directories (spec §4.1)
	"Windows/",
	"$Recycle.Bin/",
	"System Volume Information/",
	"AppData/",
	"Program Files/",
	"Program Files (x86)/",
}

// DefaultIgnoreGlobs is the curated glob-pattern set for patterns that
// cannot be expressed as a plain prefix.
var DefaultIgnoreGlobs = []string{
	"**/*.min.js",
	"**/*.map",
	"**/.DS_Store",
	"**/*.pyc",
	"**/*.class",
	"**/*.o",
	"**/*.so",
	"**/*.dylib",
	"**/*.dll",
	"**/*.exe",
}

// IgnoreSet is a compiled, ready-to-match ignore configuration.
type IgnoreSet struct {
	prefixes  []string
	globs     []string
	gitignore *config.GitignoreParser
}

// NewIgnoreSet compiles the curated defaults plus any user-supplied
// patterns (spec §4.1, MANTIC_IGNORE_PATTERNS via config.Exclude).
func NewIgnoreSet(extra []string) *IgnoreSet {
	is := &IgnoreSet{
		prefixes: append([]string{}, DefaultIgnorePrefixes...),
		globs:    append([]string{}, DefaultIgnoreGlobs...),
	}
	for _, p := range extra {
		if strings.HasSuffix(p, "/") || !strings.ContainsAny(p, "*?[") {
			is.prefixes = append(is.prefixes, ensureTrailingSlash(p))
			continue
		}
		// A glob without a slash matches at any depth, as in .gitignore.
		if !strings.Contains(p, "/") {
			p = "**/" + p
		}
		is.globs = append(is.globs, p)
	}
	return is
}

func ensureTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// Match reports whether path (repository-relative, forward-slash) should
// be excluded.
func (is *IgnoreSet) Match(path string) bool {
	for _, prefix := range is.prefixes {
		if strings.HasPrefix(path, prefix) || strings.Contains(path, "/"+prefix) {
			return true
		}
	}
	for _, g := range is.globs {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	if is.gitignore != nil {
		isDir := strings.HasSuffix(path, "/")
		if is.gitignore.ShouldIgnore(strings.TrimSuffix(path, "/"), isDir) {
			return true
		}
	}
	return false
}
