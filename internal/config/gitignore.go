// Gitignore-style pattern matching, adapted from the teacher's
// internal/config/gitignore.go. Used by the enumerator to honor a
// project's own .gitignore when RespectGitignore is set (spec §4.1).
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// GitignoreParser parses and matches .gitignore-style patterns.
type GitignoreParser struct {
	patterns   []GitignorePattern
	regexCache sync.Map
}

// GitignorePattern is one parsed, pre-analyzed pattern.
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	patternType PatternType
	compiled    *regexp.Regexp
	prefix      string
	suffix      string
}

// PatternType classifies a pattern for fast-path matching.
type PatternType int

const (
	PatternExact PatternType = iota
	PatternPrefix
	PatternSuffix
	PatternComplex
	PatternWildcard
)

// NewGitignoreParser creates an empty parser.
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{patterns: make([]GitignorePattern, 0)}
}

// LoadGitignore loads patterns from a .gitignore file under rootPath. A
// missing file is not an error (spec §4.1 "permission-denied errors are
// swallowed").
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern parses and appends a single pattern line.
func (gp *GitignoreParser) AddPattern(line string) {
	pattern := GitignorePattern{}
	line = gp.extractModifiers(&pattern, line)
	pattern.Pattern = line
	pattern.patternType, pattern.prefix, pattern.suffix, pattern.compiled = gp.analyzePattern(line)
	gp.patterns = append(gp.patterns, pattern)
}

func (gp *GitignoreParser) extractModifiers(pattern *GitignorePattern, line string) string {
	if strings.HasPrefix(line, "!") {
		pattern.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		pattern.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		pattern.Absolute = true
		line = line[1:]
	}
	return line
}

func (gp *GitignoreParser) analyzePattern(pattern string) (PatternType, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return PatternExact, pattern, pattern, nil
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") && !strings.Contains(pattern, "[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return PatternSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return PatternPrefix, pattern[:len(pattern)-1], "", nil
		}
	}

	regexPattern := globToRegex(pattern)
	if cached, ok := gp.regexCache.Load(regexPattern); ok {
		return PatternComplex, "", "", cached.(*regexp.Regexp)
	}
	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return PatternWildcard, "", "", nil
	}
	gp.regexCache.Store(regexPattern, compiled)
	return PatternComplex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// ShouldIgnore reports whether path (repository-relative, forward-slash)
// is ignored, honoring the last-match-wins / negation semantics of
// .gitignore.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, pattern := range gp.patterns {
		if gp.matchesPattern(pattern, path, isDir) {
			ignored = !pattern.Negate
		}
	}
	return ignored
}

func (gp *GitignoreParser) matchesPattern(pattern GitignorePattern, path string, isDir bool) bool {
	if pattern.Directory {
		if isDir {
			return gp.matchDirectory(pattern, path)
		}
		return gp.matchInsideDirectory(pattern, path)
	}

	if pattern.Absolute {
		return gp.fastMatch(pattern, path)
	}

	if gp.fastMatch(pattern, path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts); i++ {
		if gp.fastMatch(pattern, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (gp *GitignoreParser) fastMatch(pattern GitignorePattern, path string) bool {
	switch pattern.patternType {
	case PatternExact:
		return pattern.Pattern == path
	case PatternPrefix:
		return strings.HasPrefix(path, pattern.prefix)
	case PatternSuffix:
		return strings.HasSuffix(path, pattern.suffix)
	case PatternComplex:
		return pattern.compiled.MatchString(path)
	case PatternWildcard:
		matched, _ := filepath.Match(pattern.Pattern, path)
		return matched
	default:
		return pattern.Pattern == path
	}
}

func (gp *GitignoreParser) matchDirectory(pattern GitignorePattern, path string) bool {
	if gp.fastMatch(pattern, path) {
		return true
	}
	if strings.HasSuffix(pattern.Pattern, "/**") {
		base := strings.TrimSuffix(pattern.Pattern, "/**")
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

func (gp *GitignoreParser) matchInsideDirectory(pattern GitignorePattern, path string) bool {
	if strings.HasPrefix(path, pattern.Pattern+"/") {
		return true
	}
	return gp.fastMatch(pattern, path)
}
