// Package config holds mantic's runtime configuration: scoring constants,
// index/performance limits, and environment-variable overrides (spec §6).
// Shape grounded on the teacher's internal/config/config.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Scoring constants used as defaults by both the Structural Scorer (§4.4)
// and config parsing, grounded on the teacher's SearchRankingScoreConstants.
const (
	DefaultCodeFileBoost    = 30.0
	DefaultTestPenalty      = -40.0
	DefaultDocFilePenalty   = -50.0
	DefaultConfigFileBoost  = 30.0
	DefaultImplDirBoost     = 40.0
	DefaultMaxDepth         = 5
	DefaultDepthPenaltyStep = -1.0
)

// Config is the top-level, merged configuration object.
type Config struct {
	Version  int
	Project  Project
	Index    Index
	Search   Search
	Session  SessionConfig
	Include  []string
	Exclude  []string
}

// Project describes the scan root.
type Project struct {
	Root string
	Name string
}

// Index controls enumeration and semantic-index limits (spec §4.1, §4.5).
type Index struct {
	MaxFileSize      int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	WalkDepth        int
	TrackedFileCap   int // spec §4.1: above this, skip the untracked query
	ScanTimeoutMs    int // spec §6 MANTIC_TIMEOUT
	IndexMaxAgeHours int // spec §4.5 invalidation
	LRUCacheSize     int // spec §4.5 in-process LRU
	RefreshBatchSize int // spec §4.5 "batches of 50"
}

// Search controls result shaping (spec §4.4, §6).
type Search struct {
	MaxResults        int // spec §6 MANTIC_MAX_FILES
	TopKBeforeLimit   int // spec §4.4 "retain top 100 by default"
	Ranking           Ranking
}

// Ranking mirrors the teacher's SearchRanking block.
type Ranking struct {
	CodeFileBoost   float64
	TestPenalty     float64
	DocFilePenalty  float64
	ConfigFileBoost float64
	ImplDirBoost    float64
}

// Validate checks Ranking values are within sane bounds, grounded on the
// teacher's SearchRanking.Validate.
func (r Ranking) Validate() error {
	if r.CodeFileBoost > 1000 || r.CodeFileBoost < -1000 {
		return fmt.Errorf("CodeFileBoost must be between -1000 and 1000, got %v", r.CodeFileBoost)
	}
	if r.DocFilePenalty > 0 || r.DocFilePenalty < -1000 {
		return fmt.Errorf("DocFilePenalty must be between -1000 and 0, got %v", r.DocFilePenalty)
	}
	return nil
}

// SessionConfig controls Session Manager boost behavior (spec §4.8).
type SessionConfig struct {
	MaxBoostFactor   float64
	RecentViewWindow int // minutes
	RecentViewBonus  float64
}

// Default returns the built-in defaults, equivalent to the teacher's
// parseKDL default struct literal.
func Default() *Config {
	root, err := os.Getwd()
	if err != nil || root == "" {
		root = "."
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxFileCount:     500_000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WalkDepth:        10,
			TrackedFileCap:   50_000,
			ScanTimeoutMs:    30_000,
			IndexMaxAgeHours: 24,
			LRUCacheSize:     3,
			RefreshBatchSize: 50,
		},
		Search: Search{
			MaxResults:      300,
			TopKBeforeLimit: 100,
			Ranking: Ranking{
				CodeFileBoost:   DefaultCodeFileBoost,
				TestPenalty:     DefaultTestPenalty,
				DocFilePenalty:  DefaultDocFilePenalty,
				ConfigFileBoost: DefaultConfigFileBoost,
				ImplDirBoost:    DefaultImplDirBoost,
			},
		},
		Session: SessionConfig{
			MaxBoostFactor:   50.0,
			RecentViewWindow: 5,
			RecentViewBonus:  20.0,
		},
		Include: []string{},
		Exclude: []string{},
	}
}

// Load reads .mantic.kdl under root if present, falling back to defaults,
// then applies the MANTIC_* environment overrides (spec §6).
func Load(root string) (*Config, error) {
	cfg := Default()
	if root != "" {
		abs, err := filepath.Abs(root)
		if err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = root
		}
	}

	kdlCfg, err := LoadKDL(cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to load .mantic.kdl: %w", err)
	}
	if kdlCfg != nil {
		cfg = kdlCfg
	}

	applyEnvOverrides(cfg)

	if err := cfg.Search.Ranking.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies MANTIC_MAX_FILES / MANTIC_TIMEOUT /
// MANTIC_IGNORE_PATTERNS (spec §6), grounded on the teacher's
// loadConfigWithOverrides CLI-flag-override pattern in cmd/lci/main.go.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MANTIC_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.Search.MaxResults = n
		}
	}
	if v := os.Getenv("MANTIC_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Index.ScanTimeoutMs = n
		}
	}
	if v := os.Getenv("MANTIC_IGNORE_PATTERNS"); v != "" {
		cfg.Exclude = append(cfg.Exclude, splitCommaList(v)...)
	}
}

func splitCommaList(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// DefaultParallelism returns a sensible worker-pool size, following the
// teacher's Performance.ParallelFileWorkers "0 = auto-detect" convention.
func DefaultParallelism() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
