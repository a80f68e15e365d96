package smartfilter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func newIndex() *types.CacheIndex {
	return &types.CacheIndex{
		Version: "test",
		Files:   make(map[string]types.FileEntry),
	}
}

func TestShouldApply_GatesOnConfidenceAndCategory(t *testing.T) {
	require.True(t, ShouldApply(types.IntentAnalysis{Confidence: 0.9, Category: types.CategoryAuth}, true))
	require.False(t, ShouldApply(types.IntentAnalysis{Confidence: 0.9, Category: types.CategoryGeneral}, true))
	require.False(t, ShouldApply(types.IntentAnalysis{Confidence: 0.2, Category: types.CategoryAuth}, true))
	require.False(t, ShouldApply(types.IntentAnalysis{Confidence: 0.9, Category: types.CategoryAuth}, false))
}

func TestOrderConstraints_UsageFirst(t *testing.T) {
	cs := BuildConstraints(types.IntentAnalysis{Keywords: []string{"login"}})
	require.Equal(t, ConstraintUsage, cs[0].Kind)
}

func TestApply_ExportMatchScoresHigherThanUnrelated(t *testing.T) {
	idx := newIndex()
	idx.Files["src/login.ts"] = types.FileEntry{
		Path:    "src/login.ts",
		Exports: []types.ExportRef{{Name: "login", Kind: types.ExportFunction}},
	}
	idx.Files["src/unrelated.ts"] = types.FileEntry{Path: "src/unrelated.ts"}

	intent := types.IntentAnalysis{
		Category: types.CategoryAuth, Confidence: 0.9,
		Keywords: []string{"login"},
		Entities: types.EntityBucket{Functions: []string{"login"}},
	}

	results := Apply(idx, intent, Options{Candidates: []string{"src/login.ts", "src/unrelated.ts"}})

	var login, unrelated types.ScoredFile
	for _, r := range results {
		if r.Path == "src/login.ts" {
			login = r
		}
		if r.Path == "src/unrelated.ts" {
			unrelated = r
		}
	}
	require.Greater(t, login.Score, unrelated.Score)
}

func TestApply_RecencyBoost(t *testing.T) {
	idx := newIndex()
	now := time.Now()
	idx.Files["src/a.ts"] = types.FileEntry{Path: "src/a.ts", ModTime: now.Add(-2 * time.Minute)}
	idx.Files["src/b.ts"] = types.FileEntry{Path: "src/b.ts", ModTime: now.Add(-2 * time.Hour)}

	intent := types.IntentAnalysis{Category: types.CategoryAuth, Confidence: 0.9}
	results := Apply(idx, intent, Options{Candidates: []string{"src/a.ts", "src/b.ts"}, Now: now})

	var a, b types.ScoredFile
	for _, r := range results {
		if r.Path == "src/a.ts" {
			a = r
		}
		if r.Path == "src/b.ts" {
			b = r
		}
	}
	require.Contains(t, a.MatchReasons, "recently-modified")
	require.Greater(t, a.Score, b.Score)
}

func TestApply_ContextCarryoverExclusiveFilter(t *testing.T) {
	idx := newIndex()
	idx.Files["src/a.ts"] = types.FileEntry{Path: "src/a.ts"}
	idx.Files["src/b.ts"] = types.FileEntry{Path: "src/b.ts"}

	intent := types.IntentAnalysis{
		Category: types.CategoryAuth, Confidence: 0.9,
		Keywords: []string{"login", "session"},
	}
	legacy := &types.LegacySessionPointer{
		LastRequest: &types.LegacyLastRequest{
			Keywords: []string{"login", "session"},
			TopFiles: []string{"src/a.ts"},
		},
	}

	results := Apply(idx, intent, Options{
		Candidates:    []string{"src/a.ts", "src/b.ts"},
		LegacyPointer: legacy,
	})

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	require.Contains(t, paths, "src/a.ts")
	require.NotContains(t, paths, "src/b.ts")
}

func TestPrimaryKeyword_SkipsGenericAndFilenameLike(t *testing.T) {
	require.Equal(t, "login", PrimaryKeyword([]string{"ui", "button.tsx", "login"}))
}

func TestAnnotateExcerpts_FindsMatchingLine(t *testing.T) {
	dir := t.TempDir()
	content := "const x = 1\nconst loginLabel = 'Sign in'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte(content), 0o644))

	files := []types.ScoredFile{{Path: "a.ts", Score: 100}}
	AnnotateExcerpts(dir, files, []string{"login"})

	require.NotEmpty(t, files[0].Excerpts)
	require.Equal(t, 2, files[0].Excerpts[0].Line)
}
