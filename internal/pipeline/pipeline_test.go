package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/diag"
	"github.com/theodags/mantic/internal/semanticindex"
	"github.com/theodags/mantic/internal/types"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeProjectFile(t, root, "src/auth/login.ts", `export function login() { return true }`)
	writeProjectFile(t, root, "src/auth/login.test.ts", `import { login } from "./login"`)
	writeProjectFile(t, root, "README.md", "# demo project")
	return root
}

func TestRun_ReturnsScoredFilesForQuery(t *testing.T) {
	root := newTestProject(t)
	cfg := config.Default()
	cfg.Project.Root = root

	result, err := Run(context.Background(), cfg, nil, Options{Query: "auth login"})
	require.NoError(t, err)
	require.Equal(t, "auth login", result.Query)
	require.NotEmpty(t, result.Files)
}

func TestRun_GeneratedFilesExcludedByDefault(t *testing.T) {
	root := newTestProject(t)
	writeProjectFile(t, root, "dist/bundle.js", "// built output")
	cfg := config.Default()
	cfg.Project.Root = root

	result, err := Run(context.Background(), cfg, nil, Options{Query: "bundle"})
	require.NoError(t, err)
	for _, f := range result.Files {
		require.NotContains(t, f.Path, "dist/")
	}
}

func TestBuildCandidates_IncludeGeneratedFlagAllowsGeneratedFiles(t *testing.T) {
	root := newTestProject(t)
	writeProjectFile(t, root, "dist/bundle.js", "// built output")
	cfg := config.Default()
	cfg.Project.Root = root

	candidates := buildCandidates([]string{"dist/bundle.js", "src/auth/login.ts"}, true, nil)
	require.Len(t, candidates, 2)
}

func TestRun_ImpactAnnotatesScoredFilesWhenRequested(t *testing.T) {
	root := newTestProject(t)
	cfg := config.Default()
	cfg.Project.Root = root

	result, err := Run(context.Background(), cfg, nil, Options{Query: "login", Impact: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.Files)
	require.NotNil(t, result.Files[0].Impact)
}

func TestLoadSemanticIndex_CacheHitSkipsDiskLoad(t *testing.T) {
	root := newTestProject(t)
	cfg := config.Default()
	cfg.Project.Root = root

	cached := semanticindex.New(root)
	cached.TechStack = "cached-marker"
	cache := semanticindex.NewCache(3)
	cache.Put(root, cached)

	// No index file was ever written to disk for root, so a cache miss
	// would fall through to semanticindex.New and lose the marker.
	idx, _ := loadSemanticIndex(context.Background(), cfg, []string{"src/auth/login.ts"}, diag.Default, cache)
	require.NotNil(t, idx)
	require.Contains(t, idx.TechStack, "cached-marker")
}

func TestBuildCandidates_FiltersByOnlyTags(t *testing.T) {
	candidates := buildCandidates(
		[]string{"src/app.ts", "src/app.test.ts", "README.md"},
		false,
		[]types.FileTag{types.TagCode},
	)
	require.Len(t, candidates, 1)
	require.Equal(t, "src/app.ts", candidates[0].Path)
}

func TestApplySessionBoosts_AddsBoostAndResorts(t *testing.T) {
	scored := []types.ScoredFile{
		{Path: "a.ts", Score: 50},
		{Path: "b.ts", Score: 40},
	}
	applySessionBoosts(scored, map[string]float64{"b.ts": 20}, map[string]string{"b.ts": "recently-viewed"})

	require.Equal(t, "b.ts", scored[0].Path)
	require.Equal(t, float64(60), scored[0].Score)
	require.Contains(t, scored[0].MatchReasons, "recently-viewed")
	require.Equal(t, "a.ts", scored[1].Path)
}

func TestTopPaths_CapsAtRequestedCount(t *testing.T) {
	files := []types.ScoredFile{{Path: "a"}, {Path: "b"}, {Path: "c"}}
	require.Equal(t, []string{"a", "b"}, topPaths(files, 2))
	require.Equal(t, []string{"a", "b", "c"}, topPaths(files, 10))
}
