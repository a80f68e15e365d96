package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func TestResolve_RelativeImport(t *testing.T) {
	known := map[string]bool{"src/utils/helper.ts": true}
	resolved, ok := Resolve("src/app.ts", "./utils/helper", known)
	require.True(t, ok)
	require.Equal(t, "src/utils/helper.ts", resolved)
}

func TestResolve_AliasImport(t *testing.T) {
	known := map[string]bool{"src/components/Button.tsx": true}
	resolved, ok := Resolve("src/pages/index.ts", "@/components/Button", known)
	require.True(t, ok)
	require.Equal(t, "src/components/Button.tsx", resolved)
}

func TestResolve_ExternalImportIsUnresolved(t *testing.T) {
	_, ok := Resolve("src/app.ts", "react", map[string]bool{})
	require.False(t, ok)
}

func TestResolve_DirectoryIndexVariant(t *testing.T) {
	known := map[string]bool{"src/utils/index.ts": true}
	resolved, ok := Resolve("src/app.ts", "./utils", known)
	require.True(t, ok)
	require.Equal(t, "src/utils/index.ts", resolved)
}

func TestBuild_PopulatesReverseDependents(t *testing.T) {
	idx := &types.CacheIndex{Files: map[string]types.FileEntry{
		"src/app.ts":    {Path: "src/app.ts", Imports: []types.ImportRef{{Source: "./utils"}}},
		"src/utils.ts":  {Path: "src/utils.ts"},
	}}
	graph := Build(idx)
	require.Contains(t, graph.Nodes["src/utils.ts"].Dependents, "src/app.ts")
}

func TestImpact_BlastRadiusBucketing(t *testing.T) {
	idx := &types.CacheIndex{Files: map[string]types.FileEntry{
		"src/core.ts": {Path: "src/core.ts"},
		"src/a.ts":    {Path: "src/a.ts", Imports: []types.ImportRef{{Source: "./core"}}},
		"src/b.ts":    {Path: "src/b.ts", Imports: []types.ImportRef{{Source: "./core"}}},
	}}
	graph := Build(idx)
	allPaths := []string{"src/core.ts", "src/a.ts", "src/b.ts"}

	result := Impact(graph, "src/core.ts", allPaths)
	require.Len(t, result.DirectDependents, 2)
	require.Equal(t, 20, result.BlastRadiusScore)
	require.Equal(t, types.BlastMedium, result.BlastRadiusBucket)
}

func TestImpact_DeadCodeWarning(t *testing.T) {
	idx := &types.CacheIndex{Files: map[string]types.FileEntry{
		"src/orphan.ts": {Path: "src/orphan.ts"},
	}}
	graph := Build(idx)
	result := Impact(graph, "src/orphan.ts", []string{"src/orphan.ts"})
	require.Contains(t, result.Warnings, "possibly dead code")
}
