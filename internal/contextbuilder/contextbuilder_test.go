package contextbuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func TestConfidenceFor_MedianAndMeanBlend(t *testing.T) {
	scores := []float64{10, 20, 30}
	med := median(scores) // 20
	avg := mean(scores)   // 20

	// score == median == mean -> (1*0.6 + 1*0.4)/2 == 0.5
	require.InDelta(t, 0.5, confidenceFor(20, med, avg), 0.001)
}

func TestConfidenceFor_ClampsToOne(t *testing.T) {
	require.Equal(t, 1.0, confidenceFor(1000, 10, 10))
}

func TestAnnotateConfidence_FillsMetadata(t *testing.T) {
	files := []types.ScoredFile{
		{Path: "a.ts", Score: 100},
		{Path: "b.ts", Score: 50},
		{Path: "c.ts", Score: 10},
	}
	annotateConfidence(files)

	for _, f := range files {
		require.NotNil(t, f.Metadata)
		require.GreaterOrEqual(t, f.Metadata.Confidence, 0.0)
		require.LessOrEqual(t, f.Metadata.Confidence, 1.0)
	}
	// Highest score gets the highest confidence.
	require.Greater(t, files[0].Metadata.Confidence, files[2].Metadata.Confidence)
}

func TestAnalyzeDuplicates_CanonicalAndTestEmitsDuplicateTest(t *testing.T) {
	warnings := analyzeDuplicates([]string{"src/app.ts", "src/app.test.ts"})
	require.Len(t, warnings, 1)
	require.Equal(t, "duplicate_test", warnings[0].Kind)
	require.Equal(t, "src/app.test.ts", warnings[0].Path)
	require.Equal(t, []string{"src/app.ts"}, warnings[0].Suggestions)
}

func TestAnalyzeDuplicates_OnlyDerivativesEmitPreferCanonical(t *testing.T) {
	warnings := analyzeDuplicates([]string{"src/app.test.ts", "src/app.spec.ts"})
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		require.Equal(t, "prefer_canonical", w.Kind)
		require.Equal(t, []string{"src/app.ts"}, w.Suggestions)
	}
}

func TestAnalyzeDuplicates_NoGroupBelowTwoIsIgnored(t *testing.T) {
	warnings := analyzeDuplicates([]string{"src/app.ts"})
	require.Empty(t, warnings)
}

func TestValidate_ExactEntityMatchResolves(t *testing.T) {
	entities := types.EntityBucket{Files: []string{"auth.ts"}}
	v, warnings := Validate(entities, []string{"src/auth.ts"}, nil)
	require.True(t, v.IsValid)
	require.Equal(t, 1, v.EntityCount)
	require.Equal(t, 1, v.FoundCount)
	require.Empty(t, warnings)
}

func TestValidate_CloseMatchSuggestsNearestButStaysUnresolved(t *testing.T) {
	entities := types.EntityBucket{Files: []string{"authh.ts"}}
	v, warnings := Validate(entities, []string{"src/auth.ts"}, nil)
	require.False(t, v.IsValid)
	require.Equal(t, 0, v.FoundCount)
	require.Len(t, warnings, 2)
	require.Equal(t, "file_not_found", warnings[0].Kind)
	require.NotEmpty(t, warnings[0].Suggestions)
	require.Equal(t, "likely_hallucination", warnings[1].Kind)
}

func TestValidate_MajorityUnresolvedIsHallucination(t *testing.T) {
	entities := types.EntityBucket{Files: []string{"nonexistentThing.ts", "anotherMissingFile.ts"}}
	v, warnings := Validate(entities, []string{"src/real.ts"}, nil)
	require.False(t, v.IsValid)

	found := false
	for _, w := range warnings {
		if w.Kind == "likely_hallucination" {
			found = true
		}
	}
	require.True(t, found)
}

func TestValidate_UnresolvedComponentEmitsComponentNotFound(t *testing.T) {
	idx := &types.CacheIndex{Files: map[string]types.FileEntry{
		"src/Button.tsx": {
			Path:       "src/Button.tsx",
			Components: []types.ComponentRef{{Name: "Button"}},
		},
	}}
	entities := types.EntityBucket{Components: []string{"ButtonX"}}

	v, warnings := Validate(entities, []string{"src/Button.tsx"}, idx)
	require.False(t, v.IsValid)
	require.Less(t, v.FoundCount, v.EntityCount)
	require.Len(t, warnings, 2)
	require.Equal(t, "component_not_found", warnings[0].Kind)
	require.Contains(t, warnings[0].Suggestions, "Button")
	require.Equal(t, "likely_hallucination", warnings[1].Kind)
}

func TestBuild_AssemblesResult(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryAuth, Keywords: []string{"auth"}}
	files := []types.ScoredFile{{Path: "src/auth.ts", Score: 90}}
	result := Build("where is auth", intent, files, []string{"src/auth.ts"}, nil, types.ResultMetadata{TotalScanned: 1}, nil)

	require.Equal(t, "where is auth", result.Query)
	require.Len(t, result.Files, 1)
	require.NotNil(t, result.Validation)
}
