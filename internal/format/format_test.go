package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func sampleResult() types.Result {
	return types.Result{
		Query: "auth login",
		Intent: types.IntentAnalysis{
			Category:   types.CategoryAuth,
			Confidence: 0.85,
			Keywords:   []string{"auth", "login"},
		},
		Files: []types.ScoredFile{
			{Path: "src/auth/login.ts", Score: 42.5, MatchReasons: []string{"keyword:login"}},
		},
		Metadata: types.ResultMetadata{TotalScanned: 10, FilesReturned: 1, TimeMs: 5, HasGitChanges: true},
		GitState: &types.GitState{IsRepo: true, Branch: "main", ModifiedFiles: []string{"src/auth/login.ts"}},
	}
}

func TestRenderJSON_RoundTripsQueryAndFiles(t *testing.T) {
	out, err := RenderJSON(sampleResult())
	require.NoError(t, err)
	require.Contains(t, out, `"query": "auth login"`)
	require.Contains(t, out, "src/auth/login.ts")
}

func TestRenderFiles_OnePathPerLine(t *testing.T) {
	out := RenderFiles(sampleResult())
	require.Equal(t, "src/auth/login.ts\n", out)
}

func TestRenderMarkdown_IncludesTableAndGitState(t *testing.T) {
	out := RenderMarkdown(sampleResult())
	require.True(t, strings.Contains(out, "| Score | Path | Reasons |"))
	require.True(t, strings.Contains(out, "src/auth/login.ts"))
	require.True(t, strings.Contains(out, "Branch `main`"))
}

func TestRenderMarkdown_NoResultsNotesEmptyList(t *testing.T) {
	result := sampleResult()
	result.Files = nil
	out := RenderMarkdown(result)
	require.Contains(t, out, "No matching files.")
}

func TestRender_DefaultsToJSONForUnknownMode(t *testing.T) {
	out, err := Render(Mode("bogus"), sampleResult())
	require.NoError(t, err)
	require.Contains(t, out, `"query"`)
}

func TestRender_DispatchesToMarkdown(t *testing.T) {
	out, err := Render(ModeMarkdown, sampleResult())
	require.NoError(t, err)
	require.Contains(t, out, "# Search:")
}
