package scorer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func candidates(paths ...string) []types.FileCandidate {
	out := make([]types.FileCandidate, len(paths))
	for i, p := range paths {
		out[i] = types.FileCandidate{Path: p}
	}
	return out
}

func TestScore_StructuralEliminationDropsBinaryAndLockFiles(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryGeneral, Keywords: []string{"auth"}}
	results := Score(candidates("src/auth.ts", "assets/logo.png", "package-lock.json"), intent, Options{})

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	require.Contains(t, paths, "src/auth.ts")
	require.NotContains(t, paths, "assets/logo.png")
	require.NotContains(t, paths, "package-lock.json")
}

func TestScore_ExactFilenameMatchOutranksSubstring(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryGeneral, Keywords: []string{"login"}}
	results := Score(candidates("src/login.ts", "src/login-helper.ts"), intent, Options{})

	require.Equal(t, "src/login.ts", results[0].Path)
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestScore_TestFileIsPenalized(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryGeneral, Keywords: []string{"login"}}
	results := Score(candidates("src/login.ts", "src/login.test.ts"), intent, Options{})

	var impl, test types.ScoredFile
	for _, r := range results {
		if r.Path == "src/login.ts" {
			impl = r
		}
		if r.Path == "src/login.test.ts" {
			test = r
		}
	}
	require.Greater(t, impl.Score, test.Score)
}

func TestScore_StableSortByPathOnTie(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryGeneral}
	results := Score(candidates("b/z.go", "a/z.go"), intent, Options{})
	require.Equal(t, "a/z.go", results[0].Path)
	require.Equal(t, "b/z.go", results[1].Path)
}

func TestScore_ScoresAreNeverNegative(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryGeneral}
	results := Score(candidates("a/b/c/d/e/f/g/README.md"), intent, Options{})
	require.GreaterOrEqual(t, results[0].Score, 0.0)
}

func TestScore_TruncatesToMaxResults(t *testing.T) {
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, "src/file"+string(rune('a'+i))+".go")
	}
	intent := types.IntentAnalysis{Category: types.CategoryGeneral}
	results := Score(candidates(paths...), intent, Options{MaxResults: 3})
	require.Len(t, results, 3)
}

func TestScore_SessionBoostAddsReason(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryGeneral}
	results := Score(candidates("src/app.go"), intent, Options{
		SessionBoosts: map[string]float64{"src/app.go": 15},
		BoostReasons:  map[string]string{"src/app.go": "recently-modified"},
	})
	require.Contains(t, results[0].MatchReasons, "recently-modified")
}

func TestScore_DirectoryWeightAppliesForCategory(t *testing.T) {
	intent := types.IntentAnalysis{Category: types.CategoryAuth}
	results := Score(candidates("auth/login.go", "misc/login.go"), intent, Options{})

	var authScore, miscScore float64
	for _, r := range results {
		if r.Path == "auth/login.go" {
			authScore = r.Score
		}
		if r.Path == "misc/login.go" {
			miscScore = r.Score
		}
	}
	require.Greater(t, authScore, miscScore)
}
