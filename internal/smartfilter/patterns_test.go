package smartfilter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func TestLoadPatterns_MissingFileReturnsEmptyStore(t *testing.T) {
	sp := LoadPatterns(t.TempDir())
	require.NotNil(t, sp.Patterns)
	require.Empty(t, sp.Patterns)
}

func TestRecordUsage_SaveLoadRoundTrips(t *testing.T) {
	root := t.TempDir()

	sp := LoadPatterns(root)
	RecordUsage(sp, []string{"Login", "auth"}, []string{"src/login.ts"})
	RecordUsage(sp, []string{"auth", "login"}, []string{"src/login.ts", "src/session.ts"})
	require.NoError(t, SavePatterns(root, sp))

	reloaded := LoadPatterns(root)
	pat, ok := reloaded.Patterns[keywordKey([]string{"login", "auth"})]
	require.True(t, ok)
	require.Equal(t, 2, pat.UsageCount)
	require.ElementsMatch(t, []string{"src/login.ts", "src/session.ts"}, pat.Paths)
}

func TestApplyLearned_BoostsOnlyExactKeywordMatch(t *testing.T) {
	sp := &types.SearchPatterns{Patterns: map[string]types.LearnedPattern{
		keywordKey([]string{"login"}): {Paths: []string{"src/login.ts"}, UsageCount: 3},
	}}

	scores := map[string]float64{}
	reasons := map[string][]string{}
	ApplyLearned(sp, []string{"login"}, scores, reasons)
	require.Equal(t, patternUsageBoost, scores["src/login.ts"])
	require.Contains(t, reasons["src/login.ts"], "learned-pattern")

	scores2 := map[string]float64{}
	reasons2 := map[string][]string{}
	ApplyLearned(sp, []string{"signup"}, scores2, reasons2)
	require.Empty(t, scores2)
}
