package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func TestAnalyze_EmptyQuery(t *testing.T) {
	result := Analyze("")
	require.Equal(t, types.CategoryGeneral, result.Category)
	require.Equal(t, 0.0, result.Confidence)
	require.Empty(t, result.Keywords)
}

func TestAnalyze_AuthCategory(t *testing.T) {
	result := Analyze("authentication logic")
	require.Equal(t, types.CategoryAuth, result.Category)
	require.GreaterOrEqual(t, result.Confidence, 0.75)
}

func TestAnalyze_PreservesPascalCaseIdentifier(t *testing.T) {
	result := Analyze("ScriptController")
	require.Contains(t, result.Keywords, "ScriptController")
	require.Equal(t, types.CategoryGeneral, result.Category)
}

func TestAnalyze_PreservesKebabCaseIdentifier(t *testing.T) {
	result := Analyze("fix the login-form bug")
	require.Contains(t, result.Keywords, "login-form")
}

func TestExtractEntities_FilenameAndComponent(t *testing.T) {
	entities := extractEntities("where is ButtonXyzzy defined, see Button.tsx")
	require.Contains(t, entities.Files, "Button.tsx")
	require.Contains(t, entities.Components, "ButtonXyzzy")
}

func TestExtractEntities_ErrorTokens(t *testing.T) {
	entities := extractEntities("got a NullPointerError and a 404")
	require.Contains(t, entities.Errors, "NullPointerError")
	require.Contains(t, entities.Errors, "404")
}

func TestStripMechanicalSuffix_OnlyMechanical(t *testing.T) {
	require.Equal(t, "test", stripMechanicalSuffix("tests"))
	require.Equal(t, "render", stripMechanicalSuffix("rendering"))
}
