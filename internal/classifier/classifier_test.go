package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
)

func TestClassify_Generated(t *testing.T) {
	require.Equal(t, types.TagGenerated, Classify("dist/bundle.js"))
	require.Equal(t, types.TagGenerated, Classify("package-lock.json"))
	require.Equal(t, types.TagGenerated, Classify("src/foo.d.ts"))
}

func TestClassify_Test(t *testing.T) {
	require.Equal(t, types.TagTest, Classify("src/app.test.ts"))
	require.Equal(t, types.TagTest, Classify("__tests__/app.ts"))
	require.Equal(t, types.TagTest, Classify("e2e/login.spec.js"))
}

func TestClassify_Docs(t *testing.T) {
	require.Equal(t, types.TagDocs, Classify("README.md"))
	require.Equal(t, types.TagDocs, Classify("docs/guide.md"))
}

func TestClassify_Config(t *testing.T) {
	require.Equal(t, types.TagConfig, Classify("package.json"))
	require.Equal(t, types.TagConfig, Classify("tsconfig.json"))
	require.Equal(t, types.TagConfig, Classify(".env.local"))
	require.Equal(t, types.TagConfig, Classify("config/app.yaml"))
}

func TestClassify_Code(t *testing.T) {
	require.Equal(t, types.TagCode, Classify("src/app.ts"))
	require.Equal(t, types.TagCode, Classify("internal/server/handler.go"))
}

func TestClassify_Other(t *testing.T) {
	require.Equal(t, types.TagOther, Classify("assets/logo.png"))
}

func TestClassify_PriorityOrdering(t *testing.T) {
	// A test file under a build-output directory is generated, not test:
	// generated takes precedence per the documented priority table.
	require.Equal(t, types.TagGenerated, Classify("dist/app.test.js"))
}

func TestClassify_IsPureFunction(t *testing.T) {
	p := "src/components/Button.tsx"
	require.Equal(t, Classify(p), Classify(p))
}

func TestIsCanonical(t *testing.T) {
	require.True(t, IsCanonical(types.TagCode))
	require.True(t, IsCanonical(types.TagConfig))
	require.False(t, IsCanonical(types.TagTest))
	require.False(t, IsCanonical(types.TagDocs))
	require.False(t, IsCanonical(types.TagGenerated))
}

func TestCanonicalBasename_PairsTestWithImplementation(t *testing.T) {
	require.Equal(t, CanonicalBasename("app.test.ts"), CanonicalBasename("app.ts"))
	require.Equal(t, "Button.tsx", CanonicalBasename("Button.tsx"))
	require.Equal(t, CanonicalBasename("login.spec.js"), CanonicalBasename("login.js"))
}

func TestPriority_Ordering(t *testing.T) {
	require.Greater(t, Priority(types.TagCode), Priority(types.TagConfig))
	require.Greater(t, Priority(types.TagConfig), Priority(types.TagTest))
	require.Greater(t, Priority(types.TagTest), Priority(types.TagOther))
	require.Greater(t, Priority(types.TagOther), Priority(types.TagDocs))
	require.Greater(t, Priority(types.TagDocs), Priority(types.TagGenerated))
}
