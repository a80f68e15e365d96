// Package classifier implements the File Classifier (spec §4.3): a pure
// function from a repository-relative path to one of {generated, test,
// docs, config, code, other}. Priority-ordering constant table style
// grounded on the teacher's SearchRankingScoreConstants
// (internal/config/config.go).
package classifier

import (
	"path"
	"regexp"
	"strings"

	"github.com/theodags/mantic/internal/types"
)

// Priority values for deprioritisation (spec §4.3): higher sorts earlier
// when a tie-break by classification is needed.
const (
	PriorityCode      = 100
	PriorityConfig    = 50
	PriorityTest      = 30
	PriorityOther     = 20
	PriorityDocs      = 10
	PriorityGenerated = 0
)

var priorityByTag = map[types.FileTag]int{
	types.TagCode:      PriorityCode,
	types.TagConfig:    PriorityConfig,
	types.TagTest:      PriorityTest,
	types.TagOther:     PriorityOther,
	types.TagDocs:      PriorityDocs,
	types.TagGenerated: PriorityGenerated,
}

// Priority returns the deprioritisation priority for a tag (spec §4.3).
func Priority(tag types.FileTag) int { return priorityByTag[tag] }

var (
	generatedDirRe  = regexp.MustCompile(`(^|/)(dist|build|out|\.next|\.nuxt|target|bin|obj|coverage|generated|__generated__)(/|$)`)
	generatedFileRe = regexp.MustCompile(`(?i)(\.lock(\.json)?|\.min\.(js|css)|\.map|\.d\.ts)$|package-lock\.json$|yarn\.lock$|Cargo\.lock$|go\.sum$|\.log$`)

	testDirRe  = regexp.MustCompile(`(^|/)(test|tests|spec|specs|e2e|__tests__|__mocks__|mocks|fixtures)(/|$)`)
	testFileRe = regexp.MustCompile(`(?i)(\.test|\.spec|_test|_spec)\.[a-z0-9]+$`)

	docsFileRe = regexp.MustCompile(`(?i)^(readme|changelog|license|contributing|code_of_conduct)(\.[a-z0-9]+)?$`)
	docsExtRe  = regexp.MustCompile(`(?i)\.(md|mdx)$`)
	docsDirRe  = regexp.MustCompile(`(^|/)docs?(/|$)`)

	configManifestRe = regexp.MustCompile(`(?i)^(package\.json|tsconfig.*\.json|go\.mod|cargo\.toml|pyproject\.toml|setup\.(py|cfg)|pom\.xml|build\.gradle(\.kts)?|gemfile|composer\.json|\.babelrc|\.eslintrc.*|\.prettierrc.*|\.editorconfig|makefile|dockerfile|docker-compose.*\.ya?ml)$`)
	configExtRe      = regexp.MustCompile(`(?i)\.(ya?ml|toml)$`)
	configDotfileRe  = regexp.MustCompile(`(?i)^\.env($|\.)|^\.config\.`)

	codeExtRe = regexp.MustCompile(`(?i)\.(go|ts|tsx|js|jsx|mjs|cjs|py|rb|java|kt|kts|rs|c|h|cc|cpp|hpp|cs|swift|php|scala|vue|svelte)$`)
)

// basenameStripRe strips a test/spec/story descriptor immediately before
// the extension so canonical-duplicate detection can pair x.test.ts with
// x.ts (spec §4.3). The extension itself is preserved via the $2 group.
var basenameStripRe = regexp.MustCompile(`(?i)(\.test|\.spec|\.e2e|\.stories|\.story)(\.[a-zA-Z0-9]+)$`)

// Classify is a pure function of p (spec invariant §3(iv), §4.3).
func Classify(p string) types.FileTag {
	p = strings.TrimPrefix(path.Clean(filepath2Slash(p)), "./")
	base := path.Base(p)

	if generatedDirRe.MatchString(p) || generatedFileRe.MatchString(base) {
		return types.TagGenerated
	}
	if testDirRe.MatchString(p) || testFileRe.MatchString(base) {
		return types.TagTest
	}
	if docsFileRe.MatchString(base) || docsExtRe.MatchString(base) || docsDirRe.MatchString(p) {
		return types.TagDocs
	}
	if configManifestRe.MatchString(base) || configExtRe.MatchString(base) || configDotfileRe.MatchString(base) {
		return types.TagConfig
	}
	if codeExtRe.MatchString(base) {
		return types.TagCode
	}
	return types.TagOther
}

// IsCanonical reports whether tag is an implementation or config file, as
// opposed to a test/docs/generated artefact (spec §4.3, GLOSSARY).
func IsCanonical(tag types.FileTag) bool {
	return tag == types.TagCode || tag == types.TagConfig
}

// CanonicalBasename strips a test/spec/e2e/stories descriptor from a
// basename so `x.test.ts` pairs with `x.ts` (spec §4.3). Files without
// such a descriptor are returned unchanged, extension included.
func CanonicalBasename(p string) string {
	return basenameStripRe.ReplaceAllString(path.Base(p), "$2")
}

func filepath2Slash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
