package contextbuilder

import (
	"path"
	"sort"

	"github.com/theodags/mantic/internal/classifier"
	"github.com/theodags/mantic/internal/types"
)

// duplicateGroup collects every candidate path sharing a directory and
// canonical basename (spec §4.9 groups "by canonical basename" — scoped
// to a directory so `src/a/Button.tsx` and `src/b/Button.test.tsx`
// never pair).
type duplicateGroup struct {
	dir       string
	canonical string
	paths     []string
}

func groupKey(p string) (string, string) {
	return path.Dir(p), classifier.CanonicalBasename(p)
}

// analyzeDuplicates builds the canonical-duplicate warnings for a result
// (spec §4.9): `duplicate_test`/`duplicate_docs` when both the canonical
// file and a derivative appear, `prefer_canonical` when only derivatives
// do.
func analyzeDuplicates(paths []string) []types.Warning {
	groups := make(map[string]*duplicateGroup)
	var order []string
	for _, p := range paths {
		dir, canon := groupKey(p)
		key := dir + "\x00" + canon
		g, ok := groups[key]
		if !ok {
			g = &duplicateGroup{dir: dir, canonical: canon}
			groups[key] = g
			order = append(order, key)
		}
		g.paths = append(g.paths, p)
	}

	var warnings []types.Warning
	for _, key := range order {
		g := groups[key]
		if len(g.paths) < 2 {
			continue
		}

		var canonicalPaths, testPaths, docsPaths []string
		for _, p := range g.paths {
			switch classifier.Classify(p) {
			case types.TagTest:
				testPaths = append(testPaths, p)
			case types.TagDocs:
				docsPaths = append(docsPaths, p)
			default:
				if classifier.IsCanonical(classifier.Classify(p)) {
					canonicalPaths = append(canonicalPaths, p)
				}
			}
		}
		sort.Strings(canonicalPaths)

		if len(canonicalPaths) > 0 {
			for _, tp := range testPaths {
				warnings = append(warnings, types.Warning{
					Kind: "duplicate_test", Path: tp, Suggestions: canonicalPaths,
				})
			}
			for _, dp := range docsPaths {
				warnings = append(warnings, types.Warning{
					Kind: "duplicate_docs", Path: dp, Suggestions: canonicalPaths,
				})
			}
			continue
		}

		// No canonical candidate present in this result set: point at
		// the likely canonical path by name, even though it was not
		// itself scored highly enough to appear.
		guess := path.Join(g.dir, g.canonical)
		for _, p := range append(append([]string{}, testPaths...), docsPaths...) {
			warnings = append(warnings, types.Warning{
				Kind: "prefer_canonical", Path: p, Suggestions: []string{guess},
			})
		}
	}
	return warnings
}
