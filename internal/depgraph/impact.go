package depgraph

import (
	"path"
	"strings"

	"github.com/theodags/mantic/internal/classifier"
	"github.com/theodags/mantic/internal/types"
)

const (
	maxDirectDependents   = 20
	maxIndirectDependents = 10
	maxRelatedConfig      = 5
)

var canonicalConfigBasenames = map[string]bool{
	"package.json": true, "tsconfig.json": true, "go.mod": true,
	"webpack.config.js": true, "vite.config.ts": true, ".env": true,
}

// Impact computes the blast-radius impact analysis for target (spec
// §4.7). allPaths is the universe of candidate paths scanned for
// related tests/config.
func Impact(graph *types.DependencyGraph, target string, allPaths []string) types.ImpactResult {
	direct := directDependents(graph, target)
	totalDirect := rawDependentCount(graph, target)
	indirect := indirectDependents(graph, target, direct)
	relatedTests := relatedTestPaths(target, allPaths)
	relatedConfig := relatedConfigPaths(allPaths)

	score := blastScore(len(direct), len(indirect), len(relatedTests))
	bucket := blastBucket(score)

	warnings := buildWarnings(target, totalDirect, relatedTests, bucket)

	return types.ImpactResult{
		DirectDependents:   direct,
		IndirectDependents: indirect,
		RelatedTests:       relatedTests,
		RelatedConfig:      relatedConfig,
		BlastRadiusScore:   score,
		BlastRadiusBucket:  bucket,
		Warnings:           warnings,
	}
}

func directDependents(graph *types.DependencyGraph, target string) []string {
	node, ok := graph.Nodes[target]
	if !ok {
		return nil
	}
	deps := append([]string(nil), node.Dependents...)
	if len(deps) > maxDirectDependents {
		deps = deps[:maxDirectDependents]
	}
	return deps
}

func rawDependentCount(graph *types.DependencyGraph, target string) int {
	node, ok := graph.Nodes[target]
	if !ok {
		return 0
	}
	return len(node.Dependents)
}

func indirectDependents(graph *types.DependencyGraph, target string, direct []string) []string {
	directSet := make(map[string]bool, len(direct)+1)
	directSet[target] = true
	for _, d := range direct {
		directSet[d] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, d := range direct {
		node, ok := graph.Nodes[d]
		if !ok {
			continue
		}
		for _, dd := range node.Dependents {
			if directSet[dd] || seen[dd] {
				continue
			}
			seen[dd] = true
			out = append(out, dd)
			if len(out) >= maxIndirectDependents {
				return out
			}
		}
	}
	return out
}

// relatedTestPaths enumerates candidate test paths by basename
// transformation, then scans allPaths for basename containment of the
// primary basename (spec §4.7).
func relatedTestPaths(target string, allPaths []string) []string {
	dir := path.Dir(target)
	base := path.Base(target)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidates := []string{
		path.Join(dir, stem+".test"+ext),
		path.Join(dir, "__tests__", base),
		strings.Replace(target, "/src/", "/tests/", 1),
		path.Join("tests", stem+".test"+ext),
	}

	known := make(map[string]bool, len(allPaths))
	for _, p := range allPaths {
		known[p] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		if c != target && known[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	for _, p := range allPaths {
		if p == target || seen[p] {
			continue
		}
		if classifier.Classify(p) != types.TagTest {
			continue
		}
		if strings.Contains(path.Base(p), stem) {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func relatedConfigPaths(allPaths []string) []string {
	var out []string
	for _, p := range allPaths {
		if canonicalConfigBasenames[path.Base(p)] {
			out = append(out, p)
			if len(out) >= maxRelatedConfig {
				break
			}
		}
	}
	return out
}

func blastScore(direct, indirect, tests int) int {
	score := 10*direct + 3*indirect + 2*tests
	if score > 100 {
		score = 100
	}
	return score
}

func blastBucket(score int) types.BlastRadiusBucket {
	switch {
	case score < 20:
		return types.BlastSmall
	case score < 50:
		return types.BlastMedium
	case score < 80:
		return types.BlastLarge
	default:
		return types.BlastCritical
	}
}

func buildWarnings(target string, totalDirect int, tests []string, bucket types.BlastRadiusBucket) []string {
	var warnings []string
	tag := classifier.Classify(target)

	if totalDirect == 0 && tag != types.TagTest {
		warnings = append(warnings, "possibly dead code")
	}
	if totalDirect > maxDirectDependents {
		warnings = append(warnings, "high coupling")
	}
	if len(tests) == 0 && bucket != types.BlastSmall {
		warnings = append(warnings, "no tests found")
	}
	if bucket == types.BlastCritical {
		warnings = append(warnings, "proceed with caution")
	}
	return warnings
}
