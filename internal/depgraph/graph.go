// Package depgraph implements the optional Dependency Graph & Impact
// Analyser (spec §4.7): an on-demand, per-query import graph built from
// already-extracted import/export data, plus blast-radius impact
// analysis for a given file.
package depgraph

import (
	"path"
	"strings"

	"github.com/theodags/mantic/internal/types"
)

// resolutionExtensions are tried in order when resolving a relative
// import to a concrete path (spec §4.7).
var resolutionExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ""}

// Build constructs a DependencyGraph from a CacheIndex's per-file import
// and export data. Relative imports are resolved against the importer's
// directory, honouring a `@/` -> `src/` alias; unresolved (external)
// sources are ignored (spec §4.7).
func Build(idx *types.CacheIndex) *types.DependencyGraph {
	graph := types.NewDependencyGraph()

	known := make(map[string]bool, len(idx.Files))
	for p := range idx.Files {
		known[p] = true
	}

	for p, entry := range idx.Files {
		node := &types.FileNode{Path: p, Imports: entry.Imports, Exports: entry.Exports}
		graph.Nodes[p] = node
	}

	for p, entry := range idx.Files {
		for _, imp := range entry.Imports {
			resolved, ok := Resolve(p, imp.Source, known)
			if !ok {
				continue
			}
			if graph.Reverse[resolved] == nil {
				graph.Reverse[resolved] = make(map[string]struct{})
			}
			graph.Reverse[resolved][p] = struct{}{}
		}
	}

	for target, importers := range graph.Reverse {
		node, ok := graph.Nodes[target]
		if !ok {
			continue
		}
		for importer := range importers {
			node.Dependents = append(node.Dependents, importer)
		}
	}

	return graph
}

// Resolve maps an import source string to a concrete known path, trying
// the `@/` -> `src/` alias, the resolutionExtensions list, and
// directory-index variants (spec §4.7). External (non-relative,
// non-aliased) sources return ok=false.
func Resolve(importerPath, source string, known map[string]bool) (string, bool) {
	if strings.HasPrefix(source, "@/") {
		source = "src/" + strings.TrimPrefix(source, "@/")
		return resolveCandidate(source, known)
	}
	if strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") {
		dir := path.Dir(importerPath)
		joined := path.Clean(path.Join(dir, source))
		return resolveCandidate(joined, known)
	}
	return "", false
}

func resolveCandidate(base string, known map[string]bool) (string, bool) {
	for _, ext := range resolutionExtensions {
		candidate := base + ext
		if known[candidate] {
			return candidate, true
		}
	}
	for _, ext := range resolutionExtensions {
		if ext == "" {
			continue
		}
		candidate := path.Join(base, "index"+ext)
		if known[candidate] {
			return candidate, true
		}
	}
	return "", false
}
