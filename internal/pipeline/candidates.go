package pipeline

import (
	"github.com/theodags/mantic/internal/classifier"
	"github.com/theodags/mantic/internal/types"
)

// buildCandidates classifies every enumerated path and applies the
// include-generated / tag-filter flags (spec §4.1 output, §6 CLI flags).
func buildCandidates(paths []string, includeGenerated bool, onlyTags []types.FileTag) []types.FileCandidate {
	var allow map[types.FileTag]bool
	if len(onlyTags) > 0 {
		allow = make(map[types.FileTag]bool, len(onlyTags))
		for _, t := range onlyTags {
			allow[t] = true
		}
	}

	out := make([]types.FileCandidate, 0, len(paths))
	for _, p := range paths {
		tag := classifier.Classify(p)
		if tag == types.TagGenerated && !includeGenerated {
			continue
		}
		if allow != nil && !allow[tag] {
			continue
		}
		out = append(out, types.FileCandidate{Path: p, Tag: tag})
	}
	return out
}

func pathsOf(candidates []types.FileCandidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Path
	}
	return out
}

func scoredPaths(files []types.ScoredFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
