package contextbuilder

import (
	"path"

	edlib "github.com/hbollon/go-edlib"

	"github.com/theodags/mantic/internal/types"
)

// similarityThreshold is the Levenshtein-similarity cutoff for suggesting
// a close match to an unresolved entity (spec §4.9).
const similarityThreshold = 0.7

// hallucinationRatio is the fraction of unresolved entities above which
// the result is flagged "likely hallucination" (spec §4.9).
const hallucinationRatio = 0.5

// symbolUniverse is the per-bucket population of known names an
// extracted entity is checked and fuzzy-matched against.
type symbolUniverse struct {
	files      []string
	functions  []string
	classes    []string
	components []string
}

func buildSymbolUniverse(candidatePaths []string, idx *types.CacheIndex) symbolUniverse {
	u := symbolUniverse{}
	for _, p := range candidatePaths {
		u.files = append(u.files, path.Base(p), p)
	}
	if idx == nil {
		return u
	}
	for _, entry := range idx.Files {
		for _, fn := range entry.Functions {
			u.functions = append(u.functions, fn.Name)
		}
		u.classes = append(u.classes, entry.Classes...)
		u.classes = append(u.classes, entry.Types...)
		for _, c := range entry.Components {
			u.components = append(u.components, c.Name)
		}
	}
	return u
}

// Validate checks the Intent Analyser's extracted entities against the
// enumerated candidate paths and indexed symbols (spec §4.9). Close but
// inexact matches are reported via a Levenshtein-similarity lookup; a
// "likely hallucination" warning fires once more than half the entities
// lack an exact match (an entity with only a close-match suggestion
// counts as unresolved).
func Validate(entities types.EntityBucket, candidatePaths []string, idx *types.CacheIndex) (*types.Validation, []types.Warning) {
	universe := buildSymbolUniverse(candidatePaths, idx)

	total := 0
	found := 0
	var warnings []types.Warning

	resolve := func(name string, pool []string, notFoundKind string) {
		total++
		if contains(pool, name) {
			found++
			return
		}
		if match, ok := closestMatch(name, pool); ok {
			warnings = append(warnings, types.Warning{
				Kind: notFoundKind, Target: name, Suggestions: []string{match},
			})
			return
		}
		warnings = append(warnings, types.Warning{
			Kind: notFoundKind, Target: name,
		})
	}

	for _, e := range entities.Files {
		resolve(e, universe.files, "file_not_found")
	}
	for _, e := range entities.Functions {
		resolve(e, universe.functions, "function_not_found")
	}
	for _, e := range entities.Classes {
		resolve(e, universe.classes, "class_not_found")
	}
	for _, e := range entities.Components {
		resolve(e, universe.components, "component_not_found")
	}
	for _, e := range entities.Errors {
		resolve(e, universe.classes, "error_not_found")
	}

	if total == 0 {
		return &types.Validation{IsValid: true, EntityCount: 0, FoundCount: 0}, warnings
	}

	unresolved := total - found
	isValid := float64(unresolved)/float64(total) <= hallucinationRatio
	if !isValid {
		warnings = append(warnings, types.Warning{
			Kind:    "likely_hallucination",
			Message: "more than half of the extracted entities could not be resolved against the codebase",
		})
	}

	return &types.Validation{IsValid: isValid, EntityCount: total, FoundCount: found}, warnings
}

func contains(pool []string, name string) bool {
	for _, p := range pool {
		if p == name {
			return true
		}
	}
	return false
}

// closestMatch returns the entry in pool with the highest Levenshtein
// similarity to name, provided it is at least similarityThreshold (the
// earliest such entry wins a tie).
func closestMatch(name string, pool []string) (string, bool) {
	best := ""
	bestScore := float32(0)
	for _, candidate := range pool {
		score, err := edlib.StringsSimilarity(name, candidate, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if float64(score) >= similarityThreshold && score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, best != ""
}
