package smartfilter

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/theodags/mantic/internal/classifier"
	"github.com/theodags/mantic/internal/types"
)

// ConfidenceThreshold and the excluded general category gate whether
// the Smart Filter supersedes the raw Structural Scorer output (spec
// §4.6).
const ConfidenceThreshold = 0.5

// earlyTerminationCount/earlyTerminationScore implement "early-terminate
// when at least five candidates exceed score 50" (spec §4.6).
const (
	earlyTerminationCount = 5
	earlyTerminationScore = 50.0
)

const (
	contributionImport          = 20.0
	contributionExport          = 25.0
	contributionComponentType   = 15.0
	contributionKeyword         = 5.0
	contributionExactFilename   = 100.0
	contributionSubstringFile   = 3.0
	contributionUsagePositive   = 30.0
	contributionUsageNegative   = -50.0
	contributionRecency         = 200.0
	contributionCarryoverBoost  = 150.0
)

const recencyWindow = 10 * time.Minute

// carryoverTriggerOverlap/carryoverExclusiveOverlap implement the
// context-carryover thresholds (spec §4.6).
const (
	carryoverTriggerOverlap   = 0.70
	carryoverExclusiveOverlap = 0.75
)

// Options configures a Smart Filter pass.
type Options struct {
	// Candidates restricts the universe of paths considered; when nil,
	// every indexed path is considered.
	Candidates []string
	// ModifiedFiles are version-control "modified" paths, contributing
	// to the recency-boost union (spec §4.6).
	ModifiedFiles []string
	Now           time.Time
	LegacyPointer *types.LegacySessionPointer
	MaxResults    int
	// Patterns is the persisted learned-pattern store (spec §6
	// search-patterns.json); nil disables the learned-pattern boost.
	Patterns *types.SearchPatterns
}

// ShouldApply reports whether the Smart Filter should supersede the
// Structural Scorer for this query (spec §4.6 gate).
func ShouldApply(intent types.IntentAnalysis, indexFresh bool) bool {
	return indexFresh && intent.Confidence > ConfidenceThreshold && intent.Category != types.CategoryGeneral
}

// Apply runs the constraint-dispatch rescoring pass over idx and
// returns the final ranked ScoredFile list (spec §4.6).
func Apply(idx *types.CacheIndex, intent types.IntentAnalysis, opts Options) []types.ScoredFile {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	universe := opts.Candidates
	if universe == nil {
		universe = make([]string, 0, len(idx.Files))
		for p := range idx.Files {
			universe = append(universe, p)
		}
	}

	scores := make(map[string]float64, len(universe))
	reasons := make(map[string][]string, len(universe))
	add := func(p string, v float64, reason string) {
		if v == 0 {
			return
		}
		scores[p] += v
		reasons[p] = append(reasons[p], reason)
	}

	importedBasenames := buildImportedBasenameSet(idx)
	constraints := BuildConstraints(intent)

	for _, c := range constraints {
		applyConstraint(idx, universe, c, importedBasenames, add)
		if countAbove(scores, earlyTerminationScore) >= earlyTerminationCount {
			break
		}
	}

	recent := recencySet(idx, opts.ModifiedFiles, now)
	for p := range recent {
		add(p, contributionRecency, "recently-modified")
	}

	applyContextCarryover(intent, opts.LegacyPointer, scores, reasons, add)
	ApplyLearned(opts.Patterns, intent.Keywords, scores, reasons)

	out := make([]types.ScoredFile, 0, len(scores))
	for p, s := range scores {
		if s < 0 {
			s = 0
		}
		tag := classifier.Classify(p)
		out = append(out, types.ScoredFile{
			Path:         p,
			Score:        s,
			MatchReasons: reasons[p],
			FileType:     tag,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})

	max := opts.MaxResults
	if max <= 0 {
		max = 100
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func countAbove(scores map[string]float64, threshold float64) int {
	n := 0
	for _, s := range scores {
		if s > threshold {
			n++
		}
	}
	return n
}

func applyConstraint(idx *types.CacheIndex, universe []string, c Constraint, importedBasenames map[string]bool, add func(string, float64, string)) {
	switch c.Kind {
	case ConstraintUsage:
		for _, p := range universe {
			entry, ok := idx.Files[p]
			if !ok {
				continue
			}
			if len(entry.Exports) == 0 {
				continue
			}
			if importedBasenames[stemOf(p)] {
				add(p, contributionUsagePositive, "usage")
			} else {
				add(p, contributionUsageNegative, "usage")
			}
		}
	case ConstraintImport:
		kw := strings.ToLower(c.Keyword)
		for _, p := range universe {
			entry, ok := idx.Files[p]
			if !ok {
				continue
			}
			for _, imp := range entry.Imports {
				if strings.Contains(strings.ToLower(imp.Source), kw) {
					add(p, contributionImport, "import-match:"+c.Keyword)
					break
				}
			}
		}
	case ConstraintExport:
		kw := strings.ToLower(c.Keyword)
		for _, p := range universe {
			entry, ok := idx.Files[p]
			if !ok {
				continue
			}
			for _, exp := range entry.Exports {
				if strings.EqualFold(exp.Name, kw) {
					add(p, contributionExport, "export-match:"+c.Keyword)
					break
				}
			}
		}
	case ConstraintComponentType:
		kw := strings.ToLower(c.Keyword)
		for _, p := range universe {
			entry, ok := idx.Files[p]
			if !ok {
				continue
			}
			for _, comp := range entry.Components {
				if strings.EqualFold(comp.Name, kw) {
					add(p, contributionComponentType, "component-match:"+c.Keyword)
					break
				}
			}
		}
	case ConstraintKeyword:
		kw := strings.ToLower(c.Keyword)
		for _, p := range universe {
			entry, ok := idx.Files[p]
			if !ok {
				continue
			}
			for _, k := range entry.Keywords {
				if strings.EqualFold(k, kw) {
					add(p, contributionKeyword, "cached-keyword:"+c.Keyword)
					break
				}
			}
		}
	case ConstraintPath:
		kw := strings.ToLower(c.Keyword)
		for _, p := range universe {
			stem := strings.ToLower(stemOf(p))
			base := strings.ToLower(path.Base(p))
			switch {
			case stem == kw:
				add(p, contributionExactFilename, "exact-file:"+c.Keyword)
			case strings.Contains(base, kw):
				add(p, contributionSubstringFile, "filename-match:"+c.Keyword)
			}
		}
	}
}

func buildImportedBasenameSet(idx *types.CacheIndex) map[string]bool {
	set := make(map[string]bool)
	for _, entry := range idx.Files {
		for _, imp := range entry.Imports {
			base := path.Base(imp.Source)
			base = strings.TrimSuffix(base, path.Ext(base))
			if base != "" {
				set[base] = true
			}
		}
	}
	return set
}

func stemOf(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func recencySet(idx *types.CacheIndex, modified []string, now time.Time) map[string]bool {
	set := make(map[string]bool)
	for _, p := range modified {
		set[p] = true
	}
	for p, entry := range idx.Files {
		if now.Sub(entry.ModTime) <= recencyWindow && now.Sub(entry.ModTime) >= 0 {
			set[p] = true
		}
	}
	return set
}

func applyContextCarryover(
	intent types.IntentAnalysis,
	legacy *types.LegacySessionPointer,
	scores map[string]float64,
	reasons map[string][]string,
	add func(string, float64, string),
) {
	if legacy == nil || legacy.LastRequest == nil {
		return
	}
	prior := legacy.LastRequest

	overlap := keywordOverlap(intent.Keywords, prior.Keywords)
	if overlap <= carryoverTriggerOverlap {
		return
	}

	priorSet := make(map[string]bool, len(prior.TopFiles))
	for _, p := range prior.TopFiles {
		priorSet[p] = true
	}

	if overlap > carryoverExclusiveOverlap {
		for p := range scores {
			if !priorSet[p] {
				delete(scores, p)
				delete(reasons, p)
			}
		}
		for _, p := range prior.TopFiles {
			if _, ok := scores[p]; !ok {
				scores[p] = 0
			}
			reasons[p] = appendUnique(reasons[p], "context-carryover")
		}
		return
	}

	for p := range priorSet {
		add(p, contributionCarryoverBoost, "context-carryover")
	}
}

func appendUnique(reasons []string, reason string) []string {
	for _, r := range reasons {
		if r == reason {
			return reasons
		}
	}
	return append(reasons, reason)
}

func keywordOverlap(newKeywords, priorKeywords []string) float64 {
	if len(newKeywords) == 0 {
		return 0
	}
	priorSet := make(map[string]bool, len(priorKeywords))
	for _, k := range priorKeywords {
		priorSet[strings.ToLower(k)] = true
	}
	matched := 0
	for _, k := range newKeywords {
		if priorSet[strings.ToLower(k)] {
			matched++
		}
	}
	return float64(matched) / float64(len(newKeywords))
}
