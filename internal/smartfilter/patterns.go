package smartfilter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theodags/mantic/internal/semanticindex"
	"github.com/theodags/mantic/internal/types"
)

// PatternsFileName is the persisted learned-pattern document (spec §6
// "`.{tool}/search-patterns.json`"), stored alongside the semantic index
// in the tool-private directory.
const PatternsFileName = "search-patterns.json"

// patternUsageBoost mirrors contributionUsagePositive's scale: a keyword
// set that has previously resolved to a path is as strong a signal as a
// live usage-graph hit.
const patternUsageBoost = contributionUsagePositive

// PatternsPath returns the absolute path to the persisted pattern store
// for root.
func PatternsPath(root string) string {
	return filepath.Join(root, semanticindex.ToolDir, PatternsFileName)
}

// LoadPatterns reads the learned-pattern store for root. A missing or
// unreadable file returns an empty store rather than an error, matching
// the index's treat-as-absent fallback (spec §4.5 invalidation mirrors
// this for search-patterns.json too).
func LoadPatterns(root string) *types.SearchPatterns {
	data, err := os.ReadFile(PatternsPath(root))
	if err != nil {
		return &types.SearchPatterns{Patterns: make(map[string]types.LearnedPattern)}
	}
	var sp types.SearchPatterns
	if err := json.Unmarshal(data, &sp); err != nil || sp.Patterns == nil {
		return &types.SearchPatterns{Patterns: make(map[string]types.LearnedPattern)}
	}
	return &sp
}

// SavePatterns persists sp to root's tool directory via the same
// temp-file-plus-rename as the semantic index.
func SavePatterns(root string, sp *types.SearchPatterns) error {
	dir := filepath.Join(root, semanticindex.ToolDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sp, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "search-patterns-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, PatternsPath(root))
}

// keywordKey canonicalizes a keyword set into the map key used by
// SearchPatterns.Patterns: lowercased, sorted, joined on "+".
func keywordKey(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	norm := make([]string, len(keywords))
	for i, k := range keywords {
		norm[i] = strings.ToLower(k)
	}
	sort.Strings(norm)
	return strings.Join(norm, "+")
}

// RecordUsage updates sp in place: the keyword set that produced this
// query is associated with paths (pipeline.Run passes its top five
// ranked results), incrementing that pattern's usage count.
func RecordUsage(sp *types.SearchPatterns, keywords []string, paths []string) {
	key := keywordKey(keywords)
	if key == "" || len(paths) == 0 {
		return
	}
	if sp.Patterns == nil {
		sp.Patterns = make(map[string]types.LearnedPattern)
	}
	pat := sp.Patterns[key]
	pat.UsageCount++
	pat.Paths = mergeUnique(pat.Paths, paths)
	sp.Patterns[key] = pat
}

func mergeUnique(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(add))
	for _, p := range existing {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range add {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// ApplyLearned boosts scores for paths a matching learned pattern has
// historically resolved to (spec §6 "learned Smart-Filter patterns").
// Matching is exact on the canonicalized keyword set; a near-miss on
// keywords earns no boost, keeping the signal conservative.
func ApplyLearned(sp *types.SearchPatterns, keywords []string, scores map[string]float64, reasons map[string][]string) {
	if sp == nil {
		return
	}
	key := keywordKey(keywords)
	pat, ok := sp.Patterns[key]
	if !ok {
		return
	}
	for _, p := range pat.Paths {
		scores[p] += patternUsageBoost
		reasons[p] = appendUnique(reasons[p], "learned-pattern")
	}
}
