// Package scorer implements the Structural Scorer (spec §4.4): it ranks
// enumerated file candidates against an IntentAnalysis without reading
// file contents. Scoring-constant table style is grounded on the
// teacher's SearchRankingScoreConstants (internal/config/config.go);
// the matcher/reasons shape is grounded on the teacher's
// SemanticScorer (internal/semantic/semantic_scorer.go) - try every
// signal, keep every non-zero contribution as an explainable reason,
// sort by score then a stable secondary key, truncate to a result cap.
package scorer

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/theodags/mantic/internal/classifier"
	"github.com/theodags/mantic/internal/types"
)

const (
	scoreExactFilename       = 100.0
	scoreExactFilenameExtra  = 10.0
	scoreSubstringFilename   = 50.0
	scoreSubstringExtra      = 5.0
	scoreWholeWordFilename   = 30.0
	scoreWholeWordExtra      = 3.0
	scoreDirectoryUnit       = 20.0
	scoreImplDir             = 40.0
	scoreCanonical           = 30.0
	scoreTestPenalty         = -40.0
	scoreDocsPenalty         = -50.0
	depthPenaltyPerLevel     = -1.0
	depthThreshold           = 5
	businessLogicMultiplier  = 1.5
	boilerplateMultiplier    = 0.3
)

var implDirRe = regexp.MustCompile(`(^|/)(src|lib|modules|services|api|server|core|features)(/|$)`)

var businessLogicSuffixRe = regexp.MustCompile(`(?i)\.(service|controller|handler|repository|manager|provider|helper|utils?|model|schema)\.`)

var boilerplateBasenameRe = regexp.MustCompile(`(?i)(^|/)(page|layout|route|index|app|main)\.[a-zA-Z0-9]+$`)

// DefaultMaxResults is the stage-3 truncation cap (spec §4.4).
const DefaultMaxResults = 100

// Options configures a scoring pass.
type Options struct {
	MaxResults int
	// SessionBoosts maps a path to an additive boost factor contributed
	// by the Session Manager's recent-view/context-carryover logic
	// (spec §4.8, §9(b)).
	SessionBoosts map[string]float64
	// BoostReasons optionally labels each SessionBoosts entry (the
	// Session Manager emits "recent-view" or "recently-viewed"); an
	// unlabelled entry is reported as "context-carryover".
	BoostReasons map[string]string
}

// Score ranks candidates for intent and returns the top results, sorted
// by score descending then path ascending (spec §4.4 stage 3).
func Score(candidates []types.FileCandidate, intent types.IntentAnalysis, opts Options) []types.ScoredFile {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	keywords := lowerAll(intent.Keywords)

	out := make([]types.ScoredFile, 0, len(candidates))
	for _, c := range candidates {
		if isStructurallyEliminated(c.Path) {
			continue
		}
		sf := scoreOne(c, intent.Category, keywords, opts)
		out = append(out, sf)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func scoreOne(c types.FileCandidate, category types.IntentCategory, keywords []string, opts Options) types.ScoredFile {
	tag := c.Tag
	if tag == "" {
		tag = classifier.Classify(c.Path)
	}
	canonical := classifier.IsCanonical(tag)

	var score float64
	var reasons []string
	add := func(v float64, reason string) {
		if v == 0 {
			return
		}
		score += v
		reasons = append(reasons, reason)
	}

	base := baseOf(c.Path)
	stem := strings.TrimSuffix(base, path.Ext(base))
	stemLower := strings.ToLower(stem)
	baseLower := strings.ToLower(base)
	wordified := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(stem))

	for _, kw := range keywords {
		extra := 0.0
		if !canonical {
			extra = scoreExactFilenameExtra
		}
		switch {
		case stemLower == kw:
			add(scoreExactFilename+extra, "exact-file:"+kw)
		case strings.Contains(baseLower, kw):
			extraS := 0.0
			if !canonical {
				extraS = scoreSubstringExtra
			}
			add(scoreSubstringFilename+extraS, "filename-match:"+kw)
		case containsWord(wordified, kw):
			extraW := 0.0
			if !canonical {
				extraW = scoreWholeWordExtra
			}
			add(scoreWholeWordFilename+extraW, "keyword-match:"+kw)
		}
	}

	dirScore := directoryScore(c.Path, category)
	add(dirScore, "directory-weight")

	if implDirRe.MatchString(c.Path) {
		add(scoreImplDir, "impl-dir")
	}

	if businessLogicSuffixRe.MatchString(c.Path) {
		score *= businessLogicMultiplier
		reasons = append(reasons, "business-logic")
	}
	if boilerplateBasenameRe.MatchString(c.Path) {
		score *= boilerplateMultiplier
		reasons = append(reasons, "boilerplate")
	}

	score *= extensionWeight(c.Path)

	if depth := pathDepth(c.Path); depth > depthThreshold {
		add(float64(depth-depthThreshold)*depthPenaltyPerLevel, "depth-penalty")
	}

	if canonical {
		add(scoreCanonical, "canonical")
	}
	if tag == types.TagTest {
		add(scoreTestPenalty, "test-penalty")
	}
	if tag == types.TagDocs {
		add(scoreDocsPenalty, "docs-penalty")
	}

	if boost, ok := opts.SessionBoosts[c.Path]; ok && boost != 0 {
		reason := "context-carryover"
		if r, ok := opts.BoostReasons[c.Path]; ok && r != "" {
			reason = r
		}
		add(boost, reason)
	}

	if score < 0 {
		score = 0
	}

	return types.ScoredFile{
		Path:         c.Path,
		Score:        score,
		MatchReasons: reasons,
		FileType:     tag,
	}
}

func directoryScore(p string, category types.IntentCategory) float64 {
	weights, ok := directoryWeights[category]
	if !ok {
		return 0
	}
	var total float64
	for _, dw := range weights {
		if strings.HasPrefix(p, dw.prefix) || strings.Contains(p, "/"+dw.prefix) {
			total += scoreDirectoryUnit * dw.weight
		}
	}
	return total
}

func containsWord(haystack, word string) bool {
	if word == "" {
		return false
	}
	for _, tok := range strings.Fields(haystack) {
		if tok == word {
			return true
		}
	}
	return false
}

func pathDepth(p string) int {
	return strings.Count(strings.Trim(p, "/"), "/")
}

func baseOf(p string) string {
	return path.Base(p)
}

func lowerExt(p string) string {
	return strings.ToLower(path.Ext(p))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
