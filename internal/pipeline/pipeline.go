// Package pipeline wires the mantic stages together in the order spec
// §2 describes: Enumerator -> Intent -> Classifier -> (Semantic Index) ->
// Structural Scorer or Smart Filter -> (Dependency Graph) -> Session ->
// Context Builder. It is the single entry point cmd/mantic and
// internal/mcpserver both call into.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/contextbuilder"
	"github.com/theodags/mantic/internal/depgraph"
	"github.com/theodags/mantic/internal/diag"
	"github.com/theodags/mantic/internal/enumerator"
	"github.com/theodags/mantic/internal/intent"
	"github.com/theodags/mantic/internal/scorer"
	"github.com/theodags/mantic/internal/semanticindex"
	"github.com/theodags/mantic/internal/session"
	"github.com/theodags/mantic/internal/smartfilter"
	"github.com/theodags/mantic/internal/types"
)

// Options configures one pipeline run (spec §6 CLI/MCP surface).
type Options struct {
	Query            string
	IncludeGenerated bool
	OnlyTags         []types.FileTag
	Impact           bool
	SessionIDOrName  string
	// IndexCache short-circuits the on-disk index read within the
	// 5-minute window (spec §4.5) for callers that issue many queries
	// against the same root in one process, such as the long-running
	// `server` command. The one-shot CLI search leaves this nil: a
	// single process only ever takes one cache miss anyway.
	IndexCache *semanticindex.Cache
}

// Run executes one end-to-end search (spec §2).
func Run(ctx context.Context, cfg *config.Config, logger *diag.Logger, opts Options) (types.Result, error) {
	start := time.Now()
	if logger == nil {
		logger = diag.Default
	}

	enumResult := enumerator.Enumerate(ctx, cfg, logger)
	candidates := buildCandidates(enumResult.Files, opts.IncludeGenerated, opts.OnlyTags)
	analysis := intent.Analyze(opts.Query)
	git := gitState(cfg.Project.Root)

	idx, indexFresh := loadSemanticIndex(ctx, cfg, enumResult.Files, logger, opts.IndexCache)

	sess, sessMgr := loadSession(cfg.Project.Root, opts.SessionIDOrName, logger)
	sessionBoosts, boostReasons := boostMapsFor(sess, sessMgr)

	scored, usedSmartFilter := rankCandidates(candidates, analysis, idx, indexFresh, cfg, git, sessionBoosts, boostReasons)

	if usedSmartFilter {
		smartfilter.AnnotateExcerpts(cfg.Project.Root, scored, analysis.Keywords)
	}

	allPaths := pathsOf(candidates)
	if opts.Impact && idx != nil {
		annotateImpact(scored, idx, allPaths)
	}

	meta := types.ResultMetadata{
		TotalScanned:  len(candidates),
		FilesReturned: len(scored),
		TimeMs:        time.Since(start).Milliseconds(),
		HasGitChanges: len(git.ModifiedFiles) > 0,
	}
	if idx != nil && idx.Project != nil {
		meta.ProjectType = idx.Project.ProjectType
	}
	if idx != nil {
		meta.TechStack = idx.TechStack
	}

	result := contextbuilder.Build(opts.Query, analysis, scored, allPaths, idx, meta, git)

	recordSessionActivity(sess, sessMgr, opts.Query, scored, logger)
	if err := saveLegacyPointer(cfg.Project.Root, opts.Query, analysis.Keywords, topPaths(scored, 10)); err != nil {
		logger.WarnOnce("legacy-pointer-save", "failed to save legacy session pointer: %v", err)
	}
	if idx != nil {
		if err := semanticindex.Save(cfg.Project.Root, idx); err != nil {
			logger.WarnOnce("index-save", "failed to persist semantic index: %v", err)
		}
		if opts.IndexCache != nil {
			opts.IndexCache.Put(cfg.Project.Root, idx)
		}
	}
	if err := recordLearnedPattern(cfg.Project.Root, analysis.Keywords, topPaths(scored, 5)); err != nil {
		logger.WarnOnce("pattern-save", "failed to persist learned search pattern: %v", err)
	}

	return result, nil
}

// recordLearnedPattern associates this query's keyword set with the
// top-ranked paths it resolved to, strengthening future Smart Filter
// passes over the same keywords (spec §6 search-patterns.json).
func recordLearnedPattern(root string, keywords, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	sp := smartfilter.LoadPatterns(root)
	smartfilter.RecordUsage(sp, keywords, paths)
	return smartfilter.SavePatterns(root, sp)
}

func rankCandidates(
	candidates []types.FileCandidate,
	analysis types.IntentAnalysis,
	idx *types.CacheIndex,
	indexFresh bool,
	cfg *config.Config,
	git *types.GitState,
	sessionBoosts map[string]float64,
	boostReasons map[string]string,
) ([]types.ScoredFile, bool) {
	if idx != nil && smartfilter.ShouldApply(analysis, indexFresh) {
		scored := smartfilter.Apply(idx, analysis, smartfilter.Options{
			Candidates:    pathsOf(candidates),
			ModifiedFiles: git.ModifiedFiles,
			LegacyPointer: loadLegacyPointer(cfg.Project.Root),
			MaxResults:    cfg.Search.MaxResults,
			Patterns:      smartfilter.LoadPatterns(cfg.Project.Root),
		})
		applySessionBoosts(scored, sessionBoosts, boostReasons)
		return scored, true
	}

	scored := scorer.Score(candidates, analysis, scorer.Options{
		MaxResults:    cfg.Search.TopKBeforeLimit,
		SessionBoosts: sessionBoosts,
		BoostReasons:  boostReasons,
	})
	if len(scored) > cfg.Search.MaxResults && cfg.Search.MaxResults > 0 {
		scored = scored[:cfg.Search.MaxResults]
	}
	return scored, false
}

// applySessionBoosts adds the Session Manager's recent-view/context-
// carryover boost on top of an already-rescored result set, then
// re-sorts by score. The Structural Scorer folds the same boosts in
// before its own sort; the Smart Filter rescores from a different
// universe entirely, so its boost has to be applied after the fact
// instead (spec §4.8's boost applies "regardless of which stage 3
// ranking path produced the candidate set").
func applySessionBoosts(scored []types.ScoredFile, boosts map[string]float64, reasons map[string]string) {
	if len(boosts) == 0 {
		return
	}
	for i := range scored {
		boost, ok := boosts[scored[i].Path]
		if !ok || boost == 0 {
			continue
		}
		scored[i].Score += boost
		if reason, ok := reasons[scored[i].Path]; ok && reason != "" {
			scored[i].MatchReasons = append(scored[i].MatchReasons, reason)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Path < scored[j].Path
	})
}

func annotateImpact(scored []types.ScoredFile, idx *types.CacheIndex, allPaths []string) {
	graph := depgraph.Build(idx)
	for i := range scored {
		impact := depgraph.Impact(graph, scored[i].Path, allPaths)
		scored[i].Impact = &impact
	}
}

// loadSemanticIndex resolves the working CacheIndex for this query. When
// cache is non-nil and holds a still-fresh entry for cfg.Project.Root
// (spec §4.5's 5-minute short-circuit window), the on-disk read is
// skipped entirely and the cached index is refreshed in place; a miss
// falls back to the normal disk Load.
func loadSemanticIndex(ctx context.Context, cfg *config.Config, enumerated []string, logger *diag.Logger, cache *semanticindex.Cache) (*types.CacheIndex, bool) {
	var idx *types.CacheIndex
	var err error

	if cache != nil {
		if cached, ok := cache.Get(cfg.Project.Root); ok {
			idx = cached
		}
	}

	if idx == nil {
		idx, err = semanticindex.Load(cfg.Project.Root)
		if err != nil {
			logger.WarnOnce("index-load", "failed to load semantic index: %v", err)
		}
	}

	manifestChanged := idx != nil && semanticindex.ManifestChanged(cfg.Project.Root, idx.ScannedAt)
	if idx == nil || manifestChanged {
		idx = semanticindex.New(cfg.Project.Root)
	}

	result := semanticindex.Refresh(ctx, cfg.Project.Root, idx, enumerated, cfg.Index.RefreshBatchSize)
	if result.Errors > 0 {
		logger.WarnOnce("index-refresh", "%d files failed to parse during index refresh", result.Errors)
	}

	return idx, !manifestChanged
}

func loadSession(root, idOrName string, logger *diag.Logger) (*types.Session, *session.Manager) {
	if idOrName == "" {
		return nil, nil
	}
	mgr := session.NewManager(root)
	sess, err := mgr.Load(idOrName)
	if err != nil {
		logger.WarnOnce("session-load", "failed to load session %q: %v", idOrName, err)
		return nil, mgr
	}
	return sess, mgr
}

func boostMapsFor(sess *types.Session, mgr *session.Manager) (map[string]float64, map[string]string) {
	boosts := make(map[string]float64)
	reasons := make(map[string]string)
	if sess == nil || mgr == nil {
		return boosts, reasons
	}
	for _, b := range mgr.GetBoostCandidates(sess) {
		boosts[b.Path] = b.BoostFactor
		reasons[b.Path] = b.Reason
	}
	return boosts, reasons
}

func recordSessionActivity(sess *types.Session, mgr *session.Manager, query string, scored []types.ScoredFile, logger *diag.Logger) {
	if sess == nil || mgr == nil {
		return
	}
	if err := mgr.RecordQuery(sess, query, scoredPaths(scored)); err != nil {
		logger.WarnOnce("session-record-query", "failed to record query in session: %v", err)
	}
	if err := mgr.RecordFileViews(sess, scored); err != nil {
		logger.WarnOnce("session-record-views", "failed to record file views in session: %v", err)
	}
}

func topPaths(files []types.ScoredFile, n int) []string {
	if len(files) < n {
		n = len(files)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = files[i].Path
	}
	return out
}
