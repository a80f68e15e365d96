// Package contextbuilder assembles the final search Result (spec §4.9):
// the scored file list with per-file confidence, plus advisory warnings
// from canonical-duplicate analysis and entity validation.
package contextbuilder

import (
	"github.com/theodags/mantic/internal/types"
)

// Build assembles the final Result from a ranked file list, the
// candidate universe it was drawn from (for duplicate/entity analysis),
// and the semantic index (for entity validation, may be nil when the
// index is unavailable).
func Build(
	query string,
	intent types.IntentAnalysis,
	files []types.ScoredFile,
	candidatePaths []string,
	idx *types.CacheIndex,
	meta types.ResultMetadata,
	gitState *types.GitState,
) types.Result {
	annotateConfidence(files)

	warnings := analyzeDuplicates(candidatePaths)
	validation, entityWarnings := Validate(intent.Entities, candidatePaths, idx)
	warnings = append(warnings, entityWarnings...)

	return types.Result{
		Query:      query,
		Intent:     intent,
		Files:      files,
		Metadata:   meta,
		GitState:   gitState,
		Warnings:   warnings,
		Validation: validation,
	}
}

// annotateConfidence computes and stores the per-file confidence (spec
// §4.9) in place, using the median and mean of the result set's scores.
func annotateConfidence(files []types.ScoredFile) {
	scores := make([]float64, len(files))
	for i, f := range files {
		scores[i] = f.Score
	}
	med := median(scores)
	avg := mean(scores)

	for i := range files {
		c := confidenceFor(files[i].Score, med, avg)
		if files[i].Metadata == nil {
			files[i].Metadata = &types.FileMetadata{}
		}
		files[i].Metadata.Confidence = c
	}
}
