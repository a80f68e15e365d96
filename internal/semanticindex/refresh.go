package semanticindex

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/theodags/mantic/internal/types"
)

// RefreshBatchSize is the default concurrency cap for re-parsing
// modified/added files (spec §4.5).
const RefreshBatchSize = 50

// RefreshResult summarizes one incremental refresh pass.
type RefreshResult struct {
	Added    int
	Modified int
	Deleted  int
	Errors   int
}

// Refresh classifies every enumerated path as modified, added, or
// deleted relative to idx, re-parses modified+added files in bounded
// concurrency batches, and mutates idx in place (spec §4.5).
func Refresh(ctx context.Context, root string, idx *types.CacheIndex, enumerated []string, batchSize int) RefreshResult {
	if batchSize <= 0 {
		batchSize = RefreshBatchSize
	}

	present := make(map[string]bool, len(enumerated))
	var toParse []string

	for _, p := range enumerated {
		present[p] = true
		lang := LanguageFor(filepath.Ext(p))
		if lang == types.LangUnknown {
			continue
		}

		info, err := os.Stat(filepath.Join(root, p))
		if err != nil {
			continue
		}

		existing, ok := idx.Files[p]
		if !ok {
			toParse = append(toParse, p)
			continue
		}

		sizeChanged := existing.Size != info.Size()
		mtimeChanged := existing.ModTime.Before(info.ModTime())
		if !sizeChanged && !mtimeChanged {
			continue
		}
		if sizeChanged {
			toParse = append(toParse, p)
			continue
		}

		// mtime moved but size didn't: a touch or a no-op checkout often
		// bumps mtime without changing bytes. A content hash is far
		// cheaper than a full re-parse, so confirm real change first.
		content, err := os.ReadFile(filepath.Join(root, p))
		if err != nil {
			toParse = append(toParse, p)
			continue
		}
		if xxhash.Sum64(content) == existing.FastHash {
			existing.ModTime = info.ModTime()
			idx.Files[p] = existing
			continue
		}
		toParse = append(toParse, p)
	}

	var result RefreshResult
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)

	for _, p := range toParse {
		p := p
		_, wasPresent := idx.Files[p]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			full := filepath.Join(root, p)
			content, err := os.ReadFile(full)
			if err != nil {
				mu.Lock()
				result.Errors++
				mu.Unlock()
				return nil
			}
			info, err := os.Stat(full)
			if err != nil {
				mu.Lock()
				result.Errors++
				mu.Unlock()
				return nil
			}

			entry := Parse(p, content, LanguageFor(filepath.Ext(p)))
			entry.ModTime = info.ModTime()
			entry.Size = info.Size()
			entry.FastHash = xxhash.Sum64(content)
			entry.ParsedAt = time.Now()

			mu.Lock()
			idx.Files[p] = entry
			if wasPresent {
				result.Modified++
			} else {
				result.Added++
			}
			if entry.ParseError != "" {
				result.Errors++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for p := range idx.Files {
		if !present[p] {
			delete(idx.Files, p)
			result.Deleted++
		}
	}

	idx.TotalFiles = len(idx.Files)
	idx.ScannedAt = time.Now()
	idx.ProjectRoot = root

	return result
}
