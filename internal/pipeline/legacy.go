package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/theodags/mantic/internal/semanticindex"
	"github.com/theodags/mantic/internal/types"
)

// legacyPointerPath is `.{tool}/session.json` (spec §9(b)): a
// carryover-hint-only pointer, never authoritative for boosts.
func legacyPointerPath(root string) string {
	return filepath.Join(root, semanticindex.ToolDir, "session.json")
}

func loadLegacyPointer(root string) *types.LegacySessionPointer {
	data, err := os.ReadFile(legacyPointerPath(root))
	if err != nil {
		return nil
	}
	var ptr types.LegacySessionPointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return nil
	}
	return &ptr
}

// saveLegacyPointer records the just-run query as the carryover hint for
// the next invocation (spec §9(b)).
func saveLegacyPointer(root, query string, keywords, topFiles []string) error {
	ptr := types.LegacySessionPointer{
		LastRequest: &types.LegacyLastRequest{
			Prompt:    query,
			Keywords:  keywords,
			TopFiles:  topFiles,
			Timestamp: time.Now(),
		},
	}
	data, err := json.MarshalIndent(ptr, "", "  ")
	if err != nil {
		return err
	}
	path := legacyPointerPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
