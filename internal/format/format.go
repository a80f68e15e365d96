// Package format renders a Context Builder Result (spec §4.9) into one
// of the CLI's three output surfaces (spec §6): pretty-printed JSON, a
// bare file list, or a Markdown report. All three are out of the core per
// spec §1, but the JSON schema is fully specified in §6 so all three
// are straightforward renderers, following the teacher's
// internal/display dispatch-on-format-string shape.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/theodags/mantic/internal/types"
)

// Mode selects one of the CLI's output-format toggles (spec §6).
type Mode string

const (
	ModeJSON     Mode = "json"
	ModeFiles    Mode = "files"
	ModeMarkdown Mode = "markdown"
)

// Render dispatches to the renderer matching mode, defaulting to JSON
// when mode is empty or unrecognized (spec §6 "default json").
func Render(mode Mode, result types.Result) (string, error) {
	switch mode {
	case ModeFiles:
		return RenderFiles(result), nil
	case ModeMarkdown:
		return RenderMarkdown(result), nil
	default:
		return RenderJSON(result)
	}
}

// RenderJSON pretty-prints the Result exactly per its spec §6 schema.
func RenderJSON(result types.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

// RenderFiles renders one ranked path per line, the `--files` toggle's
// bare-list surface for piping into other tools.
func RenderFiles(result types.Result) string {
	var sb strings.Builder
	for _, f := range result.Files {
		sb.WriteString(f.Path)
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderMarkdown renders a human-readable report: a query/intent
// header, a results table, and any warnings or validation notes.
func RenderMarkdown(result types.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Search: %s\n\n", result.Query)
	fmt.Fprintf(&sb, "Intent: **%s**", result.Intent.Category)
	if result.Intent.SubCategory != "" {
		fmt.Fprintf(&sb, " / %s", result.Intent.SubCategory)
	}
	fmt.Fprintf(&sb, " (confidence %.2f)\n\n", result.Intent.Confidence)

	fmt.Fprintf(&sb, "Scanned %d files, returned %d, in %dms.\n\n",
		result.Metadata.TotalScanned, result.Metadata.FilesReturned, result.Metadata.TimeMs)

	if len(result.Files) == 0 {
		sb.WriteString("No matching files.\n")
	} else {
		sb.WriteString("| Score | Path | Reasons |\n")
		sb.WriteString("|---|---|---|\n")
		for _, f := range result.Files {
			fmt.Fprintf(&sb, "| %.1f | `%s` | %s |\n", f.Score, f.Path, strings.Join(f.MatchReasons, ", "))
		}
		sb.WriteString("\n")
	}

	if result.Validation != nil && !result.Validation.IsValid {
		fmt.Fprintf(&sb, "> **Warning:** only %d/%d referenced entities were resolved; this result may be a hallucination.\n\n",
			result.Validation.FoundCount, result.Validation.EntityCount)
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range result.Warnings {
			if w.Message != "" {
				fmt.Fprintf(&sb, "- **%s**: %s\n", w.Kind, w.Message)
			} else {
				fmt.Fprintf(&sb, "- **%s**: `%s`\n", w.Kind, w.Path)
			}
		}
		sb.WriteString("\n")
	}

	if result.GitState != nil && result.GitState.IsRepo && result.Metadata.HasGitChanges {
		fmt.Fprintf(&sb, "Branch `%s` has %d modified file(s).\n", result.GitState.Branch, len(result.GitState.ModifiedFiles))
	}

	return sb.String()
}
