package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/format"
	"github.com/theodags/mantic/internal/pipeline"
	"github.com/theodags/mantic/internal/types"
)

// searchAction runs the default search command: a free-text query
// joined from the variadic arg list, per spec §6.
func searchAction(c *cli.Context) error {
	outputMode, err := resolveOutputMode(c)
	if err != nil {
		return err
	}
	onlyTags, err := resolveFilter(c)
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.String("path"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := pipeline.Run(context.Background(), cfg, loggerFor(c), pipeline.Options{
		Query:            queryFrom(c),
		IncludeGenerated: c.Bool("include-generated"),
		OnlyTags:         onlyTags,
		Impact:           c.Bool("impact"),
		SessionIDOrName:  c.String("session"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	rendered, err := format.Render(outputMode, result)
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Println(rendered)
	return nil
}

// resolveOutputMode enforces the --json|--files|--markdown mutual
// exclusion (spec §6), defaulting to JSON when none is supplied.
func resolveOutputMode(c *cli.Context) (format.Mode, error) {
	set := []format.Mode{}
	if c.Bool("json") {
		set = append(set, format.ModeJSON)
	}
	if c.Bool("files") {
		set = append(set, format.ModeFiles)
	}
	if c.Bool("markdown") {
		set = append(set, format.ModeMarkdown)
	}
	if len(set) > 1 {
		return "", fmt.Errorf("--json, --files, and --markdown are mutually exclusive")
	}
	if len(set) == 0 {
		return format.ModeJSON, nil
	}
	return set[0], nil
}

// resolveFilter enforces the --code|--config|--test mutual exclusion
// (spec §6).
func resolveFilter(c *cli.Context) ([]types.FileTag, error) {
	set := []types.FileTag{}
	if c.Bool("code") {
		set = append(set, types.TagCode)
	}
	if c.Bool("config") {
		set = append(set, types.TagConfig)
	}
	if c.Bool("test") {
		set = append(set, types.TagTest)
	}
	if len(set) > 1 {
		return nil, fmt.Errorf("--code, --config, and --test are mutually exclusive")
	}
	return set, nil
}
