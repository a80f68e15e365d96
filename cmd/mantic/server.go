package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/diag"
	"github.com/theodags/mantic/internal/enumerator"
	"github.com/theodags/mantic/internal/mcpserver"
	"github.com/theodags/mantic/internal/semanticindex"
	"github.com/theodags/mantic/internal/watch"
)

// watchDebounce coalesces bursts of filesystem events (editor saves, git
// checkouts) into a single refresh, mirroring the teacher's watcher debounce.
const watchDebounce = 750 * time.Millisecond

// serverCommand implements the `server` subcommand (spec §6): starts the
// agent-protocol stdio server.
func serverCommand() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Usage:  "Start the agent-protocol stdio server",
		Action: runMCPServer,
	}
}

func runMCPServer(c *cli.Context) error {
	cfg, err := config.Load(c.String("path"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	logger := loggerFor(c)
	startBackgroundRefresh(ctx, cfg, logger)

	srv := mcpserver.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

// startBackgroundRefresh keeps the persisted semantic index warm between
// tool calls for the long-running server process: a debounced fsnotify
// watcher triggers a full re-enumeration and incremental re-parse on any
// change under the project root. The one-shot search command never does
// this — it refreshes inline as part of pipeline.Run instead.
func startBackgroundRefresh(ctx context.Context, cfg *config.Config, logger *diag.Logger) {
	w, err := watch.New(cfg.Project.Root, watchDebounce, logger)
	if err != nil {
		logger.WarnOnce("watch-init", "background index watch disabled: %v", err)
		return
	}

	onChange := func(paths []string) {
		res := enumerator.Enumerate(ctx, cfg, logger)
		if len(res.Files) == 0 {
			return
		}
		idx, err := semanticindex.Load(cfg.Project.Root)
		if err != nil || idx == nil {
			idx = semanticindex.New(cfg.Project.Root)
		}
		semanticindex.Refresh(ctx, cfg.Project.Root, idx, res.Files, cfg.Index.RefreshBatchSize)
		if err := semanticindex.Save(cfg.Project.Root, idx); err != nil {
			logger.WarnOnce("watch-save", "failed to save refreshed index: %v", err)
		}
	}

	go func() {
		if err := w.Run(ctx, onChange); err != nil {
			logger.WarnOnce("watch-run", "background index watch stopped: %v", err)
		}
	}()
}
