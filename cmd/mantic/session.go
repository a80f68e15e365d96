package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/session"
	"github.com/theodags/mantic/internal/types"
)

// sessionCommand implements the `session` subcommand group (spec §6):
// start [name] [-i|--intent <text>], list, info <id>, end <id>. end has
// no default session: it requires an id or active session name.
func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage search sessions (spec §4.8)",
		Subcommands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "Start a new session",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "intent", Aliases: []string{"i"}, Usage: "Intent category hint for the session"},
				},
				Action: sessionStartAction,
			},
			{
				Name:   "list",
				Usage:  "List sessions, most recently active first",
				Action: sessionListAction,
			},
			{
				Name:      "info",
				Usage:     "Show full detail for one session",
				ArgsUsage: "<id>",
				Action:    sessionInfoAction,
			},
			{
				Name:      "end",
				Usage:     "Mark a session ended",
				ArgsUsage: "<id>",
				Action:    sessionEndAction,
			},
		},
	}
}

func managerFor(c *cli.Context) (*session.Manager, error) {
	cfg, err := config.Load(c.String("path"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return session.NewManager(cfg.Project.Root), nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func sessionStartAction(c *cli.Context) error {
	mgr, err := managerFor(c)
	if err != nil {
		return err
	}
	sess, err := mgr.Start(c.Args().First(), types.IntentCategory(c.String("intent")))
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return printJSON(sess)
}

func sessionListAction(c *cli.Context) error {
	mgr, err := managerFor(c)
	if err != nil {
		return err
	}
	sessions, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	metas := make([]types.SessionMeta, 0, len(sessions))
	for _, s := range sessions {
		metas = append(metas, s.Meta)
	}
	return printJSON(metas)
}

func sessionInfoAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: mantic session info <id>")
	}
	mgr, err := managerFor(c)
	if err != nil {
		return err
	}
	sess, err := mgr.Load(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return cli.Exit(fmt.Sprintf("no session found for %q", c.Args().First()), 1)
	}
	return printJSON(sess)
}

func sessionEndAction(c *cli.Context) error {
	mgr, err := managerFor(c)
	if err != nil {
		return err
	}
	idOrName := c.Args().First()
	if idOrName == "" {
		return fmt.Errorf("usage: mantic session end <id>")
	}
	sess, err := mgr.Load(idOrName)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return cli.Exit(fmt.Sprintf("no session found for %q", idOrName), 1)
	}
	if err := mgr.End(sess); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return printJSON(sess.Meta)
}
