// Command mantic is the CLI surface (spec §6): a single primary search
// action plus session and server subcommands, built on
// github.com/urfave/cli/v2 the same way the teacher's cmd/lci/main.go
// assembles its cli.App.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/theodags/mantic/internal/diag"
	"github.com/theodags/mantic/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "mantic",
		Usage:   "Structural code search for AI coding agents",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Project root to scan (defaults to the current directory)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress diagnostic output",
			},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON (default)"},
			&cli.BoolFlag{Name: "files", Usage: "Output a bare list of ranked file paths"},
			&cli.BoolFlag{Name: "markdown", Usage: "Output a Markdown report"},
			&cli.BoolFlag{Name: "mcp", Usage: "Start the agent-protocol stdio server instead of searching"},
			&cli.BoolFlag{Name: "code", Usage: "Only return code files"},
			&cli.BoolFlag{Name: "config", Usage: "Only return config files"},
			&cli.BoolFlag{Name: "test", Usage: "Only return test files"},
			&cli.BoolFlag{Name: "include-generated", Usage: "Include generated files (excluded by default)"},
			&cli.BoolFlag{Name: "impact", Usage: "Annotate results with dependency blast-radius impact"},
			&cli.StringFlag{Name: "session", Usage: "Session id or active session name to record this query against"},
		},
		Commands: []*cli.Command{
			sessionCommand(),
			serverCommand(),
		},
		Action: rootAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func rootAction(c *cli.Context) error {
	if c.Bool("mcp") {
		return runMCPServer(c)
	}
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return searchAction(c)
}

func loggerFor(c *cli.Context) *diag.Logger {
	return diag.New(os.Stderr, c.Bool("quiet"))
}

func queryFrom(c *cli.Context) string {
	return strings.Join(c.Args().Slice(), " ")
}
