package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/app"
	"github.com/tildaslashalef/streamsect/internal/commands"
)

// Version information - populated at build time
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
	Author     = "unknown"
	Email      = "unknown"
)

var (
	globalFlags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
)

func main() {
	cliApp := &cli.App{
		Name:  "streamsect",
		Usage: "Structured reply stream parser",
		Description: "Streamsect decomposes AI assistant replies into reasoning, tools, and " +
			"conclusion sections. It parses complete transcripts in one shot, replays " +
			"them chunk by chunk through the streaming parser, and keeps a local " +
			"store of past sessions.",
		Version: Version,
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Authors: []*cli.Author{
			{
				Name:  Author,
				Email: Email,
			},
		},
		Flags: globalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				// The logger reads its level from the environment during
				// application startup
				if err := os.Setenv("STREAMSECT_LOG_LEVEL", "debug"); err != nil {
					return fmt.Errorf("failed to enable debug logging: %w", err)
				}
			}

			// Initialize the application
			application, err := app.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			// Store the app instance in the context for later use
			c.App.Metadata = map[string]interface{}{
				"app": application,
			}

			return nil
		},
		After: func(c *cli.Context) error {
			// Gracefully shutdown the application
			if app, ok := c.App.Metadata["app"].(*app.App); ok {
				return app.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.InitCommand(),
			commands.ParseCommand(),
			commands.ReplayCommand(),
			commands.HistoryCommand(),
			commands.ConfigCommand(),
			commands.PromptCommand(),
			commands.MigrateCommand(),
		},
		Action: func(c *cli.Context) error {
			// Without a subcommand there is nothing sensible to parse
			return cli.ShowAppHelp(c)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
