package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/app"
	"github.com/tildaslashalef/streamsect/internal/loggy"
)

// ParseCommand returns the CLI command for one-shot transcript parsing
func ParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Decompose a complete reply transcript into sections",
		ArgsUsage: "[file]",
		Description: "Parses a reply transcript in one pass and prints its reasoning, tools, " +
			"and conclusion sections. Reads the named file, or stdin when no file " +
			"(or \"-\") is given.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, table, or text",
				Value:   "text",
			},
		},
		Action: parseAction,
	}
}

func parseAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	content, err := readTranscript(c.Args().First())
	if err != nil {
		return err
	}

	loggy.Debug("Parsing transcript", "bytes", len(content), "format", c.String("format"))

	res := application.Extract.Parse(content)

	return renderResult(res, c.String("format"))
}
