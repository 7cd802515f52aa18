package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/app"
	"github.com/tildaslashalef/streamsect/internal/utils"
)

// ConfigCommand returns the CLI command for database-backed settings
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage persistent settings stored in the database",
		Description: "Settings set here override the .env defaults on every start. " +
			"Known keys: replay.chunk_size, replay.rate, replay.burst, " +
			"chat.history_limit, chat.auto_title, chat.default_model.",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print one setting",
				ArgsUsage: "<key>",
				Action:    configGetAction,
			},
			{
				Name:      "set",
				Usage:     "Store a setting",
				ArgsUsage: "<key> <value>",
				Action:    configSetAction,
			},
			{
				Name:   "list",
				Usage:  "List all stored settings",
				Action: configListAction,
			},
			{
				Name:      "unset",
				Usage:     "Remove a setting, falling back to the .env default",
				ArgsUsage: "<key>",
				Action:    configUnsetAction,
			},
		},
	}
}

func configGetAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("setting key is required")
	}

	value, err := application.Settings.GetSetting(context.Background(), key)
	if err != nil {
		return fmt.Errorf("failed to read setting: %w", err)
	}

	if value == "" {
		utils.PrintWarning(fmt.Sprintf("Setting %q is not stored; the .env default applies", key))
		return nil
	}

	utils.PrintKeyValue(key, value)
	return nil
}

func configSetAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)
	if key == "" || value == "" {
		return fmt.Errorf("setting key and value are required")
	}

	ctx := context.Background()

	// Known keys go through their typed setters so bad values are rejected
	// here instead of silently skipped at the next start
	switch key {
	case "replay.chunk_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("replay.chunk_size must be a positive integer, got %q", value)
		}
		err = application.Settings.SetReplayChunkSize(ctx, n)
		if err != nil {
			return fmt.Errorf("failed to store setting: %w", err)
		}
	case "replay.rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("replay.rate must be a non-negative number, got %q", value)
		}
		err = application.Settings.SetReplayRate(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to store setting: %w", err)
		}
	case "chat.history_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("chat.history_limit must be a positive integer, got %q", value)
		}
		err = application.Settings.SetHistoryLimit(ctx, n)
		if err != nil {
			return fmt.Errorf("failed to store setting: %w", err)
		}
	case "chat.auto_title":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("chat.auto_title must be a boolean, got %q", value)
		}
		err = application.Settings.SetAutoTitle(ctx, b)
		if err != nil {
			return fmt.Errorf("failed to store setting: %w", err)
		}
	default:
		if err := application.Settings.SetSetting(ctx, key, value); err != nil {
			return fmt.Errorf("failed to store setting: %w", err)
		}
	}

	utils.PrintSuccess(fmt.Sprintf("Setting %s stored", key))
	return nil
}

func configListAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	settings, err := application.Settings.GetSettings(context.Background(), "")
	if err != nil {
		return fmt.Errorf("failed to list settings: %w", err)
	}

	if len(settings) == 0 {
		utils.PrintInfo("No settings stored; the .env defaults apply")
		return nil
	}

	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, settings[key]})
	}

	opts := utils.DefaultTableOptions()
	opts.Title = "Settings"
	utils.PrintTable([]string{"Key", "Value"}, rows, opts)

	return nil
}

func configUnsetAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("setting key is required")
	}

	if err := application.Settings.DeleteSetting(context.Background(), key); err != nil {
		return fmt.Errorf("failed to remove setting: %w", err)
	}

	utils.PrintSuccess(fmt.Sprintf("Setting %s removed", key))
	return nil
}
