package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/app"
	"github.com/tildaslashalef/streamsect/internal/chat"
	"github.com/tildaslashalef/streamsect/internal/utils"
)

// displayTimeFormat is the timestamp layout used in history output
const displayTimeFormat = "2006-01-02 15:04:05"

// HistoryCommand returns the CLI command for the transcript store
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse and manage stored transcript sessions",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List sessions, most recently updated first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "Page number",
						Value:   1,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Sessions per page (defaults to the configured history limit)",
					},
				},
				Action: historyListAction,
			},
			{
				Name:      "show",
				Usage:     "Show a session with its messages decomposed into sections",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Print message content without decomposing it",
					},
				},
				Action: historyShowAction,
			},
			{
				Name:      "import",
				Usage:     "Import a transcript file as an assistant message",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Append to an existing session instead of creating one",
					},
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Model name to record for the message",
					},
				},
				Action: historyImportAction,
			},
			{
				Name:      "search",
				Usage:     "Search message content",
				ArgsUsage: "<term>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "Page number",
						Value:   1,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Results per page (defaults to the configured history limit)",
					},
				},
				Action: historySearchAction,
			},
			{
				Name:      "rename",
				Usage:     "Rename a session",
				ArgsUsage: "<session-id> <title>",
				Action:    historyRenameAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a session and all of its messages",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Confirm the deletion",
					},
				},
				Action: historyDeleteAction,
			},
		},
	}
}

func historyListAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	limit := c.Int("limit")
	if limit <= 0 {
		limit = application.Config.Chat.HistoryLimit
	}
	params := chat.NewPaginationParams(c.Int("page"), limit)

	sessions, err := application.Chat.ListSessions(context.Background(), params)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		utils.PrintInfo("No sessions found")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, []string{
			session.ID,
			utils.TruncateString(session.Title, 40),
			session.UpdatedAt.Format(displayTimeFormat),
		})
	}

	opts := utils.DefaultTableOptions()
	opts.Title = "Sessions"
	utils.PrintTable([]string{"ID", "Title", "Updated"}, rows, opts)

	if len(sessions) == params.Limit {
		utils.PrintInfo(fmt.Sprintf("Showing page %d; use --page %d for older sessions", params.Page, params.Page+1))
	}

	return nil
}

func historyShowAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	ctx := context.Background()

	session, err := application.Chat.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	parsed, err := application.Chat.GetParsedMessages(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	utils.PrintHeading(session.Title)
	utils.PrintKeyValue("Session", session.ID)
	utils.PrintKeyValue("Created", session.CreatedAt.Format(displayTimeFormat))
	utils.PrintKeyValue("Messages", strconv.Itoa(len(parsed)))

	for _, pm := range parsed {
		utils.PrintDivider()

		roleColor := utils.Theme.Info
		if pm.Message.Role == chat.RoleAssistant {
			roleColor = utils.Theme.Accent
		}
		utils.PrintKeyValueWithColor("Role", string(pm.Message.Role), roleColor)
		if pm.Message.Model != "" {
			utils.PrintKeyValue("Model", pm.Message.Model)
		}
		utils.PrintKeyValue("Time", pm.Message.CreatedAt.Format(displayTimeFormat))
		fmt.Println()

		// User turns have no sections; assistant turns are decomposed unless
		// the caller asked for raw content
		if c.Bool("raw") || pm.Sections == nil {
			fmt.Println(utils.WrapText(pm.Message.Content, wrapWidth))
			continue
		}
		renderResultText(pm.Sections)
	}

	return nil
}

func historyImportAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("transcript file is required")
	}

	session, message, err := application.Chat.ImportTranscript(
		context.Background(), c.String("session"), path, c.String("model"))
	if err != nil {
		return fmt.Errorf("failed to import transcript: %w", err)
	}

	utils.PrintSuccess("Transcript imported")
	utils.PrintKeyValue("Session", session.ID)
	utils.PrintKeyValue("Title", session.Title)
	utils.PrintKeyValue("Message", message.ID)

	return nil
}

func historySearchAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	term := c.Args().First()
	if term == "" {
		return fmt.Errorf("search term is required")
	}

	limit := c.Int("limit")
	if limit <= 0 {
		limit = application.Config.Chat.HistoryLimit
	}
	params := chat.NewPaginationParams(c.Int("page"), limit)

	messages, err := application.Chat.SearchMessages(context.Background(), term, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(messages) == 0 {
		utils.PrintInfo(fmt.Sprintf("No messages match %q", term))
		return nil
	}

	rows := make([][]string, 0, len(messages))
	for _, message := range messages {
		preview := utils.TruncateString(strings.Join(strings.Fields(message.Content), " "), 60)
		preview = strings.ReplaceAll(preview, term, utils.HighlightText(term))

		rows = append(rows, []string{
			message.ID,
			message.SessionID,
			message.CreatedAt.Format(displayTimeFormat),
			preview,
		})
	}

	opts := utils.DefaultTableOptions()
	opts.Title = fmt.Sprintf("Messages matching %q", term)
	utils.PrintTable([]string{"ID", "Session", "Time", "Preview"}, rows, opts)

	if len(messages) == params.Limit {
		utils.PrintInfo(fmt.Sprintf("Showing page %d; use --page %d for more results", params.Page, params.Page+1))
	}

	return nil
}

func historyRenameAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	sessionID := c.Args().Get(0)
	title := c.Args().Get(1)
	if sessionID == "" || title == "" {
		return fmt.Errorf("session id and new title are required")
	}

	session, err := application.Chat.RenameSession(context.Background(), sessionID, title)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}

	utils.PrintSuccess(fmt.Sprintf("Session %s renamed to %q", session.ID, session.Title))
	return nil
}

func historyDeleteAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	if !c.Bool("force") {
		utils.PrintWarning("This permanently deletes the session and all of its messages; pass --force to confirm")
		return nil
	}

	if err := application.Chat.DeleteSession(context.Background(), sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	utils.PrintSuccess(fmt.Sprintf("Session %s deleted", sessionID))
	return nil
}
