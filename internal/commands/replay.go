package commands

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/app"
	"github.com/tildaslashalef/streamsect/internal/chat"
	"github.com/tildaslashalef/streamsect/internal/feed"
	"github.com/tildaslashalef/streamsect/internal/loggy"
	"github.com/tildaslashalef/streamsect/internal/reply"
	"github.com/tildaslashalef/streamsect/internal/utils"
)

// ReplayCommand returns the CLI command for chunked streaming replay
func ReplayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Feed a transcript through the streaming parser chunk by chunk",
		ArgsUsage: "[file]",
		Description: "Splits a transcript into chunks and replays it through the incremental " +
			"parser, as if the text were arriving from a live model. Useful for " +
			"inspecting phase transitions, pacing a demo, and cross-checking the " +
			"streaming parser against the one-shot parser.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "chunk-size",
				Aliases: []string{"c"},
				Usage:   "Runes per chunk (defaults to the configured size)",
			},
			&cli.Float64Flag{
				Name:    "rate",
				Aliases: []string{"r"},
				Usage:   "Chunks per second, 0 for no pacing (defaults to the configured rate)",
			},
			&cli.BoolFlag{
				Name:    "live",
				Aliases: []string{"l"},
				Usage:   "Show replay progress and phase transitions",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Cross-check the streamed result against the one-shot parser",
			},
			&cli.BoolFlag{
				Name:    "save",
				Aliases: []string{"s"},
				Usage:   "Save the transcript into a new session",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Save the transcript into an existing session (implies --save)",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Model name to record when saving",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, table, or text",
				Value:   "text",
			},
		},
		Action: replayAction,
	}
}

func replayAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return fmt.Errorf("failed to get application from context: %w", err)
	}

	content, err := readTranscript(c.Args().First())
	if err != nil {
		return err
	}

	cfg := application.Config

	chunkSize := cfg.Replay.ChunkSize
	if c.IsSet("chunk-size") {
		chunkSize = c.Int("chunk-size")
		if chunkSize <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", chunkSize)
		}
	}

	pace := cfg.Replay.Rate
	if c.IsSet("rate") {
		pace = c.Float64("rate")
		if pace < 0 {
			return fmt.Errorf("rate must not be negative, got %f", pace)
		}
	}

	source := feed.NewSource(feed.Config{
		ChunkSize: chunkSize,
		Rate:      pace,
		Burst:     cfg.Replay.Burst,
	}, loggy.GetGlobalLogger())

	loggy.Debug("Replaying transcript",
		"bytes", len(content),
		"chunk_size", chunkSize,
		"rate", pace,
	)

	ctx := context.Background()

	chunks, err := source.StreamText(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to start replay: %w", err)
	}

	// Live mode renders a progress bar with phase transitions logged above it
	var pw progress.Writer
	var tracker *progress.Tracker
	if c.Bool("live") {
		popts := utils.DefaultProgressOptions()
		popts.Title = "Replay"
		pw = utils.CreateProgressWriter(popts)

		total := int64(len(feed.SplitText(content, chunkSize)))
		tracker = utils.CreateProgressTracker("Replaying transcript", total)
		utils.RenderProgressTrackers(pw, []*progress.Tracker{tracker})
	}

	parser := reply.NewStreamParser()
	phase := parser.Phase()
	processed := 0

	for chunk := range chunks {
		parser.ProcessChunk(chunk)
		processed++

		if tracker != nil {
			tracker.Increment(1)
		}
		if parser.Phase() != phase {
			phase = parser.Phase()
			if pw != nil {
				pw.Log("entered %s after chunk %d", phase, processed)
			}
		}
	}

	if tracker != nil {
		tracker.MarkAsDone()
		for pw.IsRenderInProgress() {
			time.Sleep(50 * time.Millisecond)
		}
	}

	res := parser.Finalize()

	utils.PrintKeyValue("Chunks", strconv.Itoa(processed))
	utils.PrintKeyValue("Final phase", parser.Phase().String())

	if c.Bool("verify") {
		oneShot := application.Extract.Parse(content)
		if diffs := diffResults(res, oneShot); len(diffs) == 0 {
			utils.PrintKeyValueWithColor("Verification", "MATCH", utils.Theme.Success)
		} else {
			utils.PrintKeyValueWithColor("Verification", "MISMATCH", utils.Theme.Error)
			utils.PrintList(diffs, "")
			return fmt.Errorf("streaming and one-shot results disagree")
		}
	}

	if c.Bool("save") || c.String("session") != "" {
		if err := saveTranscript(ctx, application, c.String("session"), content, c.String("model")); err != nil {
			return err
		}
	}

	fmt.Println()
	return renderResult(res, c.String("format"))
}

// diffResults names the fields on which two parse results disagree
func diffResults(streamed, oneShot *reply.Result) []string {
	var diffs []string
	if streamed.Reasoning != oneShot.Reasoning {
		diffs = append(diffs, "reasoning")
	}
	if !reflect.DeepEqual(streamed.Tools, oneShot.Tools) {
		diffs = append(diffs, "tools")
	}
	if streamed.Conclusion != oneShot.Conclusion {
		diffs = append(diffs, "conclusion")
	}
	if !reflect.DeepEqual(streamed.Attachments, oneShot.Attachments) {
		diffs = append(diffs, "attachments")
	}
	if !reflect.DeepEqual(streamed.DataBlocks, oneShot.DataBlocks) {
		diffs = append(diffs, "data blocks")
	}
	return diffs
}

// saveTranscript stores the replayed transcript as an assistant turn, in the
// named session or a fresh one.
func saveTranscript(ctx context.Context, application *app.App, sessionID, content, model string) error {
	var session *chat.Session
	var err error

	if sessionID == "" {
		session, err = application.Chat.CreateSession(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	} else {
		session, err = application.Chat.GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
	}

	message, err := application.Chat.AppendMessage(ctx, session.ID, chat.RoleAssistant, content, model)
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	utils.PrintSuccess(fmt.Sprintf("Saved to session %s as message %s", session.ID, message.ID))
	return nil
}
