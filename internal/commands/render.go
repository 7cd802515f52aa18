package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tildaslashalef/streamsect/internal/reply"
	"github.com/tildaslashalef/streamsect/internal/utils"
)

// wrapWidth is the display width for wrapped section text
const wrapWidth = 80

// readTranscript reads the transcript to parse: the first argument names a
// file, "-" or no argument means stdin.
func readTranscript(path string) (string, error) {
	var data []byte
	var err error

	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read transcript from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read transcript: %w", err)
		}
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("transcript is empty")
	}

	return content, nil
}

// renderResult prints a parse result in the requested format
func renderResult(res *reply.Result, format string) error {
	switch format {
	case "json":
		return renderResultJSON(res)
	case "table":
		renderResultTable(res)
		return nil
	case "text", "":
		renderResultText(res)
		return nil
	default:
		return fmt.Errorf("unknown format: %s (expected json, table, or text)", format)
	}
}

// renderResultJSON prints the result as indented JSON
func renderResultJSON(res *reply.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// renderResultTable prints the sections as a two-column table
func renderResultTable(res *reply.Result) {
	rows := [][]string{}

	if res.Reasoning != "" {
		rows = append(rows, []string{"Reasoning", utils.WrapText(res.Reasoning, 60)})
	}
	if len(res.Tools) > 0 {
		rows = append(rows, []string{"Tools", strings.Join(res.Tools, "\n")})
	}
	if res.Conclusion != "" {
		rows = append(rows, []string{"Conclusion", utils.WrapText(res.Conclusion, 60)})
	}
	for _, att := range res.Attachments {
		rows = append(rows, []string{"Attachment", describeAttachment(att)})
	}
	for _, block := range res.DataBlocks {
		rows = append(rows, []string{"Data", fmt.Sprintf("%s, %d record(s)", block.Format, len(block.Records))})
	}

	if len(rows) == 0 {
		utils.PrintWarning("Nothing to show")
		return
	}

	opts := utils.DefaultTableOptions()
	opts.Title = "Sections"
	utils.PrintTable([]string{"Section", "Content"}, rows, opts)

	// Tabular blocks get their own table below the section summary
	for i, block := range res.DataBlocks {
		renderDataBlock(i, block)
	}
}

// renderResultText prints the sections as styled terminal text
func renderResultText(res *reply.Result) {
	if res.IsZero() {
		utils.PrintWarning("Nothing to show")
		return
	}

	if res.Reasoning != "" {
		utils.PrintSubHeading("Reasoning")
		fmt.Println(utils.WrapText(res.Reasoning, wrapWidth))
		fmt.Println()
	}

	if len(res.Tools) > 0 {
		utils.PrintSubHeading("Tools")
		utils.PrintList(res.Tools, "")
		fmt.Println()
	}

	if res.Conclusion != "" {
		utils.PrintSubHeading("Conclusion")
		fmt.Println(utils.WrapText(res.Conclusion, wrapWidth))
		fmt.Println()
	}

	if len(res.Attachments) > 0 {
		names := make([]string, 0, len(res.Attachments))
		for _, att := range res.Attachments {
			names = append(names, describeAttachment(att))
		}
		utils.PrintTreeList("Attachments", names)

		for _, att := range res.Attachments {
			if att.Content == "" {
				continue
			}
			utils.PrintSubHeading(att.Name)
			fmt.Println(utils.CodeBlock(att.Content))
			fmt.Println()
		}
	}

	for i, block := range res.DataBlocks {
		renderDataBlock(i, block)
	}
}

// describeAttachment summarizes one attachment for a single display line
func describeAttachment(att reply.Attachment) string {
	name := att.Name
	if name == "" {
		name = att.URL
	}
	if name == "" {
		name = "(unnamed)"
	}

	details := []string{}
	if att.Language != "" {
		details = append(details, att.Language)
	}
	if att.Size > 0 {
		details = append(details, fmt.Sprintf("%d bytes", att.Size))
	}
	if att.URL != "" && att.Name != "" {
		details = append(details, att.URL)
	}

	if len(details) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(details, ", "))
}

// renderDataBlock prints one tabular block, first record as the header.
// Large blocks show only the first page.
func renderDataBlock(index int, block reply.DataBlock) {
	if len(block.Records) == 0 {
		return
	}

	opts := utils.DefaultTableOptions()
	opts.Title = fmt.Sprintf("Data block %d", index+1)

	rows := block.Records[1:]
	if len(rows) > 20 {
		opts.EnablePagination = true
		opts.PageSize = 20
		opts.CurrentPage = 1
		opts.TotalRows = len(rows)
	}

	utils.PrintTable(block.Records[0], rows, opts)
}
