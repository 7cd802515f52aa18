package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/reflow/wordwrap"
)

// Theme implements a Gruvbox-inspired dark theme
var (
	// Gruvbox palette - these are only used within this file
	// The actual exported colors are in the Theme struct
	gruvboxBg0     = text.Colors{text.BgHiBlack}
	gruvboxFgDark  = text.Colors{text.FgHiBlack}
	gruvboxFgLight = text.Colors{text.FgWhite}
	gruvboxRed     = text.Colors{text.FgRed}
	gruvboxGreen   = text.Colors{text.FgGreen}
	gruvboxYellow  = text.Colors{text.FgYellow}
	gruvboxBlue    = text.Colors{text.FgBlue}
	gruvboxAqua    = text.Colors{text.FgCyan}

	// Bright variants
	gruvboxGreenBright  = text.Colors{text.FgHiGreen}
	gruvboxYellowBright = text.Colors{text.FgHiYellow}
	gruvboxBlueBright   = text.Colors{text.FgHiBlue}
	gruvboxPurpleBright = text.Colors{text.FgHiMagenta}
	gruvboxAquaBright   = text.Colors{text.FgHiCyan}

	// Text styles
	gruvboxBold = text.Colors{text.Bold}
)

// Theme - exported theme colors for consistent UI
var Theme = struct {
	// Semantic colors for different message types
	Success   text.Colors
	Info      text.Colors
	Warning   text.Colors
	Error     text.Colors
	Heading   text.Colors
	Subtle    text.Colors
	Important text.Colors
	Accent    text.Colors

	// UI Elements
	Title       text.Colors
	Divider     text.Colors
	TableHeader text.Colors
	TableBorder text.Colors
	TableRow    text.Colors
	TableAltRow text.Colors
	Badge       text.Colors
	Code        text.Colors
}{
	Success:   gruvboxGreen,
	Info:      gruvboxBlue,
	Warning:   gruvboxYellow,
	Error:     gruvboxRed,
	Heading:   append(gruvboxAquaBright, text.Bold),
	Subtle:    gruvboxFgDark,
	Important: append(gruvboxPurpleBright, text.Bold),
	Accent:    gruvboxAqua,

	Title:       append(gruvboxAquaBright, text.Bold),
	Divider:     gruvboxFgDark,
	TableHeader: append(gruvboxBlueBright, text.Bold),
	TableBorder: gruvboxBlue,
	TableRow:    gruvboxFgLight,
	TableAltRow: text.Colors{text.FgWhite, text.Faint},
	Badge:       append(gruvboxYellowBright, text.Bold),
	Code:        gruvboxGreenBright,
}

// PrintHeading prints a formatted heading
func PrintHeading(title string) {
	fmt.Println(Theme.Heading.Sprint(title))
}

// PrintSubHeading prints a formatted sub-heading
func PrintSubHeading(title string) {
	fmt.Println(Theme.Info.Sprint(title))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(Theme.Success.Sprint("✓ ") + message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Println(Theme.Info.Sprint("ℹ ") + message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(Theme.Warning.Sprint("⚠ ") + message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(Theme.Error.Sprint("✗ ") + message)
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	fmt.Printf("%s: %s\n", gruvboxBold.Sprint(key), value)
}

// PrintKeyValueWithColor prints a key-value pair with colored value
func PrintKeyValueWithColor(key string, value string, colors text.Colors) {
	fmt.Printf("%s: %s\n", gruvboxBold.Sprint(key), colors.Sprint(value))
}

// PrintDivider prints a horizontal divider
func PrintDivider() {
	fmt.Println(Theme.Divider.Sprint("---------------------------------------------------"))
}

// PrintBadge prints a badge-like text
func PrintBadge(message string) {
	fmt.Printf(" %s ", Theme.Badge.Sprint(message))
}

// HighlightText returns text with highlighted styling for emphasis
func HighlightText(text string) string {
	return Theme.Error.Sprint(text)
}

// CodeBlock formats text as a code block with proper indentation
func CodeBlock(code string) string {
	// Split into lines to ensure proper indentation
	lines := strings.Split(code, "\n")

	// Add consistent indentation for all lines
	for i, line := range lines {
		lines[i] = "    " + line
	}

	// Join lines and style with the code theme
	return Theme.Code.Sprint(strings.Join(lines, "\n"))
}

// WrapText wraps text to a specific width for terminal display
func WrapText(str string, width int) string {
	if width <= 0 {
		return str
	}
	return wordwrap.String(str, width)
}

// FormatList formats a list of items with bullets
func FormatList(items []string, bullet string) string {
	if bullet == "" {
		bullet = "•"
	}

	var result strings.Builder
	for _, item := range items {
		result.WriteString(fmt.Sprintf("%s %s\n", Theme.Accent.Sprint(bullet), item))
	}

	return result.String()
}

// PrintList prints a formatted list of items
func PrintList(items []string, bullet string) {
	fmt.Print(FormatList(items, bullet))
}

// TableOptions defines options for table creation
type TableOptions struct {
	Title       string
	HeaderStyle text.Colors
	RowStyle    text.Colors
	BorderStyle text.Colors
	Style       table.Style
	// Pagination options
	EnablePagination bool
	PageSize         int
	CurrentPage      int
	TotalRows        int
}

// DefaultTableOptions returns default table options with Gruvbox theme
func DefaultTableOptions() TableOptions {
	return TableOptions{
		Title:            "Streamsect",
		HeaderStyle:      text.Colors{text.BgBlue, text.FgHiWhite, text.Bold},
		RowStyle:         text.Colors{text.FgWhite},
		BorderStyle:      text.Colors{text.FgBlue},
		Style:            table.StyleLight,
		EnablePagination: false,
		PageSize:         10,
		CurrentPage:      1,
		TotalRows:        0,
	}
}

// CreateTable creates a new table with default styling
func CreateTable(options ...TableOptions) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	// Use default options or the provided ones
	opts := DefaultTableOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	// Set title if provided
	if opts.Title != "" {
		t.SetTitle(opts.Title)
	}

	customStyle := table.StyleDouble

	// Apply the Gruvbox theme colors defined earlier
	customStyle.Color.Header = Theme.TableHeader
	customStyle.Color.Border = Theme.TableBorder
	customStyle.Color.Row = Theme.TableRow
	customStyle.Color.RowAlternate = Theme.TableAltRow
	customStyle.Title.Colors = Theme.Title
	customStyle.Title.Align = text.AlignCenter

	// Make sure borders and separators are enabled
	customStyle.Options.DrawBorder = true
	customStyle.Options.SeparateColumns = true
	customStyle.Options.SeparateFooter = true
	customStyle.Options.SeparateHeader = true

	// Add padding for better readability
	customStyle.Box.PaddingLeft = " "
	customStyle.Box.PaddingRight = " "

	// Apply the custom style to the table
	t.SetStyle(customStyle)

	// Enable alternating rows
	t.Style().Options.SeparateRows = false

	return t
}

// PrintTable prints a table with headers and rows
func PrintTable(headers []string, rows [][]string, options ...TableOptions) {
	// Create table with provided or default options
	opts := DefaultTableOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	t := CreateTable(opts)

	// Add headers
	headerRow := table.Row{}
	for _, header := range headers {
		headerRow = append(headerRow, header)
	}
	t.AppendHeader(headerRow)

	// Pagination logic
	startIndex := 0
	endIndex := len(rows)

	if opts.EnablePagination {
		if opts.TotalRows == 0 {
			opts.TotalRows = len(rows)
		}

		totalPages := (opts.TotalRows + opts.PageSize - 1) / opts.PageSize
		if opts.CurrentPage < 1 {
			opts.CurrentPage = 1
		} else if opts.CurrentPage > totalPages && totalPages > 0 {
			opts.CurrentPage = totalPages
		}

		startIndex = (opts.CurrentPage - 1) * opts.PageSize
		endIndex = startIndex + opts.PageSize
		if startIndex > len(rows) {
			startIndex = len(rows)
		}
		if endIndex > len(rows) {
			endIndex = len(rows)
		}
	}

	// Add rows for current page
	for i := startIndex; i < endIndex; i++ {
		tableRow := table.Row{}
		for _, cell := range rows[i] {
			tableRow = append(tableRow, cell)
		}
		t.AppendRow(tableRow)
	}

	// Set column configurations for alignment
	configs := []table.ColumnConfig{}
	for i := range headers {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignCenter,
		})
	}
	t.SetColumnConfigs(configs)

	// Render the table
	t.Render()

	// Show pagination information if enabled
	if opts.EnablePagination {
		totalPages := (opts.TotalRows + opts.PageSize - 1) / opts.PageSize
		paginationInfo := fmt.Sprintf("Page %d of %d", opts.CurrentPage, totalPages)
		fmt.Println(Theme.Subtle.Sprint(paginationInfo))
	}
}

// ProgressOptions defines options for progress tracking
type ProgressOptions struct {
	Title          string
	AutoStop       bool
	ShowPercentage bool
	ShowSpeed      bool
	ShowTime       bool
	Style          progress.Style
	TotalUnits     int64
}

// DefaultProgressOptions returns default progress options with Gruvbox theme
func DefaultProgressOptions() ProgressOptions {
	return ProgressOptions{
		Title:          "Progress",
		AutoStop:       true,
		ShowPercentage: true,
		ShowSpeed:      true,
		ShowTime:       true,
		Style:          progress.StyleDefault,
		TotalUnits:     0,
	}
}

// CreateProgressTracker creates a progress tracker for a single task
func CreateProgressTracker(message string, totalUnits int64) *progress.Tracker {
	tracker := &progress.Tracker{
		Message: message,
		Total:   totalUnits,
		Units:   progress.UnitsDefault,
	}

	return tracker
}

// CreateProgressWriter creates a progress writer to track multiple tasks
func CreateProgressWriter(options ...ProgressOptions) progress.Writer {
	// Use default options or the provided ones
	opts := DefaultProgressOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	pw := progress.NewWriter()
	pw.SetAutoStop(opts.AutoStop)
	pw.SetTrackerLength(25)
	pw.SetMessageLength(40)
	pw.SetNumTrackersExpected(1)
	pw.SetSortBy(progress.SortByPercentDsc)
	pw.SetStyle(opts.Style)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors.Message = Theme.Info
	pw.Style().Colors.Percent = Theme.Important
	pw.Style().Colors.Time = Theme.Subtle
	pw.Style().Colors.Value = Theme.Success
	pw.Style().Options.PercentFormat = " %.1f%%"

	pw.SetOutputWriter(os.Stdout)

	return pw
}

// RenderProgressTrackers starts tracking and rendering the progress
func RenderProgressTrackers(pw progress.Writer, trackers []*progress.Tracker) {
	// Add all trackers
	for _, tracker := range trackers {
		pw.AppendTracker(tracker)
	}

	// Start the tracking/rendering
	go pw.Render()
}

// CreateList creates a new hierarchical list with default styling
func CreateList() list.Writer {
	l := list.NewWriter()

	// Apply a connected rounded style
	l.SetStyle(list.StyleConnectedRounded)

	return l
}

// PrintTreeList prints a tree-like list with parent-child relationships
func PrintTreeList(title string, items []string) {
	l := CreateList()
	l.AppendItem(title)

	// Indent once for all child items
	l.Indent()

	// Add all child items
	for _, item := range items {
		l.AppendItem(item)
	}

	// Reset indentation
	l.UnIndent()

	fmt.Println(l.Render())
}
