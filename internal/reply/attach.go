package reply

import (
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Attachment is a file the model tagged explicitly in its reply with a
// <file name=... size=... url=...>content</file> block.
type Attachment struct {
	Name     string `json:"name,omitempty"`
	Size     int64  `json:"size,omitempty"`
	URL      string `json:"url,omitempty"`
	Content  string `json:"content,omitempty"`
	Language string `json:"language,omitempty"`
}

// DataBlock is a tabular block found in a reply, either fenced as ```csv
// or wrapped in <data> tags.
type DataBlock struct {
	Format  string     `json:"format"`
	Records [][]string `json:"records"`
	Raw     string     `json:"-"`
}

var (
	// fileTagRe matches one tagged attachment. Attribute order is free and
	// values may be quoted or bare.
	fileTagRe = regexp.MustCompile(`(?s)<file((?:\s+\w+=(?:"[^"]*"|'[^']*'|[^\s>]+))*)\s*>(.*?)</file>`)
	// fileAttrRe picks individual attributes out of a file tag.
	fileAttrRe = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
	// csvFenceRe matches a fenced csv block.
	csvFenceRe = regexp.MustCompile("(?s)```csv[ \t]*\\n(.*?)```")
	// dataTagRe matches a <data> block.
	dataTagRe = regexp.MustCompile(`(?s)<data>(.*?)</data>`)
)

// extractAttachments pulls tagged attachments out of text, returning the
// attachments and the text with the matched tags removed.
func extractAttachments(text string) ([]Attachment, string) {
	matches := fileTagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, text
	}
	attachments := make([]Attachment, 0, len(matches))
	for _, m := range matches {
		att := Attachment{Content: strings.TrimSpace(m[2])}
		for _, kv := range fileAttrRe.FindAllStringSubmatch(m[1], -1) {
			value := kv[2]
			if value == "" {
				value = kv[3]
			}
			if value == "" {
				value = kv[4]
			}
			switch strings.ToLower(kv[1]) {
			case "name":
				att.Name = value
			case "size":
				if n, err := strconv.ParseInt(value, 10, 64); err == nil {
					att.Size = n
				}
			case "url":
				att.URL = value
			}
		}
		if att.Name == "" && att.URL == "" && att.Content == "" {
			continue
		}
		att.Language = detectLanguage(att.Name, att.Content)
		attachments = append(attachments, att)
	}
	return attachments, fileTagRe.ReplaceAllString(text, "")
}

// detectLanguage names an attachment's language from its filename and
// content, or "" when detection is inconclusive.
func detectLanguage(name, content string) string {
	lang := enry.GetLanguage(name, []byte(content))
	if lang == enry.OtherLanguage {
		return ""
	}
	return lang
}

// extractDataBlocks pulls tabular blocks out of text, returning the blocks
// and the text with recognized blocks removed. A block whose body does not
// parse as CSV is not a data block and stays in the text untouched.
func extractDataBlocks(text string) ([]DataBlock, string) {
	var blocks []DataBlock
	for _, re := range []*regexp.Regexp{csvFenceRe, dataTagRe} {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			body := re.FindStringSubmatch(match)[1]
			records, err := parseCSV(body)
			if err != nil || len(records) == 0 {
				return match
			}
			blocks = append(blocks, DataBlock{Format: "csv", Records: records, Raw: body})
			return ""
		})
	}
	return blocks, text
}

// parseCSV reads body as comma-separated records without column-count
// enforcement.
func parseCSV(body string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(body)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}
