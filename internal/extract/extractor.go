// Package extract derives a reply.Result from complete reply text in a
// single pass. It serves stored transcripts: messages are persisted raw and
// decomposed again every time they are loaded, so results never go stale
// against the parsing rules.
package extract

import (
	"regexp"
	"strings"

	"github.com/tildaslashalef/streamsect/internal/loggy"
	"github.com/tildaslashalef/streamsect/internal/reply"
)

var (
	reasoningSpanRe  = sectionSpanRe(reply.SectionReasoning)
	toolsSpanRe      = sectionSpanRe(reply.SectionTools)
	conclusionSpanRe = sectionSpanRe(reply.SectionConclusion)
)

// sectionSpanRe compiles the span pattern for one section: the first
// opening marker up to the first closing marker, or to the end of the text
// when the close never arrived.
func sectionSpanRe(s reply.Section) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` +
		regexp.QuoteMeta(reply.OpenMarker(s)) +
		`(.*?)(?:` +
		regexp.QuoteMeta(reply.CloseMarker(s)) +
		`|\z)`)
}

// Extractor is the one-shot counterpart of reply.StreamParser.
type Extractor struct {
	logger *loggy.Logger
}

// New creates an Extractor
func New(logger *loggy.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Parse decomposes complete reply text into sections. It never fails: an
// unterminated section runs to the end of the text, marker noise inside a
// span is stripped, and text without any markers comes back whole as the
// conclusion.
func (e *Extractor) Parse(content string) *reply.Result {
	reasoning, _, foundReasoning := span(reasoningSpanRe, content)
	toolsRaw, _, foundTools := span(toolsSpanRe, content)
	conclusion, end, foundConclusion := span(conclusionSpanRe, content)

	if !foundReasoning && !foundTools && !foundConclusion {
		return reply.Compose("", "", reply.StripMarkers(content))
	}

	if foundConclusion && end < len(content) {
		// Models keep talking after closing the conclusion; that trailing
		// text belongs to the answer, up to wherever the next marker
		// starts a different story.
		trailing := content[end:]
		if cut := firstMarkerIndex(trailing); cut >= 0 {
			trailing = trailing[:cut]
		}
		conclusion += trailing
	}

	res := reply.Compose(
		reply.StripMarkers(reasoning),
		reply.StripMarkers(toolsRaw),
		reply.StripMarkers(conclusion),
	)

	e.logger.Debug("parsed reply",
		"reasoning", foundReasoning,
		"tools_entries", len(res.Tools),
		"conclusion_len", len(res.Conclusion),
		"attachments", len(res.Attachments),
		"data_blocks", len(res.DataBlocks),
	)

	return res
}

// span returns the body of the pattern's first match in content, the offset
// just past the whole match, and whether a match was present.
func span(re *regexp.Regexp, content string) (string, int, bool) {
	m := re.FindStringSubmatchIndex(content)
	if m == nil {
		return "", 0, false
	}
	return content[m[2]:m[3]], m[1], true
}

// firstMarkerIndex returns the offset of the earliest marker literal in s,
// or -1 when s contains none.
func firstMarkerIndex(s string) int {
	best := -1
	for _, sec := range reply.Sections {
		for _, lit := range []string{reply.OpenMarker(sec), reply.CloseMarker(sec)} {
			if idx := strings.Index(s, lit); idx >= 0 && (best < 0 || idx < best) {
				best = idx
			}
		}
	}
	return best
}

// ParseMessages decomposes a batch of reply texts, preserving order. Blank
// entries produce empty results.
func (e *Extractor) ParseMessages(contents []string) []*reply.Result {
	results := make([]*reply.Result, 0, len(contents))
	for _, c := range contents {
		if strings.TrimSpace(c) == "" {
			results = append(results, &reply.Result{})
			continue
		}
		results = append(results, e.Parse(c))
	}
	return results
}
