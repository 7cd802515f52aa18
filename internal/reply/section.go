// Package reply decomposes AI assistant replies into named semantic
// sections. Replies follow a marker contract: chain-of-thought wrapped in
// <reasoning>...</reasoning>, tool mentions in <tools>...</tools>, and the
// user-visible answer in <conclusion>...</conclusion>. The package owns the
// marker vocabulary, the incremental StreamParser fed by arbitrarily
// chunked text, and the Result shape shared with the one-shot extractor.
package reply

import "strings"

// Section identifies one of the structural sections a reply can carry.
type Section string

const (
	// SectionReasoning holds the model's chain of thought.
	SectionReasoning Section = "reasoning"
	// SectionTools holds tool mentions, split into entries on finish.
	SectionTools Section = "tools"
	// SectionConclusion holds the user-visible answer.
	SectionConclusion Section = "conclusion"
)

// Sections lists the known sections in marker table order.
var Sections = []Section{SectionReasoning, SectionTools, SectionConclusion}

// MarkerKind distinguishes opening from closing markers.
type MarkerKind int

const (
	// MarkerOpen starts a section.
	MarkerOpen MarkerKind = iota
	// MarkerClose ends a section.
	MarkerClose
)

// Marker is one of the six structural marker literals.
type Marker struct {
	Section Section
	Kind    MarkerKind
	Literal string
}

// markerTable enumerates the full marker vocabulary. The scanner breaks
// offset ties in table order.
var markerTable = []Marker{
	{SectionReasoning, MarkerOpen, "<reasoning>"},
	{SectionReasoning, MarkerClose, "</reasoning>"},
	{SectionTools, MarkerOpen, "<tools>"},
	{SectionTools, MarkerClose, "</tools>"},
	{SectionConclusion, MarkerOpen, "<conclusion>"},
	{SectionConclusion, MarkerClose, "</conclusion>"},
}

// OpenMarker returns the opening literal for a section.
func OpenMarker(s Section) string { return "<" + string(s) + ">" }

// CloseMarker returns the closing literal for a section.
func CloseMarker(s Section) string { return "</" + string(s) + ">" }

// findMarker locates the earliest complete marker in buf, returning the
// marker, its byte offset, and whether one was found.
func findMarker(buf string) (Marker, int, bool) {
	best := -1
	var found Marker
	for _, m := range markerTable {
		idx := strings.Index(buf, m.Literal)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			found = m
		}
	}
	if best < 0 {
		return Marker{}, 0, false
	}
	return found, best, true
}

// hasPendingMarkerStart reports whether buf ends in a fragment that could
// still grow into a marker once more text arrives. The fragment runs from
// the last '<' to the end of the buffer; a fragment already containing '>'
// is a complete tag of some kind and can never extend into a marker.
func hasPendingMarkerStart(buf string) bool {
	idx := strings.LastIndexByte(buf, '<')
	if idx < 0 {
		return false
	}
	tail := buf[idx:]
	if strings.ContainsRune(tail, '>') {
		return false
	}
	for _, m := range markerTable {
		if len(tail) < len(m.Literal) && strings.HasPrefix(m.Literal, tail) {
			return true
		}
	}
	return false
}

// StripMarkers removes every complete marker literal from s. Used to scrub
// marker noise out of text that is about to become plain content.
func StripMarkers(s string) string {
	for _, m := range markerTable {
		s = strings.ReplaceAll(s, m.Literal, "")
	}
	return s
}
