package reply

import "strings"

// Result is the decomposed form of one complete reply, produced by both the
// streaming path (StreamParser.Finalize) and the one-shot path over stored
// transcripts. Results are derived data: callers persist raw text and build
// a fresh Result whenever one is needed.
type Result struct {
	// Reasoning is the chain-of-thought text, empty when the reply carried
	// no reasoning section.
	Reasoning string `json:"reasoning,omitempty"`
	// Tools lists the tool mentions as clean entries.
	Tools []string `json:"tools,omitempty"`
	// Conclusion is the user-visible answer. For a reply without any
	// markers it is the whole reply text.
	Conclusion string `json:"conclusion,omitempty"`
	// Attachments are the tagged files found in the normal content.
	Attachments []Attachment `json:"attachments,omitempty"`
	// DataBlocks are the tabular blocks found in the normal content.
	DataBlocks []DataBlock `json:"data_blocks,omitempty"`
}

// IsZero reports whether the result carries nothing at all.
func (r *Result) IsZero() bool {
	return r.Reasoning == "" && len(r.Tools) == 0 && r.Conclusion == "" &&
		len(r.Attachments) == 0 && len(r.DataBlocks) == 0
}

// noiseThreshold is the minimum number of substantive characters the
// conclusion must carry to survive next to a non-empty reasoning or tools
// section. Shorter residue ("OK.", a stray bracket) is filler the model
// emitted around the real sections, not an answer.
const noiseThreshold = 10

// noiseCutset holds the characters that do not count as substance:
// whitespace plus common ASCII and CJK punctuation.
const noiseCutset = " \t\r\n.,!?;:'\"()[]{}<>-…·~*。，！？；：、「」『』（）"

// substantiveLen counts the runes of s outside the noise cutset.
func substantiveLen(s string) int {
	n := 0
	for _, r := range s {
		if !strings.ContainsRune(noiseCutset, r) {
			n++
		}
	}
	return n
}

// toolDelimiter reports whether r separates tool entries. The contract asks
// for one entry per line, but models also emit comma and semicolon lists,
// including full-width CJK variants.
func toolDelimiter(r rune) bool {
	switch r {
	case '\n', ',', '、', ';', '；':
		return true
	}
	return false
}

// SplitTools splits the raw text of a tools section into entries: cut on
// delimiters, bullet and enumeration prefixes removed, blanks dropped.
func SplitTools(raw string) []string {
	parts := strings.FieldsFunc(raw, toolDelimiter)
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if entry := cleanToolEntry(part); entry != "" {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

// cleanToolEntry trims whitespace and leading list decoration from one
// entry.
func cleanToolEntry(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.TrimLeft(s, "-*•·"))
		if trimmed == s {
			break
		}
		s = trimmed
	}
	return trimEnumeration(s)
}

// trimEnumeration strips a leading "1." or "23)" style enumerator.
func trimEnumeration(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) {
		return s
	}
	if s[i] == '.' || s[i] == ')' {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// Compose applies the shared cleanup to raw section text and assembles the
// Result both parse paths return: attachment and data-block extraction over
// the normal content, tools splitting, trimming, and short-noise
// suppression.
func Compose(reasoning, toolsRaw, conclusion string) *Result {
	attachments, remainder := extractAttachments(conclusion)
	dataBlocks, remainder := extractDataBlocks(remainder)

	res := &Result{
		Reasoning:   strings.TrimSpace(reasoning),
		Tools:       SplitTools(toolsRaw),
		Conclusion:  strings.TrimSpace(remainder),
		Attachments: attachments,
		DataBlocks:  dataBlocks,
	}

	structured := res.Reasoning != "" || len(res.Tools) > 0
	if structured && substantiveLen(res.Conclusion) < noiseThreshold {
		res.Conclusion = ""
	}
	return res
}
