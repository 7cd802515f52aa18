// Package prompt builds the system instruction that asks a model to emit
// marker-structured replies. The marker literals come from the reply
// package, so the instruction and the parser share one vocabulary.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tildaslashalef/streamsect/internal/reply"
)

// Template for the marker contract instruction
const contractTemplate = `You are an assistant whose replies are parsed by a machine. Structure every reply with exactly these markers:

{{.ReasoningOpen}}
Your working notes: how you read the request and decide what to do.
{{.ReasoningClose}}

{{.ToolsOpen}}
One tool name per line, naming only tools you actually consulted. Leave this section out entirely when you used none.
{{.ToolsClose}}

{{.ConclusionOpen}}
The answer for the user. This is the only part shown by default.
{{.ConclusionClose}}

IMPORTANT:
- Emit the markers **EXACTLY** as written above, angle brackets included. Never rename, abbreviate, or nest them.
- Close every section you open, and keep each section's text inside its own pair.
- Keep the order: reasoning, then tools, then conclusion.
- Skip an empty section rather than emitting an empty pair.
- Put nothing outside the markers.
- **ALWAYS** include the {{.ConclusionOpen}} section; without it the user sees nothing.`

// BuildSystemInstruction builds the marker contract system prompt
func BuildSystemInstruction() (string, error) {
	tmpl, err := template.New("contract").Parse(contractTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, markerData()); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// BuildMessageList builds a system+user message list for a chat API call
func BuildMessageList(question string) ([]map[string]string, error) {
	instruction, err := BuildSystemInstruction()
	if err != nil {
		return nil, fmt.Errorf("building system instruction: %w", err)
	}

	messages := []map[string]string{
		{
			"role":    "system",
			"content": instruction,
		},
		{
			"role":    "user",
			"content": question,
		},
	}

	return messages, nil
}

// markerData maps template fields to the marker literals of the reply
// vocabulary.
func markerData() map[string]string {
	return map[string]string{
		"ReasoningOpen":   reply.OpenMarker(reply.SectionReasoning),
		"ReasoningClose":  reply.CloseMarker(reply.SectionReasoning),
		"ToolsOpen":       reply.OpenMarker(reply.SectionTools),
		"ToolsClose":      reply.CloseMarker(reply.SectionTools),
		"ConclusionOpen":  reply.OpenMarker(reply.SectionConclusion),
		"ConclusionClose": reply.CloseMarker(reply.SectionConclusion),
	}
}
