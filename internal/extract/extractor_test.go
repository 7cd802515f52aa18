package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/streamsect/internal/loggy"
	"github.com/tildaslashalef/streamsect/internal/reply"
)

func TestParse(t *testing.T) {
	extractor := New(loggy.NewNoopLogger())

	t.Run("well formed reply", func(t *testing.T) {
		input := `<reasoning>The user asks for disk usage; df gives the totals and du the breakdown.</reasoning>
<tools>df
du</tools>
<conclusion>Your largest directory is /var/log at 4.2 GB.</conclusion>`

		res := extractor.Parse(input)

		assert.Equal(t, "The user asks for disk usage; df gives the totals and du the breakdown.", res.Reasoning)
		assert.Equal(t, []string{"df", "du"}, res.Tools)
		assert.Equal(t, "Your largest directory is /var/log at 4.2 GB.", res.Conclusion)
	})

	t.Run("no markers returns text as conclusion", func(t *testing.T) {
		res := extractor.Parse("  A perfectly ordinary reply.  ")
		assert.Empty(t, res.Reasoning)
		assert.Empty(t, res.Tools)
		assert.Equal(t, "A perfectly ordinary reply.", res.Conclusion)
	})

	t.Run("unterminated section runs to the end", func(t *testing.T) {
		res := extractor.Parse("<reasoning>the stream died mid-thought")
		assert.Equal(t, "the stream died mid-thought", res.Reasoning)
		assert.Empty(t, res.Conclusion)
	})

	t.Run("first span wins for each section", func(t *testing.T) {
		input := "<reasoning>primary</reasoning> noise <reasoning>secondary</reasoning>" +
			"<conclusion>An answer carrying enough weight.</conclusion>"
		res := extractor.Parse(input)
		assert.Equal(t, "primary", res.Reasoning)
		assert.Equal(t, "An answer carrying enough weight.", res.Conclusion)
	})

	t.Run("nested markers inside a span are stripped", func(t *testing.T) {
		input := "<reasoning>outer <reasoning>inner</tools> text</reasoning>"
		res := extractor.Parse(input)
		assert.Equal(t, "outer inner text", res.Reasoning)
	})

	t.Run("trailing text after conclusion close is kept", func(t *testing.T) {
		res := extractor.Parse("<conclusion>Answer</conclusion> plus afterthought")
		assert.Equal(t, "Answer plus afterthought", res.Conclusion)
	})

	t.Run("trailing text stops at the next marker", func(t *testing.T) {
		res := extractor.Parse("<conclusion>Answer text.</conclusion> extra <reasoning>late thought</reasoning> ignored")
		assert.Equal(t, "Answer text. extra", res.Conclusion)
		assert.Equal(t, "late thought", res.Reasoning)
	})

	t.Run("stray close literal without open is scrubbed", func(t *testing.T) {
		res := extractor.Parse("Answer </tools> continues long enough.")
		assert.Equal(t, "Answer  continues long enough.", res.Conclusion)
	})

	t.Run("short residue next to structure is suppressed", func(t *testing.T) {
		res := extractor.Parse("<reasoning>substantial reasoning happened here</reasoning><conclusion>ok!</conclusion>")
		assert.NotEmpty(t, res.Reasoning)
		assert.Empty(t, res.Conclusion)
	})

	t.Run("attachments and data blocks are extracted", func(t *testing.T) {
		input := `<conclusion>Here is the export. <file name="report.csv" size="64">a,b
1,2</file>
<data>name,total
alpha,10
beta,20</data>
All twenty rows were written successfully.</conclusion>`

		res := extractor.Parse(input)

		require.Len(t, res.Attachments, 1)
		assert.Equal(t, "report.csv", res.Attachments[0].Name)
		assert.Equal(t, int64(64), res.Attachments[0].Size)
		require.Len(t, res.DataBlocks, 1)
		assert.Equal(t, [][]string{{"name", "total"}, {"alpha", "10"}, {"beta", "20"}}, res.DataBlocks[0].Records)
		assert.Equal(t, "Here is the export. \n\nAll twenty rows were written successfully.", res.Conclusion)
	})

	t.Run("empty input", func(t *testing.T) {
		res := extractor.Parse("")
		assert.True(t, res.IsZero())
	})
}

func TestParseMatchesStreaming(t *testing.T) {
	extractor := New(loggy.NewNoopLogger())

	inputs := []string{
		"<reasoning>compare the two builds</reasoning><tools>differ, profiler</tools><conclusion>The older build is faster by twelve percent.</conclusion>",
		"plain reply without any structure in it",
		"<conclusion>Answer first.</conclusion> trailing remark",
		"<reasoning>only thought, never closed",
		"<tools>- alpha\n- beta</tools><conclusion>Both tools agree on the outcome.</conclusion>",
		"preamble <reasoning>r</reasoning><conclusion>Substantial closing statement.</conclusion>",
	}

	for _, input := range inputs {
		t.Run(input[:min(24, len(input))], func(t *testing.T) {
			streamed := reply.NewStreamParser()
			for _, chunk := range splitEvery(input, 5) {
				streamed.ProcessChunk(chunk)
			}
			assert.Equal(t, streamed.Finalize(), extractor.Parse(input))
		})
	}
}

func TestParseMessages(t *testing.T) {
	extractor := New(loggy.NewNoopLogger())

	results := extractor.ParseMessages([]string{
		"<conclusion>First answer, long enough.</conclusion>",
		"",
		"second plain answer",
	})

	require.Len(t, results, 3)
	assert.Equal(t, "First answer, long enough.", results[0].Conclusion)
	assert.True(t, results[1].IsZero())
	assert.Equal(t, "second plain answer", results[2].Conclusion)
}

// splitEvery cuts s into n-byte pieces.
func splitEvery(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}
