package reply

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseAll feeds every chunk in order and finalizes.
func parseAll(chunks ...string) *Result {
	p := NewStreamParser()
	for _, c := range chunks {
		p.ProcessChunk(c)
	}
	return p.Finalize()
}

func TestStreamParserBasics(t *testing.T) {
	t.Run("well formed reply in one chunk", func(t *testing.T) {
		res := parseAll("<reasoning>Check the registry for matching entries.</reasoning>" +
			"<tools>grep\nripgrep</tools>" +
			"<conclusion>Three entries match your pattern.</conclusion>")

		assert.Equal(t, "Check the registry for matching entries.", res.Reasoning)
		assert.Equal(t, []string{"grep", "ripgrep"}, res.Tools)
		assert.Equal(t, "Three entries match your pattern.", res.Conclusion)
	})

	t.Run("reply without any markers becomes the conclusion", func(t *testing.T) {
		res := parseAll("Just a plain answer with no structure at all.")

		assert.Empty(t, res.Reasoning)
		assert.Empty(t, res.Tools)
		assert.Equal(t, "Just a plain answer with no structure at all.", res.Conclusion)
	})

	t.Run("empty chunks are harmless", func(t *testing.T) {
		res := parseAll("", "<conclusion>", "", "Fine.", "", "</conclusion>", "")
		assert.Equal(t, "Fine.", res.Conclusion)
	})

	t.Run("empty stream", func(t *testing.T) {
		res := NewStreamParser().Finalize()
		assert.True(t, res.IsZero())
	})

	t.Run("preamble before structure is discarded", func(t *testing.T) {
		res := parseAll("Sure, here is what I found. <reasoning>Looked at the data.</reasoning>" +
			"<conclusion>The answer is forty-two.</conclusion>")

		assert.Equal(t, "Looked at the data.", res.Reasoning)
		assert.Equal(t, "The answer is forty-two.", res.Conclusion)
		assert.NotContains(t, res.Conclusion, "Sure, here is")
	})

	t.Run("trailing text after the conclusion close is kept", func(t *testing.T) {
		res := parseAll("<conclusion>Answer</conclusion> with a small addendum")
		assert.Equal(t, "Answer with a small addendum", res.Conclusion)
	})

	t.Run("text between sections is discarded", func(t *testing.T) {
		res := parseAll("<reasoning>Thought.</reasoning> stray bridge text " +
			"<conclusion>A conclusion long enough to keep.</conclusion>")

		assert.Equal(t, "Thought.", res.Reasoning)
		assert.Equal(t, "A conclusion long enough to keep.", res.Conclusion)
	})
}

func TestStreamParserChunkInvariance(t *testing.T) {
	full := "Preamble chatter. <reasoning>The user wants a summary of open issues.\n" +
		"Filtering by label first makes the list manageable.</reasoning>" +
		"<tools>- issue tracker\n- label filter, full-text search</tools>" +
		"<conclusion>Seven issues are open, three of them labelled urgent.</conclusion> Trailing note."
	want := parseAll(full)

	t.Run("every two-way split", func(t *testing.T) {
		for i := 0; i <= len(full); i++ {
			got := parseAll(full[:i], full[i:])
			require.Equal(t, want, got, "split at byte %d", i)
		}
	})

	t.Run("random multi-way splits", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 100; round++ {
			var chunks []string
			rest := full
			for len(rest) > 0 {
				n := 1 + rng.Intn(9)
				if n > len(rest) {
					n = len(rest)
				}
				chunks = append(chunks, rest[:n])
				rest = rest[n:]
			}
			got := parseAll(chunks...)
			require.Equal(t, want, got, "round %d chunks %q", round, chunks)
		}
	})

	t.Run("one byte at a time", func(t *testing.T) {
		p := NewStreamParser()
		for i := 0; i < len(full); i++ {
			p.ProcessChunk(full[i : i+1])
		}
		require.Equal(t, want, p.Finalize())
	})
}

func TestStreamParserTornMarkers(t *testing.T) {
	t.Run("marker split across two chunks", func(t *testing.T) {
		res := parseAll("<reas", "oning>deep thought</reasoning>")
		assert.Equal(t, "deep thought", res.Reasoning)
	})

	t.Run("marker split across three chunks", func(t *testing.T) {
		res := parseAll("<rea", "soni", "ng>X</reas", "oning>")
		assert.Equal(t, "X", res.Reasoning)
	})

	t.Run("chunk ending exactly at a marker boundary", func(t *testing.T) {
		res := parseAll("<reasoning>", "thought", "</reasoning>", "<conclusion>", "Answer text that stays.", "</conclusion>")
		assert.Equal(t, "thought", res.Reasoning)
		assert.Equal(t, "Answer text that stays.", res.Conclusion)
	})

	t.Run("partial marker fragments never leak into snapshots", func(t *testing.T) {
		p := NewStreamParser()
		p.ProcessChunk("<reasoning>Thinking about the question")
		snap := p.Snapshot()
		assert.Equal(t, PhaseReasoning, snap.Phase)
		assert.Equal(t, "Thinking about the question", snap.Reasoning)

		p.ProcessChunk(" some more</reas")
		snap = p.Snapshot()
		assert.NotContains(t, snap.Reasoning, "</reas")
		assert.NotContains(t, snap.Reasoning, "<")

		p.ProcessChunk("oning><conclusion>A sufficiently long answer.</conclusion>")
		res := p.Finalize()
		assert.Equal(t, "Thinking about the question some more", res.Reasoning)
		assert.Equal(t, "A sufficiently long answer.", res.Conclusion)
	})

	t.Run("lookalike tail that never completes stays content", func(t *testing.T) {
		res := parseAll("The formula is a <b and that is all")
		assert.Equal(t, "The formula is a <b and that is all", res.Conclusion)
	})

	t.Run("unfinished marker fragment at end of stream is content", func(t *testing.T) {
		res := parseAll("All numbers below <conclu")
		assert.Equal(t, "All numbers below <conclu", res.Conclusion)
	})
}

func TestStreamParserTolerance(t *testing.T) {
	t.Run("duplicate open concatenates", func(t *testing.T) {
		res := parseAll("<reasoning>first<reasoning>second</reasoning>")
		assert.Equal(t, "firstsecond", res.Reasoning)
	})

	t.Run("reopened section concatenates", func(t *testing.T) {
		res := parseAll("<reasoning>first</reasoning><reasoning> second</reasoning>")
		assert.Equal(t, "first second", res.Reasoning)
	})

	t.Run("stray close without open is dropped as noise", func(t *testing.T) {
		res := parseAll("Answer text </tools> and more answer text.")
		assert.Equal(t, "Answer text  and more answer text.", res.Conclusion)
	})

	t.Run("mismatched close inside a section is dropped as noise", func(t *testing.T) {
		res := parseAll("<reasoning>keep</tools> going</reasoning>")
		assert.Equal(t, "keep going", res.Reasoning)
	})

	t.Run("open inside another section switches sections", func(t *testing.T) {
		res := parseAll("<reasoning>thinking<tools>grep</tools><conclusion>The grep run found the entries.</conclusion>")
		assert.Equal(t, "thinking", res.Reasoning)
		assert.Equal(t, []string{"grep"}, res.Tools)
		assert.Equal(t, "The grep run found the entries.", res.Conclusion)
	})

	t.Run("unterminated section at end of stream keeps its text", func(t *testing.T) {
		res := parseAll("<reasoning>a thought the stream cut off")
		assert.Equal(t, "a thought the stream cut off", res.Reasoning)
		assert.Empty(t, res.Conclusion)
	})

	t.Run("error phase stays unreachable on hostile input", func(t *testing.T) {
		p := NewStreamParser()
		for _, chunk := range []string{
			"</conclusion></conclusion><tools><tools>",
			"</reasoning><conclusion><reasoning>",
			"</tools><conclusion></conclusion>trailing<reasoning>",
		} {
			p.ProcessChunk(chunk)
			assert.NotEqual(t, PhaseError, p.Phase())
		}
		p.Finalize()
		assert.NoError(t, p.Err())
	})
}

func TestStreamParserFinalize(t *testing.T) {
	t.Run("finalize is idempotent", func(t *testing.T) {
		p := NewStreamParser()
		p.ProcessChunk("<reasoning>r</reasoning><conclusion>A long enough answer here.</conclusion>")
		first := p.Finalize()
		second := p.Finalize()
		assert.Equal(t, first, second)
		assert.Equal(t, PhaseDone, p.Phase())
	})

	t.Run("unstructured text round-trips through finalize", func(t *testing.T) {
		text := "A plain reply, nothing held back."
		res := parseAll(text)
		assert.Equal(t, text, res.Conclusion)
	})

	t.Run("section opened after the conclusion closed still collects", func(t *testing.T) {
		res := parseAll("<conclusion>Result ready.</conclusion><reasoning>afterthought")
		assert.Equal(t, "afterthought", res.Reasoning)
		assert.Equal(t, "Result ready.", res.Conclusion)
	})
}

func TestStreamParserSuppression(t *testing.T) {
	t.Run("short residue next to reasoning is suppressed", func(t *testing.T) {
		res := parseAll("<reasoning>Plenty of substantial reasoning text.</reasoning><conclusion>OK.</conclusion>")
		assert.NotEmpty(t, res.Reasoning)
		assert.Empty(t, res.Conclusion)
	})

	t.Run("short residue next to tools is suppressed", func(t *testing.T) {
		res := parseAll("<tools>grep</tools><conclusion>ok!</conclusion>")
		assert.Equal(t, []string{"grep"}, res.Tools)
		assert.Empty(t, res.Conclusion)
	})

	t.Run("ten substantive characters survive", func(t *testing.T) {
		res := parseAll("<reasoning>r</reasoning><conclusion>abcdefghij</conclusion>")
		assert.Equal(t, "abcdefghij", res.Conclusion)
	})

	t.Run("nine substantive characters do not", func(t *testing.T) {
		res := parseAll("<reasoning>r</reasoning><conclusion>abcdefghi</conclusion>")
		assert.Empty(t, res.Conclusion)
	})

	t.Run("punctuation does not count as substance", func(t *testing.T) {
		res := parseAll("<reasoning>r</reasoning><conclusion>... ab, cd! (ef) ...</conclusion>")
		assert.Empty(t, res.Conclusion)
	})

	t.Run("short standalone replies are never suppressed", func(t *testing.T) {
		res := parseAll("OK.")
		assert.Equal(t, "OK.", res.Conclusion)
	})

	t.Run("short conclusion without other sections is kept", func(t *testing.T) {
		res := parseAll("<conclusion>Yes.</conclusion>")
		assert.Equal(t, "Yes.", res.Conclusion)
	})
}

func TestStreamParserRoundTrip(t *testing.T) {
	reasoning := "First inspect the manifest, then diff the two versions."
	tools := []string{"manifest reader", "semantic diff"}
	conclusion := "Version 2.4.0 introduced the regression you are seeing."

	var b strings.Builder
	b.WriteString(OpenMarker(SectionReasoning))
	b.WriteString(reasoning)
	b.WriteString(CloseMarker(SectionReasoning))
	b.WriteString(OpenMarker(SectionTools))
	b.WriteString(strings.Join(tools, "\n"))
	b.WriteString(CloseMarker(SectionTools))
	b.WriteString(OpenMarker(SectionConclusion))
	b.WriteString(conclusion)
	b.WriteString(CloseMarker(SectionConclusion))

	res := parseAll(b.String())
	assert.Equal(t, reasoning, res.Reasoning)
	assert.Equal(t, tools, res.Tools)
	assert.Equal(t, conclusion, res.Conclusion)
}
