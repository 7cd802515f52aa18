package feed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/streamsect/internal/loggy"
	"github.com/tildaslashalef/streamsect/internal/reply"
)

func newTestSource(cfg Config) *Source {
	return NewSource(cfg, loggy.NewNoopLogger())
}

// collect drains the channel into a slice.
func collect(ch <-chan string) []string {
	var out []string
	for chunk := range ch {
		out = append(out, chunk)
	}
	return out
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		expected []string
	}{
		{
			name:     "empty text",
			text:     "",
			size:     4,
			expected: nil,
		},
		{
			name:     "exact multiple",
			text:     "abcdef",
			size:     3,
			expected: []string{"abc", "def"},
		},
		{
			name:     "remainder chunk",
			text:     "abcdefg",
			size:     3,
			expected: []string{"abc", "def", "g"},
		},
		{
			name:     "size larger than text",
			text:     "ab",
			size:     10,
			expected: []string{"ab"},
		},
		{
			name:     "zero size falls back to single runes",
			text:     "abc",
			size:     0,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "multibyte runes stay whole",
			text:     "héllo wörld",
			size:     4,
			expected: []string{"héll", "o wö", "rld"},
		},
		{
			name:     "cjk text",
			text:     "推理結論",
			size:     3,
			expected: []string{"推理結", "論"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.size)
			assert.Equal(t, tt.expected, chunks, "Chunks should match for %q", tt.text)
			assert.Equal(t, tt.text, strings.Join(chunks, ""), "Rejoined chunks should equal the input")
		})
	}
}

func TestSplitSeeded(t *testing.T) {
	text := "<reasoning>Check the cache first.</reasoning><conclusion>It was a cache miss.</conclusion>"

	t.Run("same seed yields same chunks", func(t *testing.T) {
		first := SplitSeeded(text, 42, 7)
		second := SplitSeeded(text, 42, 7)
		assert.Equal(t, first, second, "Chunks should be reproducible for a fixed seed")
	})

	t.Run("chunks reassemble to the input", func(t *testing.T) {
		for seed := int64(0); seed < 20; seed++ {
			chunks := SplitSeeded(text, seed, 5)
			assert.Equal(t, text, strings.Join(chunks, ""), "Seed %d should not lose text", seed)
		}
	})

	t.Run("chunk lengths respect the bound", func(t *testing.T) {
		chunks := SplitSeeded(text, 7, 4)
		for _, chunk := range chunks {
			length := len([]rune(chunk))
			assert.GreaterOrEqual(t, length, 1, "Chunks should never be empty")
			assert.LessOrEqual(t, length, 4, "Chunk %q exceeds the bound", chunk)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, SplitSeeded("", 1, 4), "Empty text should produce no chunks")
	})
}

func TestStreamText(t *testing.T) {
	t.Run("emits every chunk and closes", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 4})
		text := "The answer is forty-two, give or take."

		ch, err := source.StreamText(context.Background(), text)
		require.NoError(t, err, "StreamText should not fail")

		chunks := collect(ch)
		assert.Equal(t, SplitText(text, 4), chunks, "Streamed chunks should match the fixed split")
		assert.Equal(t, text, strings.Join(chunks, ""), "Rejoined stream should equal the input")
	})

	t.Run("empty text closes immediately", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 4})

		ch, err := source.StreamText(context.Background(), "")
		require.NoError(t, err, "StreamText should not fail")

		chunks := collect(ch)
		assert.Empty(t, chunks, "Empty text should stream no chunks")
	})

	t.Run("cancellation ends the stream early", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 1})
		text := strings.Repeat("x", 100)

		ctx, cancel := context.WithCancel(context.Background())
		ch, err := source.StreamText(ctx, text)
		require.NoError(t, err, "StreamText should not fail")

		cancel()
		chunks := collect(ch)
		// At most the chunk already waiting in the send can slip through.
		assert.LessOrEqual(t, len(chunks), 1, "Cancelled stream should stop almost immediately")
	})

	t.Run("pacing delays chunks", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 1, Rate: 50, Burst: 1})

		start := time.Now()
		ch, err := source.StreamText(context.Background(), "abc")
		require.NoError(t, err, "StreamText should not fail")

		chunks := collect(ch)
		elapsed := time.Since(start)

		assert.Len(t, chunks, 3, "All chunks should arrive")
		// 50 chunks/s with burst 1 spaces the second and third chunk 20ms apart.
		assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond, "Pacing should spread chunks over time")
	})
}

func TestStreamReader(t *testing.T) {
	t.Run("reads incrementally and emits the remainder", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 5})
		text := "streaming from a reader"

		ch, err := source.StreamReader(context.Background(), strings.NewReader(text))
		require.NoError(t, err, "StreamReader should not fail")

		chunks := collect(ch)
		assert.Equal(t, SplitText(text, 5), chunks, "Reader chunks should match the fixed split")
	})

	t.Run("empty reader closes immediately", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 5})

		ch, err := source.StreamReader(context.Background(), strings.NewReader(""))
		require.NoError(t, err, "StreamReader should not fail")

		assert.Empty(t, collect(ch), "Empty reader should stream no chunks")
	})

	t.Run("multibyte runes stay whole", func(t *testing.T) {
		source := newTestSource(Config{ChunkSize: 2})
		text := "héllo wörld"

		ch, err := source.StreamReader(context.Background(), strings.NewReader(text))
		require.NoError(t, err, "StreamReader should not fail")

		chunks := collect(ch)
		assert.Equal(t, text, strings.Join(chunks, ""), "Rejoined stream should equal the input")
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len([]rune(chunk)), 2, "Chunk %q exceeds the size", chunk)
		}
	})
}

// TestStreamFeedsParser drives the streaming parser through a chunk source
// and checks that the outcome matches parsing the transcript in one piece,
// whatever the chunk size.
func TestStreamFeedsParser(t *testing.T) {
	transcript := "Preamble chatter. <reasoning>The user wants the failing test.\n" +
		"The stack trace points at the fixture loader.</reasoning>" +
		"<tools>- test runner\n- stack trace viewer</tools>" +
		"<conclusion>The fixture loader drops the last row; patch attached.</conclusion>"

	oneShot := reply.NewStreamParser()
	oneShot.ProcessChunk(transcript)
	want := oneShot.Finalize()

	for _, size := range []int{1, 2, 3, 7, 16, 64, 1024} {
		source := newTestSource(Config{ChunkSize: size})

		ch, err := source.StreamText(context.Background(), transcript)
		require.NoError(t, err, "StreamText should not fail")

		parser := reply.NewStreamParser()
		for chunk := range ch {
			parser.ProcessChunk(chunk)
		}
		got := parser.Finalize()

		assert.Equal(t, want, got, "Chunk size %d should not change the parse", size)
	}

	t.Run("seeded splits", func(t *testing.T) {
		for seed := int64(0); seed < 10; seed++ {
			parser := reply.NewStreamParser()
			for _, chunk := range SplitSeeded(transcript, seed, 6) {
				parser.ProcessChunk(chunk)
			}
			assert.Equal(t, want, parser.Finalize(), "Seed %d should not change the parse", seed)
		}
	})
}
