// Package feed turns complete transcripts into the chunk sequences a
// streaming parser consumes. Sources emit on an unbuffered channel so a
// consumer sees chunks one at a time, optionally paced to simulate the
// cadence of a live model.
package feed

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tildaslashalef/streamsect/internal/loggy"
)

// Config holds chunk source settings
type Config struct {
	ChunkSize int     // Runes per chunk
	Rate      float64 // Chunks per second (0 disables pacing)
	Burst     int     // Burst allowance for the rate limiter
}

// Source produces chunk streams from complete transcripts
type Source struct {
	chunkSize int
	limiter   *rate.Limiter
	logger    *loggy.Logger
}

// NewSource creates a chunk source
func NewSource(cfg Config, logger *loggy.Logger) *Source {
	size := cfg.ChunkSize
	if size <= 0 {
		size = 1
	}

	return &Source{
		chunkSize: size,
		limiter:   newLimiter(cfg.Rate, cfg.Burst),
		logger:    logger,
	}
}

// helper function to create a rate limiter from chunks-per-second and burst
func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		// If the rate is zero or negative, allow infinite rate (no pacing)
		return rate.NewLimiter(rate.Inf, burst)
	}
	// Burst should be at least 1
	b := burst
	if b <= 0 {
		b = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), b)
}

// StreamText splits text into fixed-size rune chunks and emits them on the
// returned channel. The channel is closed when the text is exhausted or the
// context is cancelled.
func (s *Source) StreamText(ctx context.Context, text string) (<-chan string, error) {
	chunks := make(chan string)

	parts := SplitText(text, s.chunkSize)

	// Create a context with cancel for cleanup
	streamCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(chunks)
		defer cancel()

		for _, part := range parts {
			if err := s.limiter.Wait(streamCtx); err != nil {
				return
			}

			select {
			case chunks <- part:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	s.logger.Debug("Streaming transcript", "chunks", len(parts), "chunk_size", s.chunkSize)

	// Return the channel immediately
	return chunks, nil
}

// StreamReader emits fixed-size rune chunks read incrementally from r.
// A read error ends the stream after the remainder read so far is emitted;
// the consumer observes it as an ordinary end of stream.
func (s *Source) StreamReader(ctx context.Context, r io.Reader) (<-chan string, error) {
	chunks := make(chan string)

	streamCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(chunks)
		defer cancel()

		send := func(chunk string) bool {
			if err := s.limiter.Wait(streamCtx); err != nil {
				return false
			}
			select {
			case chunks <- chunk:
				return true
			case <-streamCtx.Done():
				return false
			}
		}

		reader := bufio.NewReader(r)
		var pending strings.Builder
		count := 0

		for {
			ch, _, err := reader.ReadRune()
			if err != nil {
				if err != io.EOF {
					s.logger.Warn("Transcript read failed, ending stream", "error", err)
				}
				if pending.Len() > 0 {
					send(pending.String())
				}
				return
			}

			pending.WriteRune(ch)
			count++

			if count == s.chunkSize {
				if !send(pending.String()) {
					return
				}
				pending.Reset()
				count = 0
			}
		}
	}()

	return chunks, nil
}

// SplitSeeded splits text at pseudo-random rune offsets derived from seed.
// Chunk lengths vary between 1 and maxChunk runes, and the same seed always
// yields the same chunks, so awkward boundary placements are reproducible.
func SplitSeeded(text string, seed int64, maxChunk int) []string {
	if text == "" {
		return nil
	}
	if maxChunk <= 0 {
		maxChunk = 1
	}

	rng := rand.New(rand.NewSource(seed))
	runes := []rune(text)

	var chunks []string
	for i := 0; i < len(runes); {
		n := 1 + rng.Intn(maxChunk)
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i = end
	}

	return chunks
}

// SplitText splits text into fixed-size rune chunks. Multibyte runes are
// never split across chunks.
func SplitText(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}

	return chunks
}
