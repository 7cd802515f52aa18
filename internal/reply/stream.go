package reply

import "strings"

// StreamParser incrementally decomposes one chunked reply. Feed chunks with
// ProcessChunk as they arrive, read progress through Snapshot, and call
// Finalize once the stream ends. Chunk boundaries carry no meaning: the
// parser reaches the same state for every chunking of the same text, and a
// marker torn across chunks is recognized once its remaining bytes arrive.
//
// A parser handles exactly one reply and is not safe for concurrent use.
type StreamParser struct {
	phase   Phase
	pending string
	opened  bool

	prefix     strings.Builder
	reasoning  strings.Builder
	tools      strings.Builder
	conclusion strings.Builder

	err error
}

// NewStreamParser returns a parser ready for the first chunk.
func NewStreamParser() *StreamParser {
	return &StreamParser{phase: PhaseIdle}
}

// Phase returns the parser's current phase.
func (p *StreamParser) Phase() Phase { return p.phase }

// Err returns the terminal error if the parser ever entered PhaseError.
func (p *StreamParser) Err() error { return p.err }

// ProcessChunk consumes the next chunk of streamed text. Chunks may be
// empty, may carry several markers, and may cut a marker at any byte.
func (p *StreamParser) ProcessChunk(chunk string) {
	if p.phase == PhaseError {
		return
	}
	p.pending += chunk
	for {
		m, idx, ok := findMarker(p.pending)
		if !ok {
			// A trailing fragment like "<conclu" may still become a
			// marker; hold the buffer until the next chunk decides.
			if hasPendingMarkerStart(p.pending) {
				return
			}
			p.accumulate(p.pending)
			p.pending = ""
			return
		}
		p.accumulate(p.pending[:idx])
		p.pending = p.pending[idx+len(m.Literal):]
		if m.Kind == MarkerOpen {
			p.opened = true
		}
		p.phase = transition(p.phase, m)
	}
}

// accumulate routes text to the buffer the current phase writes to.
func (p *StreamParser) accumulate(text string) {
	if text == "" {
		return
	}
	switch p.phase {
	case PhaseIdle:
		p.prefix.WriteString(text)
	case PhaseReasoning:
		p.reasoning.WriteString(text)
	case PhaseTools:
		p.tools.WriteString(text)
	case PhaseConclusion, PhaseDone:
		p.conclusion.WriteString(text)
	case PhaseError:
	}
}

// Snapshot is a read-only view of the accumulated sections mid-stream.
// Bytes still held in the pending buffer are withheld, so a snapshot never
// exposes a partial marker fragment.
type Snapshot struct {
	Phase      Phase
	Prefix     string
	Reasoning  string
	Tools      string
	Conclusion string
}

// Snapshot returns the current per-section text without disturbing state.
func (p *StreamParser) Snapshot() Snapshot {
	return Snapshot{
		Phase:      p.phase,
		Prefix:     p.prefix.String(),
		Reasoning:  p.reasoning.String(),
		Tools:      p.tools.String(),
		Conclusion: p.conclusion.String(),
	}
}

// Finalize flushes the pending buffer and assembles the Result. Leftover
// pending text is scrubbed of marker literals before flushing. When the
// whole stream carried no section markers, the accumulated prefix is the
// reply and becomes the conclusion; otherwise a leftover prefix is
// discarded. Finalize is idempotent.
func (p *StreamParser) Finalize() *Result {
	if p.pending != "" {
		p.accumulate(StripMarkers(p.pending))
		p.pending = ""
	}

	conclusion := p.conclusion.String()
	if !p.opened {
		conclusion = p.prefix.String()
	}
	if p.phase != PhaseError {
		p.phase = PhaseDone
	}

	return Compose(p.reasoning.String(), p.tools.String(), conclusion)
}
