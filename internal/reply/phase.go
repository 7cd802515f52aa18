package reply

import "fmt"

// Phase is the streaming parser's position in the reply structure.
type Phase int

const (
	// PhaseIdle means no section is open; text accrues to the prefix.
	PhaseIdle Phase = iota
	// PhaseReasoning means the parser is inside a reasoning section.
	PhaseReasoning
	// PhaseTools means the parser is inside a tools section.
	PhaseTools
	// PhaseConclusion means the parser is inside a conclusion section.
	PhaseConclusion
	// PhaseDone means the conclusion closed; trailing text still accrues
	// to the conclusion.
	PhaseDone
	// PhaseError is reserved for a future strict mode. The tolerant
	// transition table never produces it.
	PhaseError
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReasoning:
		return "reasoning"
	case PhaseTools:
		return "tools"
	case PhaseConclusion:
		return "conclusion"
	case PhaseDone:
		return "done"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// sectionPhase maps a section to its in-section phase.
func sectionPhase(s Section) Phase {
	switch s {
	case SectionReasoning:
		return PhaseReasoning
	case SectionTools:
		return PhaseTools
	case SectionConclusion:
		return PhaseConclusion
	default:
		return PhaseIdle
	}
}

// transition is the pure phase-transition table. An open marker always
// moves the parser into its section, implicitly closing whatever was open;
// a duplicate open of the current section keeps accumulating into it. A
// close marker only acts when it matches the open section, a stray close is
// a no-op. Closing the conclusion ends the structured part of the reply.
func transition(p Phase, m Marker) Phase {
	if p == PhaseError {
		return PhaseError
	}
	if m.Kind == MarkerOpen {
		return sectionPhase(m.Section)
	}
	if p != sectionPhase(m.Section) {
		return p
	}
	if m.Section == SectionConclusion {
		return PhaseDone
	}
	return PhaseIdle
}
