package traceevent

// Phase represents the lifecycle marker of an event.
type Phase uint8

const (
	// PhaseUnknown is any event type this version does not recognize.
	// Unknown phases still carry attributes but never move timestamps.
	PhaseUnknown Phase = iota
	// PhaseStart marks the beginning of a span.
	PhaseStart
	// PhaseEnd marks the completion of a span.
	PhaseEnd
)

// String returns the wire representation of Phase.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "Start"
	case PhaseEnd:
		return "End"
	default:
		return "unknown"
	}
}

// ParsePhase converts a wire event type to a Phase.
// Unrecognized values map to PhaseUnknown rather than failing: a log
// written by a newer producer may carry event types this version does
// not know about, and those events still contribute attributes.
func ParsePhase(s string) Phase {
	switch s {
	case "Start":
		return PhaseStart
	case "End":
		return PhaseEnd
	default:
		return PhaseUnknown
	}
}

// Event is a single span lifecycle record.
//
// ParentID and UnixMillis are pointers because absence is meaningful:
// a span without a parent is a root, and an event without a timestamp
// must not move the span's start or end.
type Event struct {
	ID         uint64
	Name       string
	Phase      Phase
	ParentID   *uint64
	UnixMillis *uint64
	Data       map[string]string
}
