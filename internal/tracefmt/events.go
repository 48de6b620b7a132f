package tracefmt

import (
	"io"

	"spanview/internal/tracebuild"
	"spanview/internal/traceevent"
)

// Events flattens a finalized trace back into lifecycle events, one
// Start per span (End only for spans that closed), in depth-first
// order. Rebuilding a trace from this sequence yields the same tree,
// so it serves as a normalization step when converting log formats.
func Events(tr *tracebuild.Trace) []traceevent.Event {
	events := make([]traceevent.Event, 0, tr.Len()*2)
	tr.Walk(func(s *tracebuild.Span, depth int) {
		start := traceevent.Event{
			ID:         s.ID,
			Name:       s.Name,
			Phase:      traceevent.PhaseStart,
			ParentID:   s.ParentID,
			UnixMillis: s.StartMillis,
			Data:       s.Attributes,
		}
		events = append(events, start)

		if s.EndMillis != nil {
			events = append(events, traceevent.Event{
				ID:         s.ID,
				Name:       s.Name,
				Phase:      traceevent.PhaseEnd,
				ParentID:   s.ParentID,
				UnixMillis: s.EndMillis,
				Data:       s.Attributes,
			})
		}
	})
	return events
}

// WriteNDJSON re-emits the trace as a newline-delimited JSON event log.
func WriteNDJSON(w io.Writer, tr *tracebuild.Trace) error {
	return traceevent.EncodeNDJSON(w, Events(tr))
}

// WriteMsgpack re-emits the trace as a binary event log.
func WriteMsgpack(w io.Writer, tr *tracebuild.Trace) error {
	return traceevent.EncodeMsgpack(w, Events(tr))
}
