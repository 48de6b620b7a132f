package tracefmt

import (
	"encoding/json"
	"fmt"
	"io"

	"spanview/internal/tracebuild"
)

// chromeEvent is one entry in a Chrome trace viewer payload.
type chromeEvent struct {
	Name string            `json:"name"`
	Ph   string            `json:"ph"`
	Pid  uint64            `json:"pid"`
	Ts   uint64            `json:"ts"` // microseconds
	Tid  uint64            `json:"tid"`
	Args map[string]string `json:"args"`
}

// WriteChrome exports the trace as a Chrome trace viewer document
// (chrome://tracing, Perfetto). Spans that never ended emit no E event
// and render open-ended in the viewer. A span missing its start
// timestamp substitutes the trace's earliest start so it still appears
// on the timeline, and every emitted E is preceded by a B for the same
// span so the viewer never sees an unbalanced pair.
func WriteChrome(w io.Writer, tr *tracebuild.Trace) error {
	earliest, _, hasBounds := tr.Bounds()

	events := make([]chromeEvent, 0, tr.Len()*2)
	var tid uint64
	tr.Walk(func(s *tracebuild.Span, depth int) {
		tid++
		name := fmt.Sprintf("%s-%d", Label(s), s.ID)

		var begin uint64
		hasBegin := true
		switch {
		case s.StartMillis != nil:
			begin = *s.StartMillis
		case hasBounds:
			begin = earliest
		case s.EndMillis != nil:
			// End-only span in a trace with no start anywhere: pair
			// the E with a zero-duration B at the end timestamp so
			// the viewer never sees an unbalanced E.
			begin = *s.EndMillis
		default:
			hasBegin = false
		}
		if hasBegin {
			events = append(events, chromeEvent{
				Name: name,
				Ph:   "B",
				Pid:  1,
				Ts:   begin * 1000,
				Tid:  tid,
				Args: s.Attributes,
			})
		}
		if s.EndMillis != nil && hasBegin {
			events = append(events, chromeEvent{
				Name: name,
				Ph:   "E",
				Pid:  1,
				Ts:   *s.EndMillis * 1000,
				Tid:  tid,
				Args: s.Attributes,
			})
		}
	})

	doc := struct {
		TraceEvents []chromeEvent `json:"traceEvents"`
	}{TraceEvents: events}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode chrome trace: %w", err)
	}
	return nil
}
