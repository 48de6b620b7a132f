package tracebuild

import (
	"time"

	"fortio.org/safecast"
)

// Trace is a finalized, read-only span tree.
// Callers must treat the returned spans as immutable; all interactive
// state (expansion, selection) lives outside the trace.
type Trace struct {
	spans    map[uint64]*Span
	order    []uint64
	roots    []uint64
	earliest *uint64
	latest   *uint64
}

// Get returns the span for id, or nil and false for unknown ids.
func (t *Trace) Get(id uint64) (*Span, bool) {
	s, ok := t.spans[id]
	return s, ok
}

// Roots returns span ids with no parent, in first-creation order.
func (t *Trace) Roots() []uint64 {
	return t.roots
}

// Len returns the number of spans, placeholders included.
func (t *Trace) Len() int {
	return len(t.order)
}

// Bounds returns the earliest start and latest end across all spans.
// ok is false when no span carries a timestamp; callers must render
// that as an empty timeline.
func (t *Trace) Bounds() (earliest, latest uint64, ok bool) {
	if t.earliest == nil || t.latest == nil {
		return 0, 0, false
	}
	return *t.earliest, *t.latest, true
}

// Duration returns the total trace window.
func (t *Trace) Duration() time.Duration {
	earliest, latest, ok := t.Bounds()
	if !ok || latest < earliest {
		return 0
	}
	ms, err := safecast.Conv[int64](latest - earliest)
	if err != nil {
		// Window wider than time.Duration can express.
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(ms) * time.Millisecond
}

// Extent returns the span's normalized position within the trace
// window as fractions in [0, 1]. A missing start substitutes the
// trace's earliest start and a missing end its latest end, so
// unterminated spans extend to the trace boundary instead of
// disappearing. A trace with no usable window reports full extent.
func (t *Trace) Extent(s *Span) (left, right float64) {
	earliest, latest, ok := t.Bounds()
	if !ok || latest <= earliest {
		return 0, 1
	}

	start := earliest
	if s.StartMillis != nil {
		start = *s.StartMillis
	}
	end := latest
	if s.EndMillis != nil {
		end = *s.EndMillis
	}

	window := float64(latest - earliest)
	left = clamp01((float64(start) - float64(earliest)) / window)
	right = clamp01((float64(end) - float64(earliest)) / window)
	if right < left {
		right = left
	}
	return left, right
}

// SpanDuration returns the span's own duration, substituting trace
// bounds for missing endpoints, and false when the trace has no window.
func (t *Trace) SpanDuration(s *Span) (time.Duration, bool) {
	earliest, latest, ok := t.Bounds()
	if !ok {
		return 0, false
	}
	start := earliest
	if s.StartMillis != nil {
		start = *s.StartMillis
	}
	end := latest
	if s.EndMillis != nil {
		end = *s.EndMillis
	}
	if end < start {
		return 0, true
	}
	ms, err := safecast.Conv[int64](end - start)
	if err != nil {
		return time.Duration(1<<63 - 1), true
	}
	return time.Duration(ms) * time.Millisecond, true
}

// Walk visits every span reachable from the roots depth-first,
// children in link-discovery order.
func (t *Trace) Walk(fn func(s *Span, depth int)) {
	for _, id := range t.roots {
		t.walk(id, 0, fn)
	}
}

func (t *Trace) walk(id uint64, depth int, fn func(s *Span, depth int)) {
	s, ok := t.spans[id]
	if !ok {
		return
	}
	fn(s, depth)
	for _, child := range s.Children {
		t.walk(child, depth+1, fn)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
