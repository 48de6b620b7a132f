package tracebuild

// Span is one traced unit of work, identified by a producer-assigned id
// and bounded by optional start/end timestamps.
//
// Name is an opaque hierarchical label; splitting it into path segments
// is a presentation concern. Children is populated only at finalize, in
// the order child links were discovered in the event stream, which is
// not necessarily chronological start order.
type Span struct {
	ID          uint64
	Name        string
	ParentID    *uint64
	Children    []uint64
	Attributes  map[string]string
	StartMillis *uint64
	EndMillis   *uint64

	// Placeholder marks a span that was only ever referenced as a
	// parent id and never observed as an event target. Synthesized at
	// finalize so the tree stays connected.
	Placeholder bool
}

// HasStart reports whether a Start timestamp was observed.
func (s *Span) HasStart() bool { return s.StartMillis != nil }

// HasEnd reports whether an End timestamp was observed.
func (s *Span) HasEnd() bool { return s.EndMillis != nil }
