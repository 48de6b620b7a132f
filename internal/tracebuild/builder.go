package tracebuild

import (
	"errors"

	"spanview/internal/traceevent"
)

// ErrFinalized is returned when a Builder is used after Finalize.
var ErrFinalized = errors.New("trace builder already finalized")

// Builder accumulates lifecycle events into per-span state.
// It is single-threaded by design: ingestion is a sequential fold over
// the input, and Finalize consumes the builder.
type Builder struct {
	spans map[uint64]*Span
	order []uint64 // span ids in first-creation order

	// links is the authoritative child->parent mapping for tree shape.
	// linkOrder keeps the order in which child links were first
	// discovered; it drives Children ordering at finalize.
	links     map[uint64]uint64
	linkOrder []uint64

	finalized bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		spans: make(map[uint64]*Span),
		links: make(map[uint64]uint64),
	}
}

// Add folds one event into the builder.
//
// The span record for ev.ID is created on first sight; attributes merge
// with last-write-wins per key; a parent id overwrites any previously
// recorded one; Start and End set the corresponding timestamp and any
// other phase moves neither. Feeding the same event twice leaves the
// span state identical to feeding it once.
func (b *Builder) Add(ev traceevent.Event) error {
	if b.finalized {
		return ErrFinalized
	}

	s, ok := b.spans[ev.ID]
	if !ok {
		s = &Span{
			ID:         ev.ID,
			Attributes: make(map[string]string),
		}
		b.spans[ev.ID] = s
		b.order = append(b.order, ev.ID)
	}

	if ev.Name != "" {
		s.Name = ev.Name
	}

	for k, v := range ev.Data {
		s.Attributes[k] = v
	}

	if ev.ParentID != nil {
		parent := *ev.ParentID
		if _, linked := b.links[ev.ID]; !linked {
			b.linkOrder = append(b.linkOrder, ev.ID)
		}
		b.links[ev.ID] = parent
		s.ParentID = &parent
	}

	switch ev.Phase {
	case traceevent.PhaseStart:
		s.StartMillis = copyMillis(ev.UnixMillis)
	case traceevent.PhaseEnd:
		s.EndMillis = copyMillis(ev.UnixMillis)
	default:
		// Unknown phases contribute attributes only.
	}

	return nil
}

// Finalize derives the immutable Trace from the accumulated state and
// consumes the builder. Calling it a second time returns ErrFinalized;
// re-running the child-list inversion would duplicate entries.
func (b *Builder) Finalize() (*Trace, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true

	// Parents that never appeared as an event target become placeholder
	// spans so every observed span stays reachable from a root.
	for _, child := range b.linkOrder {
		parent := b.links[child]
		if _, ok := b.spans[parent]; !ok {
			b.spans[parent] = &Span{
				ID:          parent,
				Attributes:  make(map[string]string),
				Placeholder: true,
			}
			b.order = append(b.order, parent)
		}
	}

	// Single place child lists are populated, over the complete link
	// set, in link-discovery order.
	for _, child := range b.linkOrder {
		parent := b.links[child]
		p := b.spans[parent]
		p.Children = append(p.Children, child)
	}

	var earliest, latest *uint64
	for _, id := range b.order {
		s := b.spans[id]
		if s.StartMillis != nil && (earliest == nil || *s.StartMillis < *earliest) {
			earliest = copyMillis(s.StartMillis)
		}
		if s.EndMillis != nil && (latest == nil || *s.EndMillis > *latest) {
			latest = copyMillis(s.EndMillis)
		}
	}

	var roots []uint64
	for _, id := range b.order {
		if b.spans[id].ParentID == nil {
			roots = append(roots, id)
		}
	}

	return &Trace{
		spans:    b.spans,
		order:    b.order,
		roots:    roots,
		earliest: earliest,
		latest:   latest,
	}, nil
}

func copyMillis(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	ms := *v
	return &ms
}
