package tracebuild

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"spanview/internal/traceevent"
)

func u64(v uint64) *uint64 { return &v }

func start(id uint64, name string, parent *uint64, ts *uint64, data map[string]string) traceevent.Event {
	return traceevent.Event{ID: id, Name: name, Phase: traceevent.PhaseStart, ParentID: parent, UnixMillis: ts, Data: data}
}

func end(id uint64, name string, parent *uint64, ts *uint64, data map[string]string) traceevent.Event {
	return traceevent.Event{ID: id, Name: name, Phase: traceevent.PhaseEnd, ParentID: parent, UnixMillis: ts, Data: data}
}

func mustBuild(t *testing.T, events []traceevent.Event) *Trace {
	t.Helper()
	b := NewBuilder()
	for i, ev := range events {
		if err := b.Add(ev); err != nil {
			t.Fatalf("Add(event %d): %v", i, err)
		}
	}
	tr, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return tr
}

// sampleEvents mirrors the trace a task-tree logger writes: a root span,
// a zero-duration child, and a grandchild whose attributes arrive split
// across two events with overlapping keys.
func sampleEvents() []traceevent.Event {
	return []traceevent.Event{
		start(0, "root", nil, u64(1000), nil),
		start(1, "root:fast", u64(0), u64(1000), nil),
		end(1, "root:fast", u64(0), u64(1000), nil),
		start(3, "root:task_3", u64(0), u64(1200), nil),
		start(4, "root:task_3:task_4", u64(3), u64(1300), map[string]string{"dontprint": "4", "hey": "1"}),
		end(4, "root:task_3:task_4", u64(3), u64(1800), map[string]string{"hey": "1", "yo": "sup"}),
		end(3, "root:task_3", u64(0), u64(1900), nil),
		end(0, "root", nil, u64(2000), nil),
	}
}

func TestBuildSampleTrace(t *testing.T) {
	tr := mustBuild(t, sampleEvents())

	if got := tr.Roots(); !reflect.DeepEqual(got, []uint64{0}) {
		t.Fatalf("Roots() = %v, want [0]", got)
	}

	root, ok := tr.Get(0)
	if !ok {
		t.Fatalf("expected span 0")
	}
	if !reflect.DeepEqual(root.Children, []uint64{1, 3}) {
		t.Fatalf("root children = %v, want [1 3]", root.Children)
	}

	s4, ok := tr.Get(4)
	if !ok {
		t.Fatalf("expected span 4")
	}
	wantAttrs := map[string]string{"dontprint": "4", "hey": "1", "yo": "sup"}
	if !reflect.DeepEqual(s4.Attributes, wantAttrs) {
		t.Fatalf("span 4 attributes = %v, want %v", s4.Attributes, wantAttrs)
	}

	earliest, latest, ok := tr.Bounds()
	if !ok {
		t.Fatalf("expected bounds")
	}
	if earliest != 1000 || latest != 2000 {
		t.Fatalf("Bounds() = %d, %d, want 1000, 2000", earliest, latest)
	}
}

func TestDuplicateEventsAreIdempotent(t *testing.T) {
	events := sampleEvents()
	doubled := make([]traceevent.Event, 0, len(events)*2)
	for _, ev := range events {
		doubled = append(doubled, ev, ev)
	}

	once := mustBuild(t, events)
	twice := mustBuild(t, doubled)

	if once.Len() != twice.Len() {
		t.Fatalf("span count differs: %d vs %d", once.Len(), twice.Len())
	}
	for _, id := range []uint64{0, 1, 3, 4} {
		a, _ := once.Get(id)
		b, ok := twice.Get(id)
		if !ok {
			t.Fatalf("span %d missing after duplicate feed", id)
		}
		if !reflect.DeepEqual(a.Attributes, b.Attributes) {
			t.Fatalf("span %d attributes differ: %v vs %v", id, a.Attributes, b.Attributes)
		}
		if !reflect.DeepEqual(a.Children, b.Children) {
			t.Fatalf("span %d children differ: %v vs %v", id, a.Children, b.Children)
		}
		if !reflect.DeepEqual(a.StartMillis, b.StartMillis) || !reflect.DeepEqual(a.EndMillis, b.EndMillis) {
			t.Fatalf("span %d timestamps differ", id)
		}
	}
}

func TestOrderInsensitiveReconstruction(t *testing.T) {
	events := sampleEvents()
	reference := mustBuild(t, events)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]traceevent.Event, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		tr := mustBuild(t, shuffled)

		if !sameIDSet(tr.Roots(), reference.Roots()) {
			t.Fatalf("trial %d: roots = %v, want set %v", trial, tr.Roots(), reference.Roots())
		}
		for _, id := range []uint64{0, 1, 3, 4} {
			a, _ := reference.Get(id)
			b, ok := tr.Get(id)
			if !ok {
				t.Fatalf("trial %d: span %d missing", trial, id)
			}
			if !sameIDSet(a.Children, b.Children) {
				t.Fatalf("trial %d: span %d children = %v, want set %v", trial, id, b.Children, a.Children)
			}
			if !reflect.DeepEqual(a.Attributes, b.Attributes) {
				t.Fatalf("trial %d: span %d attributes differ", trial, id)
			}
			if !reflect.DeepEqual(a.StartMillis, b.StartMillis) || !reflect.DeepEqual(a.EndMillis, b.EndMillis) {
				t.Fatalf("trial %d: span %d timestamps differ", trial, id)
			}
		}
	}
}

func sameIDSet(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]uint64(nil), a...)
	bs := append([]uint64(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	return reflect.DeepEqual(as, bs)
}

func TestRootInvariant(t *testing.T) {
	tr := mustBuild(t, []traceevent.Event{
		start(1, "a", nil, u64(10), nil),
		start(2, "b", u64(1), u64(11), nil),
		start(3, "c", nil, u64(12), nil),
		start(4, "d", u64(3), u64(13), nil),
	})

	if got := tr.Roots(); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Fatalf("Roots() = %v, want [1 3]", got)
	}

	// Every parented span appears in exactly one parent's children.
	seen := make(map[uint64]int)
	for _, rootID := range tr.Roots() {
		s, _ := tr.Get(rootID)
		for _, c := range s.Children {
			seen[c]++
		}
	}
	for _, id := range []uint64{2, 4} {
		if seen[id] != 1 {
			t.Fatalf("span %d appears in %d child lists, want 1", id, seen[id])
		}
	}
}

func TestEmptyTrace(t *testing.T) {
	tr := mustBuild(t, nil)

	if got := tr.Roots(); len(got) != 0 {
		t.Fatalf("Roots() = %v, want empty", got)
	}
	if _, _, ok := tr.Bounds(); ok {
		t.Fatalf("expected absent bounds for empty trace")
	}
	if s, ok := tr.Get(42); ok || s != nil {
		t.Fatalf("Get(42) = %v, %v, want nil, false", s, ok)
	}
	if d := tr.Duration(); d != 0 {
		t.Fatalf("Duration() = %v, want 0", d)
	}
}

func TestDanglingParentGetsPlaceholder(t *testing.T) {
	// Span 7 is referenced as a parent but never observed directly.
	tr := mustBuild(t, []traceevent.Event{
		start(2, "child", u64(7), u64(100), nil),
		end(2, "child", u64(7), u64(200), nil),
	})

	ph, ok := tr.Get(7)
	if !ok {
		t.Fatalf("expected placeholder span for dangling parent 7")
	}
	if !ph.Placeholder {
		t.Fatalf("span 7 not marked as placeholder")
	}
	if ph.HasStart() || ph.HasEnd() {
		t.Fatalf("placeholder must not carry timestamps")
	}
	if len(ph.Attributes) != 0 {
		t.Fatalf("placeholder attributes = %v, want empty", ph.Attributes)
	}
	if !reflect.DeepEqual(ph.Children, []uint64{2}) {
		t.Fatalf("placeholder children = %v, want [2]", ph.Children)
	}
	if got := tr.Roots(); !reflect.DeepEqual(got, []uint64{7}) {
		t.Fatalf("Roots() = %v, want [7]", got)
	}
}

func TestFinalizeIsOneShot(t *testing.T) {
	b := NewBuilder()
	if err := b.Add(start(1, "a", nil, u64(1), nil)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := b.Finalize(); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	if _, err := b.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Fatalf("second Finalize error = %v, want ErrFinalized", err)
	}
	if err := b.Add(start(2, "b", nil, u64(2), nil)); !errors.Is(err, ErrFinalized) {
		t.Fatalf("Add after Finalize error = %v, want ErrFinalized", err)
	}
}

func TestDuplicateStartOverwritesTimestamp(t *testing.T) {
	tr := mustBuild(t, []traceevent.Event{
		start(1, "a", nil, u64(100), nil),
		start(1, "a", nil, u64(150), nil),
	})
	s, _ := tr.Get(1)
	if s.StartMillis == nil || *s.StartMillis != 150 {
		t.Fatalf("StartMillis = %v, want 150", s.StartMillis)
	}
}

func TestUnknownPhaseMovesNoTimestamps(t *testing.T) {
	tr := mustBuild(t, []traceevent.Event{
		{ID: 1, Name: "a", Phase: traceevent.PhaseUnknown, UnixMillis: u64(500), Data: map[string]string{"k": "v"}},
	})
	s, ok := tr.Get(1)
	if !ok {
		t.Fatalf("expected span 1")
	}
	if s.HasStart() || s.HasEnd() {
		t.Fatalf("unknown phase must not set timestamps: start=%v end=%v", s.StartMillis, s.EndMillis)
	}
	if s.Attributes["k"] != "v" {
		t.Fatalf("unknown phase must still merge attributes, got %v", s.Attributes)
	}
}

func TestParentConflictLastWriteWins(t *testing.T) {
	tr := mustBuild(t, []traceevent.Event{
		start(1, "p1", nil, u64(1), nil),
		start(2, "p2", nil, u64(2), nil),
		start(3, "c", u64(1), u64(3), nil),
		end(3, "c", u64(2), u64(4), nil),
	})
	s, _ := tr.Get(3)
	if s.ParentID == nil || *s.ParentID != 2 {
		t.Fatalf("ParentID = %v, want 2", s.ParentID)
	}
	p2, _ := tr.Get(2)
	if !reflect.DeepEqual(p2.Children, []uint64{3}) {
		t.Fatalf("p2 children = %v, want [3]", p2.Children)
	}
	p1, _ := tr.Get(1)
	if len(p1.Children) != 0 {
		t.Fatalf("p1 children = %v, want empty", p1.Children)
	}
}
