package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

// A traceEvent is one recorded emission, with literals in their DIMACS form.
type traceEvent struct {
	Kind   string // "o", "a", "d", "fext", "funit", "fclause" or "status"
	ID     ProofID
	Lits   []int
	Status Status
}

// recordingTracer keeps every event it receives, for inspection.
type recordingTracer struct {
	events []traceEvent
}

func intsOf(lits []Lit) []int {
	if len(lits) == 0 {
		return nil
	}
	ints := make([]int, len(lits))
	for i, l := range lits {
		ints[i] = l.Int()
	}
	return ints
}

func (r *recordingTracer) record(kind string, id ProofID, lits []int) error {
	r.events = append(r.events, traceEvent{Kind: kind, ID: id, Lits: lits})
	return nil
}

func (r *recordingTracer) OriginalClause(id ProofID, lits []Lit) error {
	return r.record("o", id, intsOf(lits))
}

func (r *recordingTracer) LearnedClause(id ProofID, lits []Lit) error {
	return r.record("a", id, intsOf(lits))
}

func (r *recordingTracer) DeletedClause(id ProofID, lits []Lit) error {
	return r.record("d", id, intsOf(lits))
}

func (r *recordingTracer) FinalizeExternalUnit(id ProofID, extLit int) error {
	return r.record("fext", id, []int{extLit})
}

func (r *recordingTracer) FinalizeUnit(id ProofID, lit Lit) error {
	return r.record("funit", id, []int{lit.Int()})
}

func (r *recordingTracer) FinalizeClause(id ProofID, lits []Lit) error {
	return r.record("fclause", id, intsOf(lits))
}

func (r *recordingTracer) ReportStatus(status Status, conflictID ProofID) error {
	r.events = append(r.events, traceEvent{Kind: "status", ID: conflictID, Status: status})
	return nil
}

func TestFinalizeExternalUnitFirst(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice(nil), Options{Tracer: rec})
	sess.AddClause([]int{5})
	require.Equal(t, Sat, sess.Solve())
	require.NoError(t, sess.Finalize(Sat))
	want := []traceEvent{
		{Kind: "o", ID: 1, Lits: []int{1}}, // Internal numbering: 5 was frozen as var 1
		{Kind: "fext", ID: 1, Lits: []int{5}},
		{Kind: "fclause", ID: 1, Lits: []int{1}},
		{Kind: "status", ID: 0, Status: Sat},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("wrong certificate (-want +got):\n%s", diff)
	}
	require.True(t, sess.concluded, "a Sat finalization must conclude the session")
	require.Equal(t, Sat, sess.verdict)
	require.Panics(t, func() { sess.AddClause([]int{2}) }, "no addition after conclusion")
}

func TestFinalizeNegativeExternalUnit(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice(nil), Options{Tracer: rec})
	sess.AddClause([]int{-7})
	require.Equal(t, Sat, sess.Solve())
	require.NoError(t, sess.Finalize(Sat))
	want := []traceEvent{
		{Kind: "o", ID: 1, Lits: []int{-1}},
		{Kind: "fext", ID: 1, Lits: []int{-7}},
		{Kind: "fclause", ID: 1, Lits: []int{-1}},
		{Kind: "status", ID: 0, Status: Sat},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("wrong certificate (-want +got):\n%s", diff)
	}
}

func TestFinalizeStatusOnly(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice([][]int{{1, 2}, {-1, 2}, {3}}), Options{
		Tracer: rec,
		Mode:   CertifyStatusOnly,
	})
	require.Equal(t, Sat, sess.Solve())
	nbBefore := len(rec.events)
	require.NoError(t, sess.Finalize(Sat))
	require.Len(t, rec.events, nbBefore+1, "status-only finalization must emit exactly one event")
	last := rec.events[len(rec.events)-1]
	require.Equal(t, "status", last.Kind)
	require.Equal(t, Sat, last.Status)
	require.False(t, sess.concluded, "status-only finalization must not conclude the session")
}

func TestFinalizeStatusOnlyNoTracer(t *testing.T) {
	sess := NewSession(ParseSlice([][]int{{1, 2}}), Options{Mode: CertifyStatusOnly})
	require.Equal(t, Sat, sess.Solve())
	require.NoError(t, sess.Finalize(Sat))
	require.False(t, sess.concluded, "the elided protocol concludes nothing, tracer or not")
	sess.AddClause([]int{-1}) // Still allowed: the session was never sealed
}

func TestFinalizeTwicePanics(t *testing.T) {
	sess := NewSession(ParseSlice([][]int{{1}}), Options{})
	require.NoError(t, sess.Finalize(Indet))
	require.Panics(t, func() { _ = sess.Finalize(Indet) })
}

func TestFinalizeInvalidVerdictPanics(t *testing.T) {
	sess := NewSession(ParseSlice([][]int{{1}}), Options{})
	require.Panics(t, func() { _ = sess.Finalize(Many) })
}

func TestFinalizeInternalUnits(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice([][]int{{1}, {2, 3}}), Options{Tracer: rec})
	require.NoError(t, sess.Finalize(Indet))
	want := []traceEvent{
		{Kind: "o", ID: 1, Lits: []int{2, 3}}, // Longer clauses are stored before the units
		{Kind: "o", ID: 2, Lits: []int{1}},
		{Kind: "funit", ID: 2, Lits: []int{1}}, // Never frozen: certified internally
		{Kind: "fclause", ID: 1, Lits: []int{2, 3}},
		{Kind: "fclause", ID: 2, Lits: []int{1}},
		{Kind: "status", ID: 0, Status: Indet},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("wrong certificate (-want +got):\n%s", diff)
	}
	require.False(t, sess.concluded, "an unknown verdict concludes nothing")
}

func TestFinalizeExternalNotReemitted(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice(nil), Options{Tracer: rec})
	sess.AddClause([]int{4})
	sess.AddClause([]int{-6})
	require.NoError(t, sess.Finalize(Indet))
	for _, ev := range rec.events {
		if ev.Kind == "funit" {
			t.Errorf("externally justified unit re-emitted internally: %# v", pretty.Formatter(ev))
		}
	}
}

func TestFinalizeConflict(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice([][]int{{1}, {-1}}), Options{Tracer: rec})
	require.Equal(t, Unsat, sess.Solve())
	require.NoError(t, sess.Finalize(Unsat))
	want := []traceEvent{
		{Kind: "o", ID: 1, Lits: []int{1}},
		{Kind: "o", ID: 2, Lits: []int{-1}},
		{Kind: "a", ID: 3, Lits: nil}, // The refutation derived at the root
		{Kind: "funit", ID: 1, Lits: []int{1}},
		{Kind: "funit", ID: 2, Lits: []int{-1}},
		{Kind: "fclause", ID: 1, Lits: []int{1}},
		{Kind: "fclause", ID: 2, Lits: []int{-1}},
		{Kind: "fclause", ID: 3, Lits: nil},
		{Kind: "status", ID: 3, Status: Unsat},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("wrong certificate (-want +got):\n%s", diff)
	}
	require.True(t, sess.concluded)
	require.Equal(t, Unsat, sess.verdict)
}

func TestFinalizeSkipsGarbage(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice([][]int{{1, 2, 3}, {1, 2}}), Options{Tracer: rec})
	sess.s.db.markGarbage(1)
	sess.s.db.markGarbage(2)
	sess.s.db.reclaim()
	require.NoError(t, sess.Finalize(Indet))
	var finalized []ProofID
	for _, ev := range rec.events {
		if ev.Kind == "fclause" {
			finalized = append(finalized, ev.ID)
		}
	}
	// The garbage ternary is gone; the garbage binary is retained and justified.
	require.Equal(t, []ProofID{2}, finalized)
}

func TestFinalizeCompleteness(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice([][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}}), Options{Tracer: rec})
	require.Equal(t, Unsat, sess.Solve())
	require.NoError(t, sess.Finalize(Unsat))
	derived := make(map[ProofID]bool)
	finalized := make(map[ProofID]bool)
	var nbConflict int
	for i, ev := range rec.events {
		switch ev.Kind {
		case "o", "a":
			derived[ev.ID] = true
		case "funit":
			if !derived[ev.ID] {
				t.Errorf("unit justified under unknown id: %# v", pretty.Formatter(ev))
			}
		case "fclause":
			if !derived[ev.ID] {
				t.Errorf("clause justified under unknown id: %# v", pretty.Formatter(ev))
			}
			if finalized[ev.ID] {
				t.Errorf("clause %d justified twice", ev.ID)
			}
			finalized[ev.ID] = true
			if ev.Lits == nil {
				nbConflict++
			}
		case "status":
			if i != len(rec.events)-1 {
				t.Errorf("status report must come last")
			}
			if !finalized[ev.ID] {
				t.Errorf("status references conflict %d, which was not justified", ev.ID)
			}
		}
	}
	if nbConflict != 1 {
		t.Errorf("expected exactly one conflict justification, got %d", nbConflict)
	}
}
