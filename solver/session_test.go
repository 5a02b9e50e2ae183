package solver

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSessionIncremental(t *testing.T) {
	sess := NewSession(ParseSlice(nil), Options{})
	require.Equal(t, Indet, sess.AddClause([]int{1, 2}))
	require.Equal(t, Sat, sess.Solve())
	require.Equal(t, Indet, sess.AddClause([]int{-1}))
	require.Equal(t, Sat, sess.Solve())
	model := sess.Model()
	require.False(t, model[1])
	require.True(t, model[2])
	require.Equal(t, Unsat, sess.AddClause([]int{-2}))
	require.Equal(t, Unsat, sess.Solve())
	require.True(t, sess.s.conflict.ok)
}

func TestSessionFreezeStable(t *testing.T) {
	sess := NewSession(ParseSlice(nil), Options{})
	v := sess.Freeze(42)
	sess.AddClause([]int{42, 7})
	require.Equal(t, v, sess.Freeze(42))
	require.NotEqual(t, v, sess.Freeze(7))
}

func TestSessionAddClauseSatisfiedAtRoot(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice(nil), Options{Tracer: rec})
	sess.AddClause([]int{1})
	require.Equal(t, Indet, sess.AddClause([]int{1, 2}), "a clause already true at the root changes nothing")
	require.Equal(t, Sat, sess.Solve())
	// The redundant clause must still be recorded and finalized.
	require.NoError(t, sess.Finalize(Sat))
	var finalized []ProofID
	for _, ev := range rec.events {
		if ev.Kind == "fclause" {
			finalized = append(finalized, ev.ID)
		}
	}
	require.Equal(t, []ProofID{1, 2}, finalized)
}

func TestSessionAddEmptyClause(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice(nil), Options{Tracer: rec})
	sess.AddClause([]int{1, 2})
	require.Equal(t, Unsat, sess.AddClause([]int{}))
	require.NoError(t, sess.Finalize(Unsat))
	last := rec.events[len(rec.events)-1]
	require.Equal(t, "status", last.Kind)
	require.Equal(t, ProofID(2), last.ID, "the added empty clause is the conflict")
}

func TestSessionAssume(t *testing.T) {
	sess := NewSession(ParseSlice(nil), Options{})
	sess.AddClause([]int{1, 2})
	require.Equal(t, Indet, sess.Assume([]int{-1}))
	require.Equal(t, Sat, sess.Solve())
	model := sess.Model()
	require.False(t, model[1])
	require.True(t, model[2])
	require.Equal(t, Unsat, sess.Assume([]int{-2}))
}

func TestSessionCertificateStream(t *testing.T) {
	var sb strings.Builder
	sess := NewSession(ParseSlice([][]int{{1}, {-1}}), Options{Tracer: NewStreamTracer(&sb)})
	require.Equal(t, Unsat, sess.Solve())
	require.NoError(t, sess.Finalize(Unsat))
	require.NoError(t, sess.s.tracer.(*StreamTracer).Flush())
	want := strings.Join([]string{
		"o 1 1 0",
		"o 2 -1 0",
		"a 3 0",
		"f 1 1 0",
		"f 2 -1 0",
		"f 1 1 0",
		"f 2 -1 0",
		"f 3 0",
		"s UNSATISFIABLE 3",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("wrong proof stream (-want +got):\n%s", diff)
	}
}

func TestSessionOutputModel(t *testing.T) {
	sess := NewSession(ParseSlice([][]int{{1}, {-2}}), Options{})
	require.Equal(t, Sat, sess.Solve())
	var sb strings.Builder
	sess.OutputModel(&sb)
	require.Equal(t, "s SATISFIABLE\nv 1 -2 \n", sb.String())
}

func TestSessionOutputUnsat(t *testing.T) {
	sess := NewSession(ParseSlice([][]int{{1}, {-1}}), Options{})
	require.Equal(t, Unsat, sess.Solve())
	var sb strings.Builder
	sess.OutputModel(&sb)
	require.Equal(t, "s UNSATISFIABLE\n", sb.String())
}
