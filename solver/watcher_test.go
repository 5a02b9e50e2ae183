package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceLearned(t *testing.T) {
	rec := &recordingTracer{}
	sess := NewSession(ParseSlice([][]int{{1, 2, 3, 4}}), Options{Tracer: rec})
	s := sess.s

	bad := NewLearnedClause(litsOf(1, 2, 3))
	bad.setLbd(5)
	s.addLearned(bad)
	good := NewLearnedClause(litsOf(2, 3, 4))
	good.setLbd(3)
	s.addLearned(good)
	badID := bad.ID()

	s.reduceLearned()

	_, ok := s.db.get(badID)
	require.False(t, ok, "the worst learned clause must be reclaimed")
	_, ok = s.db.get(good.ID())
	require.True(t, ok, "the better learned clause must survive")
	require.Equal(t, []*Clause{good}, s.db.learned)

	var deleted []ProofID
	for _, ev := range rec.events {
		if ev.Kind == "d" {
			deleted = append(deleted, ev.ID)
		}
	}
	require.Equal(t, []ProofID{badID}, deleted, "the deletion must be traced")

	// The reclaimed clause must not reach the certificate's closing walk.
	require.NoError(t, sess.Finalize(Indet))
	for _, ev := range rec.events {
		if ev.Kind == "fclause" {
			require.NotEqual(t, badID, ev.ID)
		}
	}
}

func TestReduceLearnedKeepsBinariesAndLocked(t *testing.T) {
	sess := NewSession(ParseSlice([][]int{{1, 2, 3, 4}}), Options{})
	s := sess.s

	bin := NewLearnedClause(litsOf(1, 2))
	bin.setLbd(7)
	s.addLearned(bin)
	locked := NewLearnedClause(litsOf(2, 3, 4))
	locked.setLbd(7)
	s.addLearned(locked)
	locked.lock()
	doomed := NewLearnedClause(litsOf(1, 3, 4))
	doomed.setLbd(8)
	s.addLearned(doomed)
	doomed2 := NewLearnedClause(litsOf(1, 2, 4))
	doomed2.setLbd(9)
	s.addLearned(doomed2)

	s.reduceLearned()

	require.False(t, bin.Garbage(), "binary learned clauses are kept")
	require.False(t, locked.Garbage(), "locked clauses are kept")
	_, ok := s.db.get(doomed2.ID())
	require.False(t, ok, "the worst unlocked long clause goes away")
}
