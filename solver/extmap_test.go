package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtMapFreezeStable(t *testing.T) {
	m := newExtMap()
	next := Var(0)
	newVar := func() Var {
		v := next
		next++
		return v
	}
	v5 := m.freeze(5, newVar)
	v2 := m.freeze(2, newVar)
	require.NotEqual(t, v5, v2, "the mapping must be injective")
	require.Equal(t, v5, m.freeze(5, newVar), "freezing twice must reuse the mapping")
	require.Equal(t, Var(2), next, "no allocation on refreeze")

	v, ok := m.lookup(5)
	require.True(t, ok)
	require.Equal(t, v5, v)
	_, ok = m.lookup(99)
	require.False(t, ok)

	ext, ok := m.externalize(v2)
	require.True(t, ok)
	require.Equal(t, 2, ext)
	_, ok = m.externalize(Var(17))
	require.False(t, ok)
}

func TestExtMapFreezeInvalid(t *testing.T) {
	m := newExtMap()
	require.Panics(t, func() { m.freeze(0, func() Var { return 0 }) })
	require.Panics(t, func() { m.freeze(-3, func() Var { return 0 }) })
}

func TestExtMapRecordUnit(t *testing.T) {
	m := newExtMap()
	m.freeze(5, func() Var { return 0 })
	_, ok := m.unitID(5, true)
	require.False(t, ok, "no justification before recording is a normal condition")

	m.recordUnit(5, true, 7)
	m.recordUnit(5, true, 7) // Same id again: idempotent
	id, ok := m.unitID(5, true)
	require.True(t, ok)
	require.Equal(t, ProofID(7), id)

	_, ok = m.unitID(5, false)
	require.False(t, ok, "polarities have separate slots")
	m.recordUnit(5, false, 9)
	id, ok = m.unitID(5, false)
	require.True(t, ok)
	require.Equal(t, ProofID(9), id)

	require.Panics(t, func() { m.recordUnit(5, true, 8) }, "diverging justifications are fatal")
	require.Panics(t, func() { m.recordUnit(6, true, 8) }, "recording for an unfrozen variable is fatal")
}

func TestExtMapSortedExts(t *testing.T) {
	m := newExtMap()
	next := Var(0)
	newVar := func() Var {
		v := next
		next++
		return v
	}
	for _, e := range []int{12, 3, 7, 1} {
		m.freeze(e, newVar)
	}
	require.Equal(t, []int{1, 3, 7, 12}, m.sortedExts())
}

func TestUnitTableSetOnce(t *testing.T) {
	var tbl unitTable
	tbl.growTo(8)
	l := IntToLit(2)
	_, ok := tbl.id(l)
	require.False(t, ok)
	tbl.set(l, 3)
	tbl.set(l, 3)
	id, ok := tbl.id(l)
	require.True(t, ok)
	require.Equal(t, ProofID(3), id)
	require.Panics(t, func() { tbl.set(l, 4) })

	_, ok = tbl.id(IntToLit(100)) // Beyond the table: simply not justified
	require.False(t, ok)
}

func TestConflictRecordFirstWins(t *testing.T) {
	var r conflictRecord
	require.False(t, r.ok)
	r.set(5)
	r.set(9)
	require.True(t, r.ok)
	require.Equal(t, ProofID(5), r.id)
}
