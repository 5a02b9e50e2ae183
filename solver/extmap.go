package solver

import (
	"fmt"
	"sort"
)

// The external mapping relates the caller-visible variable numbering to the
// solver's internal one across the incremental calls of a session. The
// mapping is partial and injective: an external variable obtains an internal
// counterpart the first time it is frozen, and keeps it for the whole
// session. Each mapped variable also carries one unit-justification slot per
// polarity, holding the proof identifier under which the corresponding
// external literal was certified, or 0 if it was not certified yet.

// extVar is the session state of one frozen external variable.
type extVar struct {
	v     Var
	units [2]ProofID // Justification per polarity; see polIdx.
}

// polIdx returns the units slot for a polarity: 0 for positive, 1 for negative.
func polIdx(positive bool) int {
	if positive {
		return 0
	}
	return 1
}

type extMap struct {
	vars map[int]*extVar
}

func newExtMap() *extMap {
	return &extMap{vars: make(map[int]*extVar)}
}

// lookup returns the internal variable ext is frozen as, if any.
func (m *extMap) lookup(ext int) (Var, bool) {
	ev, ok := m.vars[ext]
	if !ok {
		return 0, false
	}
	return ev.v, true
}

// freeze maps ext to an internal variable, calling newVar to allocate one on
// first use. The mapping is stable for the session.
func (m *extMap) freeze(ext int, newVar func() Var) Var {
	if ext <= 0 {
		panic(fmt.Sprintf("invalid external variable %d", ext))
	}
	if ev, ok := m.vars[ext]; ok {
		return ev.v
	}
	v := newVar()
	m.vars[ext] = &extVar{v: v}
	return v
}

// externalize returns the external variable frozen as v, if any.
// It is linear in the number of frozen variables; it only runs during
// finalization, never on the search's hot path.
func (m *extMap) externalize(v Var) (int, bool) {
	for ext, ev := range m.vars {
		if ev.v == v {
			return ext, true
		}
	}
	return 0, false
}

// recordUnit stores the proof identifier justifying the given external
// literal. Recording the same identifier twice is a no-op; recording a
// different identifier for an already-justified polarity means the search
// derived the same external unit twice with diverging justifications, which
// is fatal.
func (m *extMap) recordUnit(ext int, positive bool, id ProofID) {
	ev, ok := m.vars[ext]
	if !ok {
		panic(fmt.Sprintf("unit recorded for unfrozen external variable %d", ext))
	}
	slot := &ev.units[polIdx(positive)]
	if *slot != 0 && *slot != id {
		panic(fmt.Sprintf("conflicting justifications %d and %d for external variable %d", *slot, id, ext))
	}
	*slot = id
}

// unitID returns the proof identifier justifying the given external literal,
// if one was recorded. Returning false is a normal condition: the variable's
// root truth value simply was not certified externally yet.
func (m *extMap) unitID(ext int, positive bool) (ProofID, bool) {
	ev, ok := m.vars[ext]
	if !ok || ev.units[polIdx(positive)] == 0 {
		return 0, false
	}
	return ev.units[polIdx(positive)], true
}

// sortedExts returns the frozen external variables in increasing order, so
// that walks over the mapping yield deterministic certificates.
func (m *extMap) sortedExts() []int {
	exts := make([]int, 0, len(m.vars))
	for ext := range m.vars {
		exts = append(exts, ext)
	}
	sort.Ints(exts)
	return exts
}
