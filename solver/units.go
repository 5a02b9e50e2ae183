package solver

import "fmt"

// The unit table records, for each internal literal, the proof identifier of
// the unit clause (if any) that fixed it at the root decision level. Entries
// are set once and never reset within a session; setting a different
// identifier for an already-justified literal indicates broken bookkeeping
// in the search and is fatal.
type unitTable struct {
	ids []ProofID // Indexed by Lit; 0 means no justification.
}

// growTo makes room for nbLits literals.
func (t *unitTable) growTo(nbLits int) {
	for len(t.ids) < nbLits {
		t.ids = append(t.ids, 0)
	}
}

// set records id as the justification for lit.
func (t *unitTable) set(l Lit, id ProofID) {
	if cur := t.ids[l]; cur != 0 && cur != id {
		panic(fmt.Sprintf("conflicting justifications %d and %d for literal %d", cur, id, l.Int()))
	}
	t.ids[l] = id
}

// id returns the justification recorded for lit, if any.
func (t *unitTable) id(l Lit) (ProofID, bool) {
	if int(l) >= len(t.ids) || t.ids[l] == 0 {
		return 0, false
	}
	return t.ids[l], true
}

// A conflictRecord holds the identifier of the empty clause derived when the
// formula was refuted at the root level. It is only present for genuine
// refutations, never for conflicts that depend on assumptions.
type conflictRecord struct {
	id ProofID
	ok bool
}

func (r *conflictRecord) set(id ProofID) {
	if r.ok {
		return
	}
	r.id = id
	r.ok = true
}
