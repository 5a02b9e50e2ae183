package solver

// This file deals with an efficient allocator for short-lived literal slices.
// Lots of small clauses are created then (sometimes) destroyed during search,
// so literals are carved out of a preallocated arena to relax the GC's work.
// The arena is owned by the solver: a fresh session gets a fresh arena.

const (
	nbLitsAlloc = 1 << 20 // How many literals are initialized at first?
)

type allocator struct {
	lits    []Lit // A list of lits, that will be sliced to make []Lit
	ptrFree int   // Index of the first free item in lits
}

// newLits returns a slice of lits containing the given literals.
// It is taken from the preinitialized pool if possible,
// or is created from scratch.
func (a *allocator) newLits(lits ...Lit) []Lit {
	if a.ptrFree+len(lits) > len(a.lits) {
		a.lits = make([]Lit, nbLitsAlloc)
		copy(a.lits, lits)
		a.ptrFree = len(lits)
		return a.lits[:len(lits)]
	}
	copy(a.lits[a.ptrFree:], lits)
	a.ptrFree += len(lits)
	return a.lits[a.ptrFree-len(lits) : a.ptrFree]
}
