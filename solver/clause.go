package solver

import "fmt"

// A Clause is a list of Lit, tagged with lifecycle information.
// Clauses are owned exclusively by the session's clause database, which
// assigns each of them a unique, monotonically increasing identifier.
type Clause struct {
	id   ProofID
	lits []Lit
	// lbdValue's bits are as follow:
	// leftmost bit: learned flag.
	// second bit: locked flag (if learned).
	// third bit: garbage flag (logically deleted).
	// last 29 bits: LBD value (if learned).
	lbdValue uint32
	activity float32
}

const (
	learnedMask uint32 = 1 << 31
	lockedMask  uint32 = 1 << 30
	garbageMask uint32 = 1 << 29
	flagMasks   uint32 = learnedMask | lockedMask | garbageMask
)

// NewClause returns a clause whose lits are given as an argument.
func NewClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// NewLearnedClause returns a new clause marked as learned.
func NewLearnedClause(lits []Lit) *Clause {
	return &Clause{lits: lits, lbdValue: learnedMask}
}

// ID returns the proof identifier the clause database assigned to c,
// or 0 if c was not added to a database yet.
func (c *Clause) ID() ProofID {
	return c.id
}

// Learned returns true iff c was a learned clause.
func (c *Clause) Learned() bool {
	return c.lbdValue&learnedMask == learnedMask
}

// Garbage returns true iff c was logically deleted from the formula.
// A garbage clause of size 2 is retained by the database for the rest of
// the session; other garbage clauses can be reclaimed at any moment.
func (c *Clause) Garbage() bool {
	return c.lbdValue&garbageMask == garbageMask
}

func (c *Clause) setGarbage() {
	c.lbdValue = c.lbdValue | garbageMask
}

func (c *Clause) lock() {
	c.lbdValue = c.lbdValue | lockedMask
}

func (c *Clause) unlock() {
	c.lbdValue = c.lbdValue & ^lockedMask
}

func (c *Clause) isLocked() bool {
	return c.lbdValue&(learnedMask|lockedMask) == learnedMask|lockedMask
}

func (c *Clause) lbd() int {
	return int(c.lbdValue & ^flagMasks)
}

func (c *Clause) setLbd(lbd int) {
	c.lbdValue = (c.lbdValue & flagMasks) | uint32(lbd)
}

func (c *Clause) incLbd() {
	c.lbdValue++
}

// Len returns the nb of lits in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// First returns the first lit from the clause.
func (c *Clause) First() Lit {
	return c.lits[0]
}

// Second returns the second lit from the clause.
func (c *Clause) Second() Lit {
	return c.lits[1]
}

// Get returns the ith literal from the clause.
func (c *Clause) Get(i int) Lit {
	return c.lits[i]
}

// Set sets the ith literal of the clause.
func (c *Clause) Set(i int, l Lit) {
	c.lits[i] = l
}

// swap swaps the ith and jth lits from the clause.
func (c *Clause) swap(i, j int) {
	c.lits[i], c.lits[j] = c.lits[j], c.lits[i]
}

// Shrink reduces the length of the clauses, by removing all lits
// starting from position newLen.
func (c *Clause) Shrink(newLen int) {
	c.lits = c.lits[:newLen]
}

// CNF returns a DIMACS CNF representation of the clause.
func (c *Clause) CNF() string {
	res := ""
	for _, lit := range c.lits {
		res += fmt.Sprintf("%d ", lit.Int())
	}
	return fmt.Sprintf("%s0", res)
}
