package solver

import "fmt"

// A ProofID identifies a clause in the proof stream. Identifiers are
// assigned from a monotonically increasing counter and are never reused
// within a session, even after the clause's storage was reclaimed: a stale
// identifier is always detected as unknown instead of silently aliasing
// another clause. 0 is reserved and means "no identifier".
type ProofID int64

// clauseDB owns every clause of a session, original or learned.
//
// A clause goes through up to three states: live, garbage (logically
// deleted, still stored) and reclaimed (storage freed). Garbage clauses of
// size exactly 2 are never reclaimed: the binary watch lists reference them
// directly and cannot be unwatched (see unwatchClause), so their storage
// must outlive their logical deletion. They remain enumerable even though
// they are not part of the formula anymore.
type clauseDB struct {
	nextID     ProofID
	byID       map[ProofID]*Clause
	clauses    []*Clause // All stored clauses, in identifier order.
	learned    []*Clause // Live learned clauses, candidates for reduction.
	nbOriginal int
}

func newClauseDB(capHint int) *clauseDB {
	return &clauseDB{
		byID:    make(map[ProofID]*Clause, capHint),
		clauses: make([]*Clause, 0, capHint*2), // Make room for future learned clauses
	}
}

// add takes ownership of c and assigns it the next identifier.
func (db *clauseDB) add(c *Clause) ProofID {
	if c.id != 0 {
		panic(fmt.Sprintf("clause %d added twice to the database", c.id))
	}
	db.nextID++
	c.id = db.nextID
	db.byID[c.id] = c
	db.clauses = append(db.clauses, c)
	if c.Learned() {
		db.learned = append(db.learned, c)
	} else {
		db.nbOriginal++
	}
	return c.id
}

// get returns the clause stored under id, if any.
func (db *clauseDB) get(id ProofID) (*Clause, bool) {
	c, ok := db.byID[id]
	return c, ok
}

// resolve returns the clause stored under id. An unknown identifier means
// the search bookkeeping is broken: this is fatal, not recoverable.
func (db *clauseDB) resolve(id ProofID) *Clause {
	c, ok := db.byID[id]
	if !ok {
		panic(fmt.Sprintf("dangling clause identifier %d", id))
	}
	return c
}

// markGarbage logically deletes the clause stored under id. It is
// idempotent. The storage is not freed: that is reclaim's job, except for
// binary clauses whose storage is retained for the whole session.
func (db *clauseDB) markGarbage(id ProofID) {
	db.resolve(id).setGarbage()
}

// isGarbage reports whether id refers to a stored clause marked garbage.
// Unknown (including reclaimed) identifiers report false; use get to tell
// a reclaimed clause from a live one.
func (db *clauseDB) isGarbage(id ProofID) bool {
	c, ok := db.byID[id]
	return ok && c.Garbage()
}

// forEach calls fn on every stored clause, in identifier order, until fn
// returns false. Stored means live or garbage-but-not-reclaimed: callers
// that only want the live formula must skip garbage clauses themselves.
// A fresh pass always yields the same set unless the database was mutated
// in between.
func (db *clauseDB) forEach(fn func(c *Clause) bool) {
	for _, c := range db.clauses {
		if !fn(c) {
			return
		}
	}
}

// reclaim frees every garbage clause whose size is not 2 and returns how
// many clauses were freed. It must not run concurrently with an iteration.
func (db *clauseDB) reclaim() int {
	j := 0
	for _, c := range db.clauses {
		if c.Garbage() && c.Len() != 2 {
			delete(db.byID, c.id)
			continue
		}
		db.clauses[j] = c
		j++
	}
	nb := len(db.clauses) - j
	for i := j; i < len(db.clauses); i++ {
		db.clauses[i] = nil
	}
	db.clauses = db.clauses[:j]
	j = 0
	for _, c := range db.learned {
		if c.Garbage() {
			continue
		}
		db.learned[j] = c
		j++
	}
	db.learned = db.learned[:j]
	return nb
}
