package solver

import "sort"

type watcher struct {
	other  Lit // Another lit from the clause
	clause *Clause
}

// A watcherList is a structure used to propagate unit literals efficiently.
// Clause storage itself lives in the clause database; the watcher list only
// holds, per literal, the clauses that must be inspected when the literal's
// negation is falsified.
type watcherList struct {
	nbMax     int         // Max # of learned clauses at current moment
	idxReduce int         // # of calls to reduce + 1
	wlistBin  [][]watcher // For each literal, a list of binary clauses where its negation appears
	wlist     [][]*Clause // For each literal, a list of longer clauses where its negation appears at position 0 or 1
}

// initWatcherList makes a new watcherList for the solver.
func (s *Solver) initWatcherList() {
	s.wl = watcherList{
		nbMax:     initNbMaxClauses,
		idxReduce: 1,
		wlistBin:  make([][]watcher, s.nbVars*2),
		wlist:     make([][]*Clause, s.nbVars*2),
	}
}

// bumpNbMax increases the max nb of clauses used.
// It is typically called after a restart.
func (s *Solver) bumpNbMax() {
	s.wl.nbMax += incrNbMaxClauses
}

// postponeNbMax increases the max nb of clauses used.
// It is typically called when too many good clauses were learned and a cleaning was expected.
func (s *Solver) postponeNbMax() {
	s.wl.nbMax += incrPostponeNbMax
}

// learnedSorter sorts live learned clauses so that the clauses least worth
// keeping (high LBD, low activity) come first.
type learnedSorter []*Clause

func (ls learnedSorter) Len() int { return len(ls) }

func (ls learnedSorter) Less(i, j int) bool {
	lbdI := ls[i].lbd()
	lbdJ := ls[j].lbd()
	// Sort by lbd, break ties by activity
	return lbdI > lbdJ || (lbdI == lbdJ && ls[i].activity < ls[j].activity)
}

func (ls learnedSorter) Swap(i, j int) {
	ls[i], ls[j] = ls[j], ls[i]
}

// Watches the provided clause. The clause must contain at least 2 literals.
func (s *Solver) watchClause(c *Clause) {
	if c.Len() == 2 {
		first := c.First()
		second := c.Second()
		neg0 := first.Negation()
		neg1 := second.Negation()
		s.wl.wlistBin[neg0] = append(s.wl.wlistBin[neg0], watcher{clause: c, other: second})
		s.wl.wlistBin[neg1] = append(s.wl.wlistBin[neg1], watcher{clause: c, other: first})
	} else {
		for i := 0; i < 2; i++ {
			lit := c.Get(i)
			neg := lit.Negation()
			s.wl.wlist[neg] = append(s.wl.wlist[neg], c)
		}
	}
}

// unwatch the given clause.
// NOTE: binary clauses are never unwatched: the binary watch lists reference
// them directly, which is why the database retains garbage binaries for the
// whole session.
func (s *Solver) unwatchClause(c *Clause) {
	for i := 0; i < 2; i++ {
		neg := c.Get(i).Negation()
		j := 0
		length := len(s.wl.wlist[neg])
		// We're looking for the index of the clause.
		// This will panic if c is not in wlist[neg], but this shouldn't happen.
		for s.wl.wlist[neg][j] != c {
			j++
		}
		s.wl.wlist[neg][j] = s.wl.wlist[neg][length-1]
		s.wl.wlist[neg] = s.wl.wlist[neg][:length-1]
	}
}

// reduceLearned removes a few learned clauses that are deemed useless.
// Removal is logical: clauses are marked garbage in the database, their
// deletion is traced, and storage is then reclaimed under the database's
// retention rule.
func (s *Solver) reduceLearned() {
	learned := s.db.learned
	if len(learned) == 0 {
		return
	}
	sort.Sort(learnedSorter(learned))
	length := len(learned) / 2
	if learned[length].lbd() <= 3 { // Lots of good clauses, postpone reduction
		s.postponeNbMax()
	}
	for i := 0; i < length; i++ {
		c := learned[i]
		if c.Len() <= 2 || c.lbd() <= 2 || c.isLocked() || c.Garbage() {
			continue
		}
		s.Stats.NbDeleted++
		s.db.markGarbage(c.id)
		s.emitDeleted(c.id, c.lits)
		s.unwatchClause(c)
	}
	s.db.reclaim()
}

// addLearned adds the learned clause to the database, traces it and watches it.
func (s *Solver) addLearned(c *Clause) {
	id := s.db.add(c)
	s.emitLearned(id, c.lits)
	s.watchClause(c)
	s.clauseBumpActivity(c)
}

// If l is negative, -lvl is returned. Else, lvl is returned.
func lvlToSignedLvl(l Lit, lvl decLevel) decLevel {
	if l.IsPositive() {
		return lvl
	}
	return -lvl
}

// Removes the first occurrence of c from lst.
// The element *must* be present into lst.
func removeFrom(lst []*Clause, c *Clause) []*Clause {
	i := 0
	for lst[i] != c {
		i++
	}
	last := len(lst) - 1
	lst[i] = lst[last]
	return lst[:last]
}

// propagate propagates all trail literals from index ptr on, at the given
// decision level, and returns a conflict clause, or nil if no conflict arose.
func (s *Solver) propagate(ptr int, lvl decLevel) *Clause {
	for ptr < len(s.trail) {
		lit := s.trail[ptr]
		for _, w := range s.wl.wlistBin[lit] {
			if w.clause.Garbage() { // Logically deleted binary: ignore it
				continue
			}
			v2 := w.other.Var()
			if assign := s.model[v2]; assign == 0 { // Other was unbounded: propagate
				s.reason[v2] = w.clause
				w.clause.lock()
				s.model[v2] = lvlToSignedLvl(w.other, lvl)
				s.trail = append(s.trail, w.other)
			} else if (assign > 0) != w.other.IsPositive() { // Conflict here
				return w.clause
			}
		}
		for _, c := range s.wl.wlist[lit] {
			res, unit := s.simplifyClause(c)
			switch res {
			case Unsat: // A conflict was met in current clause
				return c
			case Unit:
				v := unit.Var()
				s.reason[v] = c
				c.lock()
				s.model[v] = lvlToSignedLvl(unit, lvl)
				s.trail = append(s.trail, unit)
			}
		}
		ptr++
	}
	// No unsat clause was met
	return nil
}

// Unifies the given literal and returns a conflict clause, or nil if no conflict arose.
func (s *Solver) unifyLiteral(lit Lit, lvl decLevel) *Clause {
	s.model[lit.Var()] = lvlToSignedLvl(lit, lvl)
	ptr := len(s.trail)
	s.trail = append(s.trail, lit)
	return s.propagate(ptr, lvl)
}

// simplifyClause simplifies the given clause according to current binding.
// It returns a new status, and a potential unit literal.
func (s *Solver) simplifyClause(clause *Clause) (Status, Lit) {
	var freeIdx int // Index of the first free lit found, if any
	found := false
	len := clause.Len()
	for i := 0; i < len; i++ {
		lit := clause.Get(i)
		if assign := s.model[lit.Var()]; assign == 0 {
			if found {
				// 2 lits are known to be unbounded
				switch freeIdx {
				case 0: // c[0] is not removed, c[1] is
					n1 := &s.wl.wlist[clause.Second().Negation()]
					nf1 := &s.wl.wlist[clause.Get(i).Negation()]
					clause.swap(i, 1)
					*n1 = removeFrom(*n1, clause)
					*nf1 = append(*nf1, clause)
				case 1: // c[0] is removed, not c[1]
					n0 := &s.wl.wlist[clause.First().Negation()]
					nf1 := &s.wl.wlist[clause.Get(i).Negation()]
					clause.swap(i, 0)
					*n0 = removeFrom(*n0, clause)
					*nf1 = append(*nf1, clause)
				default: // Both c[0] & c[1] are removed
					n0 := &s.wl.wlist[clause.First().Negation()]
					n1 := &s.wl.wlist[clause.Second().Negation()]
					nf0 := &s.wl.wlist[clause.Get(freeIdx).Negation()]
					nf1 := &s.wl.wlist[clause.Get(i).Negation()]
					clause.swap(freeIdx, 0)
					clause.swap(i, 1)
					*n0 = removeFrom(*n0, clause)
					*n1 = removeFrom(*n1, clause)
					*nf0 = append(*nf0, clause)
					*nf1 = append(*nf1, clause)
				}
				return Many, -1
			}
			freeIdx = i
			found = true
		} else if (assign > 0) == lit.IsPositive() {
			return Sat, -1
		}
	}
	if !found {
		return Unsat, -1
	}
	return Unit, clause.Get(freeIdx)
}
