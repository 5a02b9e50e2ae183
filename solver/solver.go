package solver

import (
	"fmt"
	"io"
	"time"
)

const (
	initNbMaxClauses  = 2000  // Maximum # of learned clauses, at first.
	incrNbMaxClauses  = 300   // By how much # of learned clauses is incremented at each conflict.
	incrPostponeNbMax = 1000  // By how much # of learned is increased when lots of good clauses are currently learned.
	clauseDecay       = 0.999 // By how much clauses bumping decays over time.
	defaultVarDecay   = 0.8   // On each var decay, how much the varInc should be decayed at startup
)

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbRestarts      int
	NbConflicts     int
	NbDecisions     int
	NbUnitLearned   int // How many unit clauses were learned
	NbBinaryLearned int // How many binary clauses were learned
	NbLearned       int // How many clauses were learned
	NbDeleted       int // How many clauses were deleted
}

// The level a decision was made.
// A negative value means "negative assignement at that level".
// A positive value means "positive assignment at that level".
type decLevel int

// A Model is a binding for several variables.
// It can be totally bound (i.e all vars have a true or false binding)
// or only partially (i.e some vars have no binding yet or their binding has no impact).
// Each var, in order, is associated with a binding. Binding are implemented as
// decision levels:
// - a 0 value means the variable is free,
// - a positive value means the variable was set to true at the given decLevel,
// - a negative value means the variable was set to false at the given decLevel.
type Model []decLevel

func (m Model) String() string {
	bound := make(map[int]decLevel)
	for i := range m {
		if m[i] != 0 {
			bound[i+1] = m[i]
		}
	}
	return fmt.Sprintf("%v", bound)
}

// A Solver solves a given problem. It is the main data structure.
type Solver struct {
	Verbose   bool // Indicates whether the solver should display information during solving or not. False by default
	nbVars    int
	status    Status
	db        *clauseDB
	wl        watcherList
	trail     []Lit     // Current assignment stack
	model     Model     // 0 means unbound, other value is a binding
	lastModel Model     // Placeholder for last model found, useful for incremental solving
	activity  []float64 // How often each var is involved in conflicts
	polarity  []bool    // Preferred sign for each var
	// For each var, clause considered when it was unified
	// If the var is not bound yet, or if it was bound by a decision, value is nil.
	reason          []*Clause
	varQueue        queue
	varInc          float64 // On each var bump, how big the increment should be
	clauseInc       float32 // On each var bump, how big the increment should be
	lbdStats        lbdStats
	Stats           Stats   // Statistics about the solving process.
	localNbRestarts int     // How many restarts since Solve() was called?
	varDecay        float64 // On each var decay, how much the varInc should be decayed
	trailBuf        []int   // A buffer while cleaning bindings
	litsBuf         []Lit   // A buffer for conflict analysis
	alloc           allocator
	units           unitTable      // Justifications for literals fixed at the root level
	conflict        conflictRecord // Identifier of the empty clause, if one was derived
	tracer          Tracer         // nil when the session is not certified
	traceErr        error          // First emission failure, sticky
}

// New makes a solver, given a number of variables and a set of clauses.
// nbVars should be consistent with the content of clauses, i.e.
// the biggest variable in clauses should be >= nbVars.
func New(problem *Problem) *Solver {
	nbVars := problem.NbVars
	s := &Solver{
		nbVars:    nbVars,
		status:    Indet,
		db:        newClauseDB(len(problem.Clauses) + len(problem.Units) + 1),
		trail:     make([]Lit, 0, nbVars),
		model:     make(Model, nbVars),
		activity:  make([]float64, nbVars),
		polarity:  make([]bool, nbVars),
		reason:    make([]*Clause, nbVars),
		varInc:    1.0,
		clauseInc: 1.0,
		varDecay:  defaultVarDecay,
		trailBuf:  make([]int, nbVars),
	}
	s.initWatcherList()
	s.units.growTo(nbVars * 2)
	s.varQueue = newQueue(s.activity)
	if problem.HasEmpty {
		id := s.db.add(NewClause(nil))
		s.conflict.set(id)
		s.status = Unsat
	}
	for _, c := range problem.Clauses {
		s.db.add(c)
		s.watchClause(c)
	}
	for _, lit := range problem.Units {
		id := s.db.add(NewClause(s.alloc.newLits(lit)))
		if _, ok := s.units.id(lit); !ok { // Restated units keep their first justification
			s.units.set(lit, id)
		}
		if s.litStatus(lit) == Unsat { // The opposite unit was already stated
			s.deriveEmptyClause()
			continue
		}
		if s.model[lit.Var()] == 0 {
			s.model[lit.Var()] = lvlToSignedLvl(lit, 1)
			s.trail = append(s.trail, lit)
		}
	}
	if s.status != Unsat {
		if confl := s.propagate(0, 1); confl != nil {
			s.setUnsat()
		}
	}
	return s
}

// SetTracer installs t as the receiver of the session's clause lifecycle
// events. Clauses already in the database are not replayed; the session layer
// takes care of that when it attaches to a freshly created solver.
func (s *Solver) SetTracer(t Tracer) {
	s.tracer = t
}

// TraceError returns the first certificate emission failure, if any.
// Once an emission failed, further events are silently dropped: the
// certificate is void anyway, but the solver's own verdict remains valid.
func (s *Solver) TraceError() error {
	return s.traceErr
}

func (s *Solver) emitOriginal(id ProofID, lits []Lit) {
	if s.tracer == nil || s.traceErr != nil {
		return
	}
	if err := s.tracer.OriginalClause(id, lits); err != nil {
		s.traceErr = err
	}
}

func (s *Solver) emitLearned(id ProofID, lits []Lit) {
	if s.tracer == nil || s.traceErr != nil {
		return
	}
	if err := s.tracer.LearnedClause(id, lits); err != nil {
		s.traceErr = err
	}
}

func (s *Solver) emitDeleted(id ProofID, lits []Lit) {
	if s.tracer == nil || s.traceErr != nil {
		return
	}
	if err := s.tracer.DeletedClause(id, lits); err != nil {
		s.traceErr = err
	}
}

// addLearnedUnit registers a learned unit clause fixing lit at the root
// level, and returns its identifier. If lit already has a justification, the
// existing identifier is returned: a literal is only certified once.
func (s *Solver) addLearnedUnit(unit Lit) ProofID {
	if id, ok := s.units.id(unit); ok {
		return id
	}
	c := NewLearnedClause(s.alloc.newLits(unit))
	id := s.db.add(c)
	s.emitLearned(id, c.lits)
	s.units.set(unit, id)
	return id
}

// deriveEmptyClause adds a learned empty clause to the database and records
// it as the session's conflict. The status becomes Unsat.
func (s *Solver) deriveEmptyClause() {
	if !s.conflict.ok {
		c := NewLearnedClause(nil)
		id := s.db.add(c)
		s.emitLearned(id, nil)
		s.conflict.set(id)
	}
	s.status = Unsat
}

// Sets the status to unsat and records the refutation.
func (s *Solver) setUnsat() Status {
	s.deriveEmptyClause()
	return Unsat
}

// OutputModel outputs the model for the problem on w.
func (s *Solver) OutputModel(w io.Writer) {
	if s.status == Sat || s.lastModel != nil {
		fmt.Fprintf(w, "s SATISFIABLE\nv ")
		model := s.model
		if s.lastModel != nil {
			model = s.lastModel
		}
		for i, val := range model {
			if val < 0 {
				fmt.Fprintf(w, "%d ", -i-1)
			} else {
				fmt.Fprintf(w, "%d ", i+1)
			}
		}
		fmt.Fprintf(w, "\n")
	} else if s.status == Unsat {
		fmt.Fprintf(w, "s UNSATISFIABLE\n")
	} else {
		fmt.Fprintf(w, "s INDETERMINATE\n")
	}
}

// litStatus returns whether the literal is made true (Sat) or false (Unsat) by the
// current bindings, or if it is unbounded (Indet).
func (s *Solver) litStatus(l Lit) Status {
	assign := s.model[l.Var()]
	if assign == 0 {
		return Indet
	}
	if assign > 0 == l.IsPositive() {
		return Sat
	}
	return Unsat
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.varDecay
}

func (s *Solver) varBumpActivity(v Var) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 { // Rescaling is needed to avoid overflowing
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.varQueue.contains(int(v)) {
		s.varQueue.decrease(int(v))
	}
}

// Decays each clause's activity
func (s *Solver) clauseDecayActivity() {
	s.clauseInc *= 1 / clauseDecay
}

// Bumps the given clause's activity.
func (s *Solver) clauseBumpActivity(c *Clause) {
	if c.Learned() {
		c.activity += s.clauseInc
		if c.activity > 1e30 { // Rescale to avoid overflow
			for _, c2 := range s.db.learned {
				c2.activity *= 1e-30
			}
			s.clauseInc *= 1e-30
		}
	}
}

// Chooses an unbound literal to be tested, or -1
// if all the variables are already bound.
func (s *Solver) chooseLit() Lit {
	v := Var(-1)
	for v == -1 && !s.varQueue.empty() {
		if v2 := Var(s.varQueue.removeMin()); s.model[v2] == 0 { // Ignore already bound vars
			v = v2
		}
	}
	if v == -1 {
		return Lit(-1)
	}
	s.Stats.NbDecisions++
	return v.SignedLit(!s.polarity[v])
}

func abs(val decLevel) decLevel {
	if val < 0 {
		return -val
	}
	return val
}

// Reinitializes bindings (both model & reason) for all variables bound at a decLevel > lvl.
func (s *Solver) cleanupBindings(lvl decLevel) {
	i := 0
	for i < len(s.trail) && abs(s.model[s.trail[i].Var()]) <= lvl {
		i++
	}
	toInsert := s.trailBuf[:0]
	for j := i; j < len(s.trail); j++ {
		lit2 := s.trail[j]
		v := lit2.Var()
		s.model[v] = 0
		if s.reason[v] != nil {
			s.reason[v].unlock()
			s.reason[v] = nil
		}
		s.polarity[v] = lit2.IsPositive()
		if !s.varQueue.contains(int(v)) {
			toInsert = append(toInsert, int(v))
			s.varQueue.insert(int(v))
		}
	}
	s.trail = s.trail[:i]
	for i := len(toInsert) - 1; i >= 0; i-- {
		s.varQueue.insert(toInsert[i])
	}
}

// Given the last learnt clause and the levels at which vars were bound,
// Returns the level to bt to and the literal to bind
func backtrackData(c *Clause, model []decLevel) (btLevel decLevel, lit Lit) {
	btLevel = abs(model[c.Get(1).Var()])
	return btLevel, c.Get(0)
}

func (s *Solver) rebuildOrderHeap() {
	ints := make([]int, 0, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		if s.model[v] == 0 {
			ints = append(ints, int(v))
		}
	}
	s.varQueue.build(ints)
}

// propagateAndSearch binds the given lit, propagates it and searches for a solution,
// until it is found or a restart is needed.
func (s *Solver) propagateAndSearch(lit Lit, lvl decLevel) Status {
	for lit != -1 {
		if conflict := s.unifyLiteral(lit, lvl); conflict == nil { // Pick new branch or restart
			if s.lbdStats.mustRestart() {
				s.lbdStats.clear()
				s.cleanupBindings(1)
				return Indet
			}
			if s.Stats.NbConflicts >= s.wl.idxReduce*s.wl.nbMax {
				s.wl.idxReduce = s.Stats.NbConflicts/s.wl.nbMax + 1
				s.reduceLearned()
				s.bumpNbMax()
			}
			lvl++
			lit = s.chooseLit()
		} else { // Deal with conflict
			s.Stats.NbConflicts++
			if s.Stats.NbConflicts%5000 == 0 && s.varDecay < 0.95 {
				s.varDecay += 0.01
			}
			s.lbdStats.addConflict(len(s.trail))
			learnt, unit := s.learnClause(conflict, lvl)
			if learnt == nil { // Unit clause was learned: this lit is known for sure
				if unit == -1 || (abs(s.model[unit.Var()]) == 1 && s.litStatus(unit) == Unsat) { // Top-level conflict
					return s.setUnsat()
				}
				s.Stats.NbUnitLearned++
				s.lbdStats.addLbd(1)
				s.cleanupBindings(1)
				s.addLearnedUnit(unit)
				s.model[unit.Var()] = lvlToSignedLvl(unit, 1)
				if conflict = s.unifyLiteral(unit, 1); conflict != nil { // top-level conflict
					return s.setUnsat()
				}
				s.rebuildOrderHeap()
				lit = s.chooseLit()
				lvl = 2
			} else {
				if learnt.Len() == 2 {
					s.Stats.NbBinaryLearned++
				}
				s.Stats.NbLearned++
				s.lbdStats.addLbd(learnt.lbd())
				s.addLearned(learnt)
				lvl, lit = backtrackData(learnt, s.model)
				s.cleanupBindings(lvl)
				s.reason[lit.Var()] = learnt
				learnt.lock()
			}
		}
	}
	return Sat
}

// Searches until a restart is needed.
func (s *Solver) search() Status {
	s.localNbRestarts++
	lvl := decLevel(2) // Level starts at 2, for implementation reasons : 1 is for top-level bindings; 0 means "no level assigned yet"
	s.status = s.propagateAndSearch(s.chooseLit(), lvl)
	return s.status
}

// Solve solves the problem associated with the solver and returns the appropriate status.
func (s *Solver) Solve() Status {
	if s.status == Unsat {
		return s.status
	}
	s.status = Indet
	s.localNbRestarts = 0
	var end chan struct{}
	if s.Verbose {
		end = make(chan struct{})
		defer close(end)
		go func() { // Function displaying stats during resolution
			fmt.Printf("c ======================================================================================\n")
			fmt.Printf("c | Restarts |  Conflicts  |  Learned  |  Deleted  | Del%% | Reduce |   Units learned   |\n")
			fmt.Printf("c ======================================================================================\n")
			ticker := time.NewTicker(3 * time.Second)
			defer ticker.Stop()
			for { // There might be concurrent access in a few places but this is okay since we are very conservative and don't modify state.
				select {
				case <-ticker.C:
				case <-end:
					return
				}
				if s.status == Indet {
					iter := s.Stats.NbRestarts + 1
					nbConfl := s.Stats.NbConflicts
					nbReduce := s.wl.idxReduce - 1
					nbLearned := len(s.db.learned)
					nbDel := s.Stats.NbDeleted
					pctDel := int(100 * float64(nbDel) / float64(s.Stats.NbLearned))
					nbUnit := s.Stats.NbUnitLearned
					fmt.Printf("c | %8d | %11d | %9d | %9d | %3d%% | %6d | %8d/%8d |\n", iter, nbConfl, nbLearned, nbDel, pctDel, nbReduce, nbUnit, s.nbVars)
				}
			}
		}()
	}
	for s.status == Indet {
		s.search()
		if s.status == Indet {
			s.Stats.NbRestarts++
			s.rebuildOrderHeap()
		}
	}
	if s.status == Sat {
		s.lastModel = make(Model, len(s.model))
		copy(s.lastModel, s.model)
	}
	if s.Verbose {
		end <- struct{}{}
		fmt.Printf("c ======================================================================================\n")
	}
	return s.status
}

// Assume adds unit clauses to the solver and returns the status after unit
// propagation. This is useful when calling the solver several times, to keep
// it "hot". The units become part of the formula and are certified like any
// other original clause: they cannot be retracted later.
func (s *Solver) Assume(lits []Lit) Status {
	s.cleanupBindings(0)
	s.trail = s.trail[:0]
	for _, lit := range lits {
		if _, ok := s.units.id(lit); !ok {
			c := NewClause(s.alloc.newLits(lit))
			id := s.db.add(c)
			s.emitOriginal(id, c.lits)
			s.units.set(lit, id)
		}
	}
	s.status = Indet
	// Reinstall every root-level unit, the preexisting ones included.
	for l := 0; l < s.nbVars*2; l++ {
		lit := Lit(l)
		if _, ok := s.units.id(lit); !ok {
			continue
		}
		if s.litStatus(lit) == Unsat {
			return s.setUnsat()
		}
		if s.model[lit.Var()] == 0 {
			s.model[lit.Var()] = lvlToSignedLvl(lit, 1)
			s.trail = append(s.trail, lit)
		}
	}
	if confl := s.propagate(0, 1); confl != nil {
		return s.setUnsat()
	}
	s.rebuildOrderHeap()
	return s.status
}

// growTo extends the solver's structures so that they can hold nbVars
// variables. It does nothing if the solver is already big enough.
func (s *Solver) growTo(nbVars int) {
	if nbVars <= s.nbVars {
		return
	}
	for v := s.nbVars; v < nbVars; v++ {
		s.model = append(s.model, 0)
		s.activity = append(s.activity, 0)
		s.polarity = append(s.polarity, false)
		s.reason = append(s.reason, nil)
		s.trailBuf = append(s.trailBuf, 0)
		s.wl.wlistBin = append(s.wl.wlistBin, nil, nil)
		s.wl.wlist = append(s.wl.wlist, nil, nil)
	}
	s.units.growTo(nbVars * 2)
	s.nbVars = nbVars
	// The queue keeps a handle on the activity slice, which may have moved.
	s.varQueue.activity = s.activity
	for v := len(s.model) - 1; v >= 0; v-- {
		if s.model[v] == 0 && !s.varQueue.contains(v) {
			s.varQueue.insert(v)
		}
	}
}

// Model returns a slice that associates, to each variable, its binding.
// If s's status is not Sat, the method will panic.
func (s *Solver) Model() []bool {
	if s.lastModel == nil {
		panic("cannot call Model() from a non-Sat solver")
	}
	res := make([]bool, s.nbVars)
	for i, lvl := range s.lastModel {
		res[i] = lvl > 0
	}
	return res
}
