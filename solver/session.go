package solver

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// CertMode selects how much of the certification protocol a session runs at
// finalization.
type CertMode byte

const (
	// CertifyFull runs the whole finalization walk: every live clause, root
	// unit and external unit gets a closing justification before the status
	// report. The resulting certificate is independently checkable.
	CertifyFull = CertMode(iota)
	// CertifyStatusOnly elides the finalization walk and only reports the
	// status. This is much cheaper on big sessions, but the certificate is
	// not self-certifying anymore: a checker has to trust the reported
	// verdict. It must be an explicit choice, never a silent default.
	CertifyStatusOnly
)

// Options configures a session.
type Options struct {
	Mode    CertMode    // How much certification work finalization performs
	Tracer  Tracer      // Receiver for the certificate; nil disables tracing
	Logger  *log.Logger // Destination for session lifecycle logs; nil discards them
	Verbose bool        // Makes the underlying solver display progress stats
}

// A Session wraps a solver for incremental, certified use. It owns the
// mapping between the caller's variable numbering and the solver's internal
// one, and runs the finalization protocol when the caller is done.
type Session struct {
	s         *Solver
	ext       *extMap
	mode      CertMode
	log       *log.Logger
	finalized bool
	concluded bool
	verdict   Status
}

// NewSession makes a session solving the given problem.
// If a tracer is configured, the problem's clauses are recorded on it
// immediately, together with whatever the solver already derived from them at
// the root level.
func NewSession(pb *Problem, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}
	s := New(pb)
	s.Verbose = opts.Verbose
	sess := &Session{
		s:    s,
		ext:  newExtMap(),
		mode: opts.Mode,
		log:  logger,
	}
	if opts.Tracer != nil {
		s.SetTracer(opts.Tracer)
		s.db.forEach(func(c *Clause) bool {
			if c.Learned() {
				s.emitLearned(c.id, c.lits)
			} else {
				s.emitOriginal(c.id, c.lits)
			}
			return true
		})
	}
	sess.log.WithFields(log.Fields{
		"vars":    s.nbVars,
		"clauses": s.db.nbOriginal,
	}).Info("session opened")
	return sess
}

// Freeze maps the external variable ext to an internal one, allocating it on
// first use, and returns the internal variable. The mapping is stable for the
// whole session.
func (sess *Session) Freeze(ext int) Var {
	return sess.ext.freeze(ext, func() Var {
		sess.s.growTo(sess.s.nbVars + 1)
		return Var(sess.s.nbVars - 1)
	})
}

// lits translates a clause over external variables into internal literals,
// freezing the variables it mentions.
func (sess *Session) lits(extLits []int) []Lit {
	lits := make([]Lit, len(extLits))
	for i, e := range extLits {
		positive := e > 0
		if !positive {
			e = -e
		}
		v := sess.Freeze(e)
		lits[i] = v.SignedLit(!positive)
	}
	return lits
}

// AddClause adds a clause over external variables to the session's formula.
// The clause is recorded in the certificate before anything is derived from
// it. The returned status is Unsat if the clause refutes the formula at the
// root level, Indet otherwise.
// Adding a clause to a concluded session is a programming error.
func (sess *Session) AddClause(extLits []int) Status {
	if sess.concluded {
		panic("clause added after session conclusion")
	}
	s := sess.s
	lits := sess.lits(extLits)
	s.cleanupBindings(1)
	if s.status != Unsat {
		s.status = Indet
	}
	c := NewClause(lits)
	id := s.db.add(c)
	s.emitOriginal(id, c.lits)
	if len(lits) == 0 {
		s.conflict.set(id)
		s.status = Unsat
		return s.status
	}
	// Look at the clause under the root-level bindings.
	free := make([]int, 0, 2)
	for i := 0; i < c.Len(); i++ {
		switch s.litStatus(c.Get(i)) {
		case Sat: // Already satisfied at the root: store it, nothing to watch
			return s.status
		case Indet:
			if len(free) < 2 {
				free = append(free, i)
			}
		}
	}
	switch len(free) {
	case 0: // All lits false at the root
		return s.setUnsat()
	case 1:
		unit := c.Get(free[0])
		if c.Len() == 1 {
			if _, ok := s.units.id(unit); !ok {
				s.units.set(unit, id)
			}
		} else {
			s.addLearnedUnit(unit)
		}
		s.model[unit.Var()] = lvlToSignedLvl(unit, 1)
		if confl := s.unifyLiteral(unit, 1); confl != nil {
			return s.setUnsat()
		}
		s.rebuildOrderHeap()
	default:
		c.swap(0, free[0]) // free[0] < free[1], so this cannot move the other free lit
		c.swap(1, free[1])
		s.watchClause(c)
	}
	return s.status
}

// Assume adds external unit clauses to the session. They become part of the
// formula for good; see Solver.Assume.
func (sess *Session) Assume(extLits []int) Status {
	if sess.concluded {
		panic("clause added after session conclusion")
	}
	return sess.s.Assume(sess.lits(extLits))
}

// Solve runs the search and returns its verdict.
func (sess *Session) Solve() Status {
	res := sess.s.Solve()
	sess.log.WithFields(log.Fields{
		"status":    res,
		"conflicts": sess.s.Stats.NbConflicts,
		"restarts":  sess.s.Stats.NbRestarts,
		"learned":   sess.s.Stats.NbLearned,
	}).Info("search finished")
	return res
}

// Model returns the truth value of every frozen external variable, under the
// last model found. It panics if no model was found.
func (sess *Session) Model() map[int]bool {
	internal := sess.s.Model()
	res := make(map[int]bool, len(sess.ext.vars))
	for e, ev := range sess.ext.vars {
		res[e] = internal[ev.v]
	}
	return res
}

// OutputModel outputs the solver's verdict and model on w.
func (sess *Session) OutputModel(w io.Writer) {
	sess.s.OutputModel(w)
}

// Stats returns statistics about the search so far.
func (sess *Session) Stats() Stats {
	return sess.s.Stats
}

// concludeSat signals that the session is concluded by a model. Terminal: no
// further derivation can be certified once issued.
func (sess *Session) concludeSat() {
	if sess.concluded {
		panic("session concluded twice")
	}
	sess.concluded = true
	sess.verdict = Sat
	sess.log.Info("session concluded by model")
}

// concludeUnsat signals that the session is concluded by a refutation.
func (sess *Session) concludeUnsat() {
	if sess.concluded {
		panic("session concluded twice")
	}
	sess.concluded = true
	sess.verdict = Unsat
	sess.log.Info("session concluded by refutation")
}
