package solver

import (
	"fmt"

	"github.com/pkg/errors"
)

// Finalize closes the session's certificate with the given verdict, which
// must be Sat, Unsat or Indet (search aborted). It is single-shot: finalizing
// a session twice is a programming error.
//
// Under CertifyFull, every external unit, root-level unit and live clause
// gets a closing justification, then the conflict (if any), then the status
// report; the order matters, since later events may reference identifiers
// established by earlier ones. Under CertifyStatusOnly only the status report
// is emitted and the session is not concluded: the certificate then only
// states the verdict without making it checkable.
//
// The returned error is an emission failure, including any that happened
// earlier during the search. Inconsistencies found while walking the
// session's state are invariant violations and panic instead.
func (sess *Session) Finalize(res Status) error {
	if sess.finalized {
		panic("finalization invoked twice")
	}
	sess.finalized = true
	if res != Sat && res != Unsat && res != Indet {
		panic(fmt.Sprintf("invalid finalization verdict %v", res))
	}
	s := sess.s
	if s.traceErr != nil {
		return s.traceErr
	}
	var conflictID ProofID
	if s.conflict.ok {
		conflictID = s.conflict.id
	}
	if sess.mode == CertifyStatusOnly {
		// The elided protocol never concludes the session, with or
		// without a tracer: only the full walk makes a terminal claim.
		if s.tracer != nil {
			if err := s.tracer.ReportStatus(res, conflictID); err != nil {
				return errors.Wrap(err, "could not report status")
			}
		}
		sess.log.WithField("status", res).Info("session finalized, status only")
		return nil
	}
	if s.tracer == nil {
		sess.conclude(res)
		return nil
	}
	// External units first: every frozen variable justified in the unit
	// table gets certified under its external name.
	for _, e := range sess.ext.sortedExts() {
		ev := sess.ext.vars[e]
		for _, positive := range [2]bool{true, false} {
			lit := ev.v.SignedLit(!positive)
			id, ok := s.units.id(lit)
			if !ok {
				continue
			}
			s.db.resolve(id)
			if _, ok := sess.ext.unitID(e, positive); ok {
				// Already certified externally; the unit table is
				// authoritative and recordUnit checked they agree.
				continue
			}
			extLit := e
			if !positive {
				extLit = -e
			}
			if err := s.tracer.FinalizeExternalUnit(id, extLit); err != nil {
				return errors.Wrap(err, "could not finalize external unit")
			}
			sess.ext.recordUnit(e, positive, id)
		}
	}
	// Then the units whose variable has no external justification.
	for v := 0; v < s.nbVars; v++ {
		e, isExt := sess.ext.externalize(Var(v))
		for _, positive := range [2]bool{true, false} {
			lit := Var(v).SignedLit(!positive)
			id, ok := s.units.id(lit)
			if !ok {
				continue
			}
			s.db.resolve(id)
			if isExt {
				if _, ok := sess.ext.unitID(e, positive); ok {
					continue // Certified in the external walk above
				}
			}
			if err := s.tracer.FinalizeUnit(id, lit); err != nil {
				return errors.Wrap(err, "could not finalize unit")
			}
		}
	}
	// Then the clauses: everything live, plus the garbage binaries retained
	// by the database. Garbage clauses of any other size are logically out
	// of the formula, whether reclaimed already or not.
	var emitErr error
	s.db.forEach(func(c *Clause) bool {
		if c.Garbage() && c.Len() != 2 {
			return true
		}
		if c.id == conflictID {
			return true // The conflict gets its own event below
		}
		if err := s.tracer.FinalizeClause(c.id, c.lits); err != nil {
			emitErr = errors.Wrap(err, "could not finalize clause")
			return false
		}
		return true
	})
	if emitErr != nil {
		return emitErr
	}
	if s.conflict.ok {
		s.db.resolve(conflictID)
		if err := s.tracer.FinalizeClause(conflictID, nil); err != nil {
			return errors.Wrap(err, "could not finalize conflict")
		}
	}
	if err := s.tracer.ReportStatus(res, conflictID); err != nil {
		return errors.Wrap(err, "could not report status")
	}
	sess.log.WithField("status", res).Info("session finalized")
	sess.conclude(res)
	return nil
}

func (sess *Session) conclude(res Status) {
	switch res {
	case Sat:
		sess.concludeSat()
	case Unsat:
		sess.concludeUnsat()
	case Indet:
		// An aborted search concludes nothing: the session could be resumed.
	}
}
