package solver

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// A Tracer receives the clause lifecycle events of a session and produces a
// machine-checkable certificate from them. Every method is a pure emission:
// the solver only observes success or failure. Emission failures are
// ordinary errors (typically I/O), not invariant violations; they are
// reported to the caller at finalization.
//
// The Finalize* methods and ReportStatus are only called by the finalization
// protocol, in its fixed order: external units, then internal units, then
// clauses, then the conflict, then the status report.
type Tracer interface {
	// OriginalClause records a clause of the input formula.
	OriginalClause(id ProofID, lits []Lit) error
	// LearnedClause records a clause derived by the search.
	LearnedClause(id ProofID, lits []Lit) error
	// DeletedClause records the logical deletion of a clause.
	DeletedClause(id ProofID, lits []Lit) error
	// FinalizeExternalUnit justifies the truth value of a caller-visible
	// literal, given as a signed external variable.
	FinalizeExternalUnit(id ProofID, extLit int) error
	// FinalizeUnit justifies the truth value of an internal literal that has
	// no external counterpart.
	FinalizeUnit(id ProofID, lit Lit) error
	// FinalizeClause justifies a clause that is still part of the formula at
	// the end of the session. The conflict, when present, is finalized as an
	// empty clause.
	FinalizeClause(id ProofID, lits []Lit) error
	// ReportStatus records the session's verdict. conflictID is 0 when no
	// conflict was derived.
	ReportStatus(status Status, conflictID ProofID) error
}

// A StreamTracer writes the certificate as an FRAT-shaped textual stream:
// 'o' lines for original clauses, 'a' for derived ones, 'd' for deletions,
// 'f' for finalizations and a final 's' status line. Identifiers come first
// on each line, then the literals, then a terminating 0.
type StreamTracer struct {
	w *bufio.Writer
}

// NewStreamTracer returns a tracer writing its certificate on w.
// Flush must be called once the session is finalized.
func NewStreamTracer(w io.Writer) *StreamTracer {
	return &StreamTracer{w: bufio.NewWriter(w)}
}

func (t *StreamTracer) line(prefix byte, id ProofID, lits []Lit) error {
	if _, err := fmt.Fprintf(t.w, "%c %d", prefix, id); err != nil {
		return errors.Wrap(err, "could not write proof line")
	}
	for _, lit := range lits {
		if _, err := fmt.Fprintf(t.w, " %d", lit.Int()); err != nil {
			return errors.Wrap(err, "could not write proof line")
		}
	}
	if _, err := t.w.WriteString(" 0\n"); err != nil {
		return errors.Wrap(err, "could not write proof line")
	}
	return nil
}

// OriginalClause implements Tracer.
func (t *StreamTracer) OriginalClause(id ProofID, lits []Lit) error {
	return t.line('o', id, lits)
}

// LearnedClause implements Tracer.
func (t *StreamTracer) LearnedClause(id ProofID, lits []Lit) error {
	return t.line('a', id, lits)
}

// DeletedClause implements Tracer.
func (t *StreamTracer) DeletedClause(id ProofID, lits []Lit) error {
	return t.line('d', id, lits)
}

// FinalizeExternalUnit implements Tracer.
func (t *StreamTracer) FinalizeExternalUnit(id ProofID, extLit int) error {
	_, err := fmt.Fprintf(t.w, "f %d %d 0\n", id, extLit)
	return errors.Wrap(err, "could not write proof line")
}

// FinalizeUnit implements Tracer.
func (t *StreamTracer) FinalizeUnit(id ProofID, lit Lit) error {
	return t.line('f', id, []Lit{lit})
}

// FinalizeClause implements Tracer.
func (t *StreamTracer) FinalizeClause(id ProofID, lits []Lit) error {
	return t.line('f', id, lits)
}

// ReportStatus implements Tracer.
func (t *StreamTracer) ReportStatus(status Status, conflictID ProofID) error {
	var res string
	switch status {
	case Sat:
		res = "SATISFIABLE"
	case Unsat:
		res = "UNSATISFIABLE"
	case Indet:
		res = "INDETERMINATE"
	default:
		panic("invalid status")
	}
	var err error
	if conflictID != 0 {
		_, err = fmt.Fprintf(t.w, "s %s %d\n", res, conflictID)
	} else {
		_, err = fmt.Fprintf(t.w, "s %s\n", res)
	}
	return errors.Wrap(err, "could not write status report")
}

// Flush writes any buffered certificate data to the underlying writer.
func (t *StreamTracer) Flush() error {
	return errors.Wrap(t.w.Flush(), "could not flush proof stream")
}
