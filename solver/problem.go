package solver

import (
	"fmt"
	"strings"
)

// A Problem is a list of clauses & a nb of vars.
// Clauses are kept exactly as stated: no unit propagation or simplification
// happens before the solver takes over, so that every clause of the input can
// be recorded in the certificate.
type Problem struct {
	NbVars   int       // Total nb of vars
	Clauses  []*Clause // List of non-empty, non-unit clauses
	Units    []Lit     // List of unit literals found in the problem
	HasEmpty bool      // True iff the problem contains an empty clause
}

// CNF returns a DIMACS CNF representation of the problem.
func (pb *Problem) CNF() string {
	nbClauses := len(pb.Clauses) + len(pb.Units)
	if pb.HasEmpty {
		nbClauses++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "p cnf %d %d\n", pb.NbVars, nbClauses)
	if pb.HasEmpty {
		b.WriteString("0\n")
	}
	for _, unit := range pb.Units {
		fmt.Fprintf(&b, "%d 0\n", unit.Int())
	}
	for _, clause := range pb.Clauses {
		fmt.Fprintf(&b, "%s\n", clause.CNF())
	}
	return b.String()
}
