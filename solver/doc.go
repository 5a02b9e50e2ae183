/*
Package solver gives access to an incremental SAT solver whose verdicts can be
certified: along with solving, it produces a proof stream that an independent
checker can replay to confirm the result without trusting the solver itself.
Its input can be either a DIMACS CNF file or a solver.Problem object,
containing the set of clauses to be solved.

# Describing a problem

A problem can be described in several ways:

1. parse a DIMACS stream (io.Reader). If the io.Reader produces the following content:

	p cnf 6 7
	1 2 3 0
	4 5 6 0
	-1 -4 0
	-2 -5 0
	-3 -6 0
	-1 -3 0
	-4 -6 0

the programmer can create the Problem by doing:

	pb, err := solver.ParseCNF(f)

2. create the equivalent list of list of literals. The problem above can be created programatically this way:

	clauses := [][]int{
		{1, 2, 3},
		{4, 5, 6},
		{-1, -4},
		{-2, -5},
		{-3, -6},
		{-1, -3},
		{-4, -6},
	}
	pb := solver.ParseSlice(clauses)

# Solving a problem

To solve a problem, one simply creates a solver with said problem.
The Solve() method then solves the problem and returns the corresponding status: Sat or Unsat.

	s := solver.New(pb)
	status := s.Solve()

If the status was Sat, the programmer can ask for a model, i.e an assignment that makes all the clauses of the problem true:

	m := s.Model()

# Certified sessions

A Session wraps a solver for certified, incremental use. It translates between
the caller's variable numbering and the solver's, records every clause
addition, derivation and deletion on a Tracer, and closes the certificate when
asked for a verdict:

	tracer := solver.NewStreamTracer(w)
	sess := solver.NewSession(pb, solver.Options{Tracer: tracer})
	status := sess.Solve()
	err := sess.Finalize(status)

Clauses can be added between calls to Solve, using the caller's own variable
numbering:

	sess.AddClause([]int{1, -3})

Finalization walks the session's state and justifies everything still part of
the formula, so that the resulting stream is checkable on its own. When only
the verdict matters, that walk can be elided with the CertifyStatusOnly mode,
trading checkability for speed.
*/
package solver
