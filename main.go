package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/satlab/certisat/solver"
)

var (
	verbose    bool
	proofPath  string
	statusOnly bool
)

var rootCmd = &cobra.Command{
	Use:   "certisat file.cnf",
	Short: "certisat is a certifying SAT solver",
	Long: `certisat solves a problem given in the DIMACS CNF format and, on demand,
writes a proof certificate that an independent checker can replay to confirm
the verdict without trusting the solver.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return solve(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "display progress information during solving")
	rootCmd.Flags().StringVarP(&proofPath, "proof", "p", "", "write a proof certificate to the given file")
	rootCmd.Flags().BoolVar(&statusOnly, "status-only", false, "elide the finalization walk: the certificate only states the verdict")
}

func solve(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()
	pb, err := solver.ParseCNF(f)
	if err != nil {
		return fmt.Errorf("could not parse DIMACS file %q: %v", path, err)
	}
	fmt.Printf("c solving %s\n", path)
	logger := log.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	opts := solver.Options{
		Logger:  logger,
		Verbose: verbose,
	}
	if statusOnly {
		opts.Mode = solver.CertifyStatusOnly
	}
	var tracer *solver.StreamTracer
	if proofPath != "" {
		proofFile, err := os.Create(proofPath)
		if err != nil {
			return fmt.Errorf("could not create proof file %q: %v", proofPath, err)
		}
		defer proofFile.Close()
		tracer = solver.NewStreamTracer(proofFile)
		opts.Tracer = tracer
	}
	sess := solver.NewSession(pb, opts)
	status := sess.Solve()
	if verbose {
		stats := sess.Stats()
		fmt.Printf("c nb conflicts: %d\nc nb restarts: %d\nc nb decisions: %d\n", stats.NbConflicts, stats.NbRestarts, stats.NbDecisions)
		fmt.Printf("c nb unit learned: %d\nc nb binary learned: %d\nc nb learned: %d\n", stats.NbUnitLearned, stats.NbBinaryLearned, stats.NbLearned)
		fmt.Printf("c nb clauses deleted: %d\n", stats.NbDeleted)
	}
	if err := sess.Finalize(status); err != nil {
		return fmt.Errorf("could not finalize certificate: %v", err)
	}
	if tracer != nil {
		if err := tracer.Flush(); err != nil {
			return fmt.Errorf("could not write certificate: %v", err)
		}
	}
	sess.OutputModel(os.Stdout)
	return nil
}

func main() {
	debug.SetGCPercent(300)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
