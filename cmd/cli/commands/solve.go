package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/limaJavier/courseload/internal/printer"
	"github.com/limaJavier/courseload/pkg/milp"
	"github.com/limaJavier/courseload/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	solveFile      string
	solveSolver    string
	solveTimeLimit time.Duration
	solveVerbose   bool
	solveFormat    string
	solveOut       string

	validFormats = []string{"table", "json"}
	solvers      = map[string]func() milp.Solver{
		"bnb":  milp.NewBranchAndBoundSolver,
		"cbc":  milp.NewCbcSolver,
		"glpk": milp.NewGlpkSolver,
	}
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Allocate sections and print the report",
	Long: `Build the model of an input file, solve it and print the allocation.

Exit codes:
  10 - an allocation was found and verified against the input
  15 - an allocation was found but failed verification
  20 - no allocation (Infeasible, Unbounded or NotSolved within the time limit)
   1 - invalid input or solver failure

Examples:
  # Solve with the built-in branch and bound
  courseload solve --file testdata/professors.yaml

  # Solve with CBC for at most a minute and write JSON
  courseload solve --file input.json --solver cbc --time-limit 1m --format json --out report.json`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveFile, "file", "f", "", "Path to the input file (.yaml, .yml or .json)")
	solveCmd.Flags().StringVarP(&solveSolver, "solver", "s", "bnb", "Solver to use: "+strings.Join(solverNames(), ", "))
	solveCmd.Flags().DurationVar(&solveTimeLimit, "time-limit", 0, "Wall-clock limit for the solver (e.g. 30s); zero means no limit")
	solveCmd.Flags().BoolVar(&solveVerbose, "verbose", false, "Stream solver progress to the Standard Error")
	solveCmd.Flags().StringVarP(&solveFormat, "format", "o", "table", "Output format: "+strings.Join(validFormats, ", "))
	solveCmd.Flags().StringVar(&solveOut, "out", "", "File to write the report to; if empty, the Standard Output")
	solveCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	solverName := strings.ToLower(solveSolver)
	newSolver, ok := solvers[solverName]
	if !ok {
		return printer.Error(
			"invalid solver",
			fmt.Sprintf("Unknown solver: %s", solveSolver),
			[]string{"Valid solvers: " + strings.Join(solverNames(), ", ")},
		)
	}
	format := strings.ToLower(solveFormat)
	if !slices.Contains(validFormats, format) {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", solveFormat),
			[]string{"Valid formats: " + strings.Join(validFormats, ", ")},
		)
	}

	input, err := loadInput(solveFile)
	if err != nil {
		return err
	}

	allocator := model.NewAllocator(newSolver())
	printer.Step("solving %s with %s\n", solveFile, solverName)
	start := time.Now()
	report, err := allocator.Allocate(input, milp.Options{TimeLimit: solveTimeLimit, Verbose: solveVerbose})
	if err != nil {
		return allocationError(err, solverName)
	}
	log.V(1).Infof("%v solved %v in %v: %v", solverName, solveFile, time.Since(start), report.StatusName)

	var output bytes.Buffer
	if format == "json" {
		if err := printer.FormatJSON(&output, report); err != nil {
			return err
		}
	} else {
		printer.FormatTable(&output, report)
	}
	if err := writeOutput(output.Bytes(), solveOut); err != nil {
		return err
	}

	switch {
	case !report.HasSolution():
		printer.Warning("no allocation: %s\n", report.StatusName)
		exitCode = exitNoSolution
	case !allocator.Verify(report, input):
		printer.Warning("allocation %s failed verification\n", report.ID)
		exitCode = exitVerificationFailed
	default:
		printer.Success("allocation %s verified (%s, satisfaction %d)\n", report.ID, report.StatusName, report.Objective)
		exitCode = exitSolved
	}
	return nil
}

func loadInput(file string) (model.Input, error) {
	input, err := model.InputFromFile(file)
	if err == nil {
		return input, nil
	}

	suggestions := []string{"Check the file against the input format (professors, courses, semesters, preferences, rules)"}
	if errors.Is(err, os.ErrNotExist) {
		suggestions = []string{"Check the path passed to --file"}
	}
	return model.Input{}, printer.ErrorWithContext(
		"cannot load input",
		err.Error(),
		map[string]string{"File": file},
		suggestions,
	)
}

func allocationError(err error, solverName string) error {
	var missing *model.MissingPreferenceError
	switch {
	case errors.As(err, &missing):
		return printer.ErrorWithContext("incomplete preferences", err.Error(),
			map[string]string{"Professor": string(missing.Agent)},
			[]string{"Add a utility for every semester and course of each professor"})
	case errors.Is(err, model.ErrConfiguration):
		return printer.Error("invalid configuration", err.Error(), nil)
	case errors.Is(err, model.ErrNumericIntegrity):
		return printer.ErrorWithContext("solver returned a non-integral allocation", err.Error(),
			map[string]string{"Solver": solverName},
			[]string{"Try another solver with --solver"})
	default:
		return printer.ErrorWithContext("solver failure", err.Error(),
			map[string]string{"Solver": solverName, "Config": milp.ConfigPath},
			[]string{"Install the solver executable or set its path in the config", "Use the built-in solver with --solver bnb"})
	}
}

func writeOutput(content []byte, out string) error {
	if out == "" {
		_, err := os.Stdout.Write(content)
		return err
	}
	if err := os.WriteFile(out, content, 0666); err != nil {
		return printer.ErrorWithContext("cannot write output", err.Error(), map[string]string{"File": out}, nil)
	}
	return nil
}

func solverNames() []string {
	names := lo.Keys(solvers)
	slices.Sort(names)
	return names
}
