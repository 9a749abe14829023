package milp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const cbcFallbackPath = "cbc"

type cbcSolver struct{}

// NewCbcSolver returns a solver backed by the COIN-OR CBC executable
func NewCbcSolver() Solver {
	return &cbcSolver{}
}

func (solver *cbcSolver) Solve(model *Model, options Options) (Solution, error) {
	if err := model.Validate(); err != nil {
		return Solution{}, err
	}
	cbcPath, err := getExecutablePath("cbcPath", cbcFallbackPath)
	if err != nil {
		return Solution{}, err
	}

	// CBC is always handed a minimisation; the objective is recomputed on the original model
	inputFile, err := writeTempModel(model.minimizationForm())
	if err != nil {
		return Solution{}, err
	}
	defer os.Remove(inputFile) // Ensure the file is removed after execution

	outputFile, err := reserveTempFile("cbc_solution-*.txt")
	if err != nil {
		return Solution{}, err
	}
	defer os.Remove(outputFile) // Ensure the file is removed after execution

	args := []string{inputFile}
	if options.TimeLimit > 0 {
		args = append(args, "-sec", strconv.FormatFloat(options.TimeLimit.Seconds(), 'f', -1, 64), "-timeMode", "elapsed")
	}
	if !options.Verbose {
		args = append(args, "-log", "0")
	}
	args = append(args, "-solve", "-solution", outputFile)

	_, stderr, err := run(cbcPath, args, options.progress())
	if err != nil {
		return Solution{}, fmt.Errorf("an error occurred during cbc execution: %v : %v", err.Error(), stderr)
	}

	output, err := os.ReadFile(outputFile)
	if err != nil {
		return Solution{}, fmt.Errorf("failed to read output file: %v", err)
	}
	return parseCbcSolution(model, string(output))
}

// parseCbcSolution reads a CBC solution file: a status line followed by one line per non-zero column
// ("index name value reduced-cost", possibly prefixed by "**" when the value violates a bound)
func parseCbcSolution(model *Model, solverOutput string) (Solution, error) {
	lines := strings.Split(strings.TrimSpace(solverOutput), "\n")
	header := strings.TrimSpace(lines[0])
	if header == "" {
		return Solution{}, fmt.Errorf("empty cbc solution file")
	}

	indices := make(map[string]int, len(model.Variables))
	for i, variable := range model.Variables {
		indices[sanitizeName(variable.Name)] = i
	}

	values := make([]float64, len(model.Variables))
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}
		index, ok := indices[fields[1]]
		if !ok {
			continue // Rows are listed as well when every printing option is enabled
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Solution{}, fmt.Errorf("invalid value in cbc output: %v", err)
		}
		values[index] = value
	}

	switch {
	case strings.HasPrefix(header, "Optimal"):
		return solutionFromValues(model, Optimal, values), nil
	case strings.HasPrefix(header, "Infeasible"), strings.HasPrefix(header, "Integer infeasible"):
		return Solution{Status: Infeasible}, nil
	case strings.HasPrefix(header, "Unbounded"):
		return Solution{Status: Unbounded}, nil
	case strings.HasPrefix(header, "Stopped") && !strings.Contains(header, "no integer solution") && strings.Contains(header, "objective value"):
		return solutionFromValues(model, FeasibleUnproven, values), nil
	default:
		return Solution{Status: NotSolved}, nil
	}
}
