package milp

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const glpsolFallbackPath = "glpsol"

type glpkSolver struct{}

// NewGlpkSolver returns a solver backed by GLPK's glpsol executable
func NewGlpkSolver() Solver {
	return &glpkSolver{}
}

func (solver *glpkSolver) Solve(model *Model, options Options) (Solution, error) {
	if err := model.Validate(); err != nil {
		return Solution{}, err
	}
	glpsolPath, err := getExecutablePath("glpsolPath", glpsolFallbackPath)
	if err != nil {
		return Solution{}, err
	}

	inputFile, err := writeTempModel(model)
	if err != nil {
		return Solution{}, err
	}
	defer os.Remove(inputFile) // Ensure the file is removed after execution

	outputFile, err := reserveTempFile("glpk_solution-*.txt")
	if err != nil {
		return Solution{}, err
	}
	defer os.Remove(outputFile) // Ensure the file is removed after execution

	args := []string{"--lp", inputFile}
	if options.TimeLimit > 0 {
		args = append(args, "--tmlim", strconv.FormatInt(int64(math.Ceil(options.TimeLimit.Seconds())), 10))
	}
	args = append(args, "-w", outputFile)

	stdout, stderr, err := run(glpsolPath, args, options.progress())
	if err != nil {
		return Solution{}, fmt.Errorf("an error occurred during glpsol execution: %v : %v", err.Error(), stderr)
	}

	output, err := os.ReadFile(outputFile)
	if err != nil {
		return Solution{}, fmt.Errorf("failed to read output file: %v", err)
	}
	return parseGlpkSolution(model, string(output), undefinedStatus(stdout))
}

// undefinedStatus reads glpsol's log for the reason a solution is undefined. An infeasible or unbounded
// relaxation stops glpsol before the integer search, which then writes the undefined status.
func undefinedStatus(stdout string) Status {
	output := strings.ToUpper(stdout)
	switch {
	case strings.Contains(output, "NO PRIMAL FEASIBLE SOLUTION"), strings.Contains(output, "NO INTEGER FEASIBLE SOLUTION"):
		return Infeasible
	case strings.Contains(output, "UNBOUNDED"):
		return Unbounded
	default:
		return NotSolved
	}
}

// parseGlpkSolution reads GLPK's plain text solution format. Columns are numbered from 1 in order of first
// appearance in the LP file, which ToLP makes equal to the order of Model.Variables.
//
//	s mip ROWS COLS STATUS OBJECTIVE        (integer problems)
//	s bas ROWS COLS PRIMAL DUAL OBJECTIVE   (problems without integer columns)
//	j COLUMN VALUE                          (mip)
//	j COLUMN STATUS PRIMAL DUAL             (bas)
// The undefined status is reported as given; see undefinedStatus.
func parseGlpkSolution(model *Model, solverOutput string, undefined Status) (Solution, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] != 'c'
	})

	statusLine, ok := lo.Find(lines, func(line string) bool { return strings.HasPrefix(line, "s ") })
	if !ok {
		return Solution{}, fmt.Errorf("glpk solution has no status line")
	}
	statusFields := strings.Fields(statusLine)
	if len(statusFields) < 5 {
		return Solution{}, fmt.Errorf("invalid glpk status line: %v", statusLine)
	}
	mip := statusFields[1] == "mip"

	var status Status
	if mip {
		switch statusFields[4] {
		case "o":
			status = Optimal
		case "f":
			status = FeasibleUnproven
		case "n":
			status = Infeasible
		default:
			status = undefined
		}
	} else {
		primal, dual := statusFields[4], lo.Ternary(len(statusFields) > 5, statusFields[5], "u")
		switch {
		case primal == "f" && dual == "f":
			status = Optimal
		case primal == "n":
			status = Infeasible
		case primal == "f" && dual == "n":
			status = Unbounded
		default:
			status = undefined
		}
	}
	if !status.HasSolution() {
		return Solution{Status: status}, nil
	}

	values := make([]float64, len(model.Variables))
	valueField := lo.Ternary(mip, 2, 3)
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) <= valueField || fields[0] != "j" {
			continue
		}
		column, err := strconv.Atoi(fields[1])
		if err != nil || column < 1 || column > len(model.Variables) {
			return Solution{}, fmt.Errorf("invalid column in glpk output: %v", line)
		}
		value, err := strconv.ParseFloat(fields[valueField], 64)
		if err != nil {
			return Solution{}, fmt.Errorf("invalid value in glpk output: %v", err)
		}
		values[column-1] = value
	}

	return solutionFromValues(model, status, values), nil
}
