package milp

import (
	"io"
	"os"
	"time"
)

type Status int

const (
	NotSolved Status = iota
	Optimal
	FeasibleUnproven // A solution satisfying every constraint, not proven optimal within the time limit
	Infeasible
	Unbounded
)

var statusNames = map[Status]string{
	NotSolved:        "NotSolved",
	Optimal:          "Optimal",
	FeasibleUnproven: "FeasibleUnproven",
	Infeasible:       "Infeasible",
	Unbounded:        "Unbounded",
}

func (status Status) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "Undefined"
}

// HasSolution reports whether the status carries variable values
func (status Status) HasSolution() bool {
	return status == Optimal || status == FeasibleUnproven
}

// Options are the knobs every solver understands. The zero value means no time limit and no output.
type Options struct {
	TimeLimit time.Duration // Zero stands for no limit
	Verbose   bool
	Progress  io.Writer // Receives solver progress when Verbose is set; defaults to the Standard Error
}

func (options Options) progress() io.Writer {
	if !options.Verbose {
		return io.Discard
	} else if options.Progress == nil {
		return os.Stderr
	}
	return options.Progress
}

func (options Options) deadline(start time.Time) (time.Time, bool) {
	if options.TimeLimit <= 0 {
		return time.Time{}, false
	}
	return start.Add(options.TimeLimit), true
}

type Solution struct {
	Status    Status
	Objective float64
	Values    []float64 // Indexed like Model.Variables; nil unless Status.HasSolution()
}

type Solver interface {
	// Returns the outcome of solving the model. Infeasible, Unbounded, NotSolved and FeasibleUnproven are valid
	// outcomes where error shall be nil; errors are reserved for failures of the solver itself. The model is never mutated.
	Solve(model *Model, options Options) (Solution, error)
}
