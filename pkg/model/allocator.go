package model

import (
	"fmt"

	"github.com/limaJavier/courseload/pkg/milp"
)

type Allocator interface {
	// Builds the model of the input, solves it and extracts the report. Solver outcomes without a
	// solution (Infeasible, Unbounded, NotSolved) are reports, not errors.
	Allocate(input Input, options milp.Options) (Report, error)

	// Re-checks a report against the input without the model: rules, entities and objective
	Verify(report Report, input Input) bool
}

type allocatorImplementation struct {
	solver milp.Solver
}

func NewAllocator(solver milp.Solver) Allocator {
	return &allocatorImplementation{
		solver: solver,
	}
}

func (allocator *allocatorImplementation) Allocate(input Input, options milp.Options) (Report, error) {
	//** Build
	problem, err := Build(input.Registry, input.Preferences, input.Rules)
	if err != nil {
		return Report{}, err
	}
	if input.Name != "" {
		problem.Model.Name = input.Name
	}

	//** Solve
	solution, err := allocator.solver.Solve(problem.Model, options)
	if err != nil {
		return Report{}, fmt.Errorf("cannot solve model \"%v\": %w", problem.Model.Name, err)
	}

	//** Extract
	return Extract(problem, solution)
}

func (allocator *allocatorImplementation) Verify(report Report, input Input) bool {
	return verify(report, input)
}
