package model

import (
	"fmt"
	"math"
	"slices"

	"github.com/limaJavier/courseload/pkg/milp"
)

// IntegralityTolerance is the largest distance between a solver value and its nearest integer
const IntegralityTolerance = 1e-6

// Extract reads the solved values back through the registry. Statuses without a solution yield a
// status-only report; the objective of a solution is recomputed exactly from the integer counts.
func Extract(problem *Problem, solution milp.Solution) (Report, error) {
	if !solution.Status.HasSolution() {
		return newReport(problem.Model.Name, solution.Status, 0, nil), nil
	}
	if len(solution.Values) != problem.indexer.Size() {
		return Report{}, fmt.Errorf("solution has %v values but the model has %v variables", len(solution.Values), problem.indexer.Size())
	}

	counts := make([]int64, len(solution.Values))
	for index, value := range solution.Values {
		key := problem.Key(index)
		rounded := math.Round(value)
		// A count above its task's total cannot satisfy the total sections row
		if math.IsNaN(value) || math.Abs(value-rounded) > IntegralityTolerance || rounded < 0 || rounded > float64(problem.Rules.Total(key.Task)) {
			return Report{}, &NumericIntegrityError{Key: key, Value: value}
		}
		counts[index] = int64(rounded)
	}

	assignments := make([]Assignment, 0)
	for index, count := range counts {
		if count > 0 {
			key := problem.Key(index)
			assignments = append(assignments, Assignment{Agent: key.Agent, Period: key.Period, Task: key.Task, Count: count})
		}
	}
	slices.SortFunc(assignments, problem.Registry.compareAssignments)

	return newReport(problem.Model.Name, solution.Status, problem.Model.Evaluate(counts), assignments), nil
}

// compareAssignments orders by registry position of agent, then period, then task
func (registry *Registry) compareAssignments(a, b Assignment) int {
	if difference := registry.agentPositions[a.Agent] - registry.agentPositions[b.Agent]; difference != 0 {
		return difference
	}
	if difference := registry.periodPositions[a.Period] - registry.periodPositions[b.Period]; difference != 0 {
		return difference
	}
	return registry.taskPositions[a.Task] - registry.taskPositions[b.Task]
}
