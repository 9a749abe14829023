package model

import (
	"github.com/samber/lo"
)

type coverageKey struct {
	task   Task
	period Period
}

func verify(report Report, input Input) bool {
	registry, rules := input.Registry, input.Rules

	// Statuses without a solution must not carry a partial allocation
	if !report.HasSolution() {
		return len(report.Assignments) == 0 && report.Objective == 0
	}

	//** Initialize derived sums
	derivedSections := make(map[Task]int64)
	derivedCoverage := make(map[coverageKey]int64)
	derivedLoad := make(map[Agent]int64)
	assigned := make(map[AssignmentKey]bool)

	var objective int64
	for _, assignment := range report.Assignments {
		key := AssignmentKey{Agent: assignment.Agent, Task: assignment.Task, Period: assignment.Period}

		_, knownAgent := registry.AgentPosition(key.Agent)
		_, knownTask := registry.TaskPosition(key.Task)
		_, knownPeriod := registry.PeriodPosition(key.Period)
		// Check that:
		// - Every entity is known
		// - Counts are positive (zero counts are not reported)
		// - Every key is reported once
		if !knownAgent || !knownTask || !knownPeriod || assignment.Count <= 0 || assigned[key] {
			return false
		}

		utility, err := input.Preferences.Utility(key)
		if err != nil {
			return false
		}

		assigned[key] = true                                                   // Store reported key
		derivedSections[key.Task] += assignment.Count                          // Store task sections
		derivedCoverage[coverageKey{key.Task, key.Period}] += assignment.Count // Store task-period coverage
		derivedLoad[key.Agent] += assignment.Count                             // Store agent load
		objective += utility * assignment.Count
	}

	// Check the ordering guarantee of the report
	for i := 1; i < len(report.Assignments); i++ {
		if registry.compareAssignments(report.Assignments[i-1], report.Assignments[i]) >= 0 {
			return false
		}
	}

	// Check every rule against the derived sums
	sectionsHold := lo.EveryBy(registry.tasks, func(task Task) bool {
		return derivedSections[task] == rules.Total(task)
	})
	coverageHolds := lo.EveryBy(registry.tasks, func(task Task) bool {
		return lo.EveryBy(registry.periods, func(period Period) bool {
			return derivedCoverage[coverageKey{task, period}] >= rules.Minimum(task)
		})
	})
	loadHolds := lo.EveryBy(registry.agents, func(agent Agent) bool {
		return derivedLoad[agent] == rules.Load(agent)
	})

	return sectionsHold && coverageHolds && loadHolds && objective == report.Objective
}
