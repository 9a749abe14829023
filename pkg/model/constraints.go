package model

import (
	"fmt"

	"github.com/limaJavier/courseload/pkg/milp"
)

type constraintState struct {
	registry *Registry
	rules    Rules
	indexer  indexer
}

// term returns the unit term of an assignment variable
func (state constraintState) term(agent Agent, task Task, period Period) milp.Term {
	index, _ := state.indexer.Index(AssignmentKey{Agent: agent, Task: task, Period: period})
	return milp.Term{Variable: index, Coefficient: 1}
}

// For each task: sum over agents and periods of x(a, t, p) = total(t)
func totalSectionsConstraints(state constraintState) []milp.Constraint {
	constraints := make([]milp.Constraint, 0, len(state.registry.tasks))
	for _, task := range state.registry.tasks {
		expression := make(milp.Expression, 0, len(state.registry.agents)*len(state.registry.periods))
		for _, agent := range state.registry.agents {
			for _, period := range state.registry.periods {
				expression = append(expression, state.term(agent, task, period))
			}
		}
		constraints = append(constraints, milp.Constraint{
			Name:       fmt.Sprintf("TotalSections_%v", task),
			Expression: expression,
			Comparison: milp.Equal,
			RHS:        state.rules.Total(task),
		})
	}
	return constraints
}

// For each task and period: sum over agents of x(a, t, p) >= minimum(t)
func minimumCoverageConstraints(state constraintState) []milp.Constraint {
	constraints := make([]milp.Constraint, 0, len(state.registry.tasks)*len(state.registry.periods))
	for _, task := range state.registry.tasks {
		for _, period := range state.registry.periods {
			expression := make(milp.Expression, 0, len(state.registry.agents))
			for _, agent := range state.registry.agents {
				expression = append(expression, state.term(agent, task, period))
			}
			constraints = append(constraints, milp.Constraint{
				Name:       fmt.Sprintf("Min_%v_%v", task, period),
				Expression: expression,
				Comparison: milp.GreaterOrEqual,
				RHS:        state.rules.Minimum(task),
			})
		}
	}
	return constraints
}

// For each agent: sum over tasks and periods of x(a, t, p) = load(a)
func loadConstraints(state constraintState) []milp.Constraint {
	constraints := make([]milp.Constraint, 0, len(state.registry.agents))
	for _, agent := range state.registry.agents {
		expression := make(milp.Expression, 0, len(state.registry.tasks)*len(state.registry.periods))
		for _, task := range state.registry.tasks {
			for _, period := range state.registry.periods {
				expression = append(expression, state.term(agent, task, period))
			}
		}
		constraints = append(constraints, milp.Constraint{
			Name:       fmt.Sprintf("Load_%v", agent),
			Expression: expression,
			Comparison: milp.Equal,
			RHS:        state.rules.Load(agent),
		})
	}
	return constraints
}
