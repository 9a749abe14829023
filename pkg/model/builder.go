package model

import (
	"fmt"
	"math"

	"github.com/limaJavier/courseload/pkg/milp"
	"github.com/samber/lo"
)

const (
	defaultModelName = "Professor_Course_Assignment"
	objectiveName    = "Total_Satisfaction"
)

// Problem is a built model together with the mapping between its variables and assignment keys.
// It belongs to a single solve invocation.
type Problem struct {
	Model       *milp.Model
	Registry    *Registry
	Preferences *Preferences
	Rules       Rules

	indexer indexer
}

// Index returns the variable index of an assignment key
func (problem *Problem) Index(key AssignmentKey) (int, bool) {
	return problem.indexer.Index(key)
}

// Key returns the assignment key of a variable index
func (problem *Problem) Key(index int) AssignmentKey {
	return problem.indexer.Key(index)
}

// Build creates one integer variable per (agent, task, period), in agent-major order, the satisfaction
// objective and the rule constraints. Configuration errors surface here, before any solve.
func Build(registry *Registry, preferences *Preferences, rules Rules) (*Problem, error) {
	if registry == nil || preferences == nil {
		return nil, configurationErrorf("registry and preferences are required")
	}
	if err := rules.Validate(registry); err != nil {
		return nil, err
	}

	indexer := newIndexer(registry)
	model := milp.NewModel(defaultModelName, milp.Maximize)

	//** Variables and objective
	objective := make(milp.Expression, 0, indexer.Size())
	for index := range indexer.Size() {
		key := indexer.Key(index)
		model.AddVariable(milp.Variable{
			Name:    variableName(key),
			Lower:   0,
			Upper:   milp.NoUpperBound,
			Integer: true,
		})

		utility, err := preferences.Utility(key)
		if err != nil {
			return nil, err
		}
		objective = append(objective, milp.Term{Variable: index, Coefficient: utility})
	}
	model.SetObjective(objectiveName, objective)
	if err := checkObjectiveRange(registry, rules, objective); err != nil {
		return nil, err
	}

	//** Constraints
	constraints := []func(state constraintState) []milp.Constraint{
		totalSectionsConstraints,
		minimumCoverageConstraints,
		loadConstraints,
	}
	state := constraintState{
		registry: registry,
		rules:    rules,
		indexer:  indexer,
	}
	for _, group := range buildConstraints(constraints, state) {
		for _, constraint := range group {
			model.AddConstraint(constraint)
		}
	}

	// Entity names are free text; two of them may render to the same LP identifier
	if err := model.Validate(); err != nil {
		return nil, configurationErrorf("%v", err)
	}

	return &Problem{
		Model:       model,
		Registry:    registry,
		Preferences: preferences,
		Rules:       rules,
		indexer:     indexer,
	}, nil
}

// buildConstraints executes every constraint function on its own goroutine. Groups keep the order of
// the functions so that the model is the same on every build.
func buildConstraints(constraints []func(state constraintState) []milp.Constraint, state constraintState) [][]milp.Constraint {
	type result struct {
		position    int
		constraints []milp.Constraint
	}

	resultsChannel := make(chan result, len(constraints)) // Channel to collect constraints
	for position, constraint := range constraints {
		go func() {
			resultsChannel <- result{position: position, constraints: constraint(state)}
		}()
	}

	groups := make([][]milp.Constraint, len(constraints))
	for range constraints {
		result := <-resultsChannel
		groups[result.position] = result.constraints
	}
	return groups
}

// checkObjectiveRange ensures the objective of any allocation fits in int64. Every count is bounded by
// the total of its task, so the largest coefficient times the sum of those bounds must fit.
func checkObjectiveRange(registry *Registry, rules Rules, objective milp.Expression) error {
	perTask := int64(len(registry.agents) * len(registry.periods))
	var reach int64
	for _, task := range registry.tasks {
		total := rules.Total(task)
		if total > (math.MaxInt64-reach)/perTask {
			return configurationErrorf("sections of task \"%v\" overflow the objective range", task)
		}
		reach += total * perTask
	}

	coefficient := lo.Max(lo.Map(objective, func(term milp.Term, _ int) int64 {
		return max(term.Coefficient, -term.Coefficient)
	}))
	if coefficient > 0 && reach > math.MaxInt64/coefficient {
		return configurationErrorf("utilities up to %v over %v section slots overflow the objective range", coefficient, reach)
	}
	return nil
}

func variableName(key AssignmentKey) string {
	return fmt.Sprintf("x_%v_%v_%v", key.Agent, key.Task, key.Period)
}
