package model

import (
	"errors"
	"math"
	"testing"

	"github.com/limaJavier/courseload/pkg/milp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleProblem(t *testing.T) *Problem {
	registry := exampleRegistry(t)
	preferences, err := NewPreferences(registry, examplePeriodUtilities(), exampleTaskUtilities())
	require.NoError(t, err)
	problem, err := Build(registry, preferences, exampleRules())
	require.NoError(t, err)
	return problem
}

func TestBuildVariables(t *testing.T) {
	problem := exampleProblem(t)
	model := problem.Model

	// |Agents| x |Tasks| x |Periods| integer variables bounded below by zero
	require.Len(t, model.Variables, 18)
	for _, variable := range model.Variables {
		assert.Equal(t, int64(0), variable.Lower)
		assert.Equal(t, milp.NoUpperBound, variable.Upper)
		assert.True(t, variable.Integer)
	}

	assert.Equal(t, "x_Prof1_Marketing_Fall", model.Variables[0].Name)
	assert.Equal(t, "x_Prof1_Marketing_Spring", model.Variables[1].Name)
	assert.Equal(t, "x_Prof1_Finance_Fall", model.Variables[2].Name)
	assert.Equal(t, "x_Prof3_Production_Spring", model.Variables[17].Name)

	index, ok := problem.Index(AssignmentKey{Agent: "Prof2", Task: "Finance", Period: "Fall"})
	require.True(t, ok)
	assert.Equal(t, "x_Prof2_Finance_Fall", model.Variables[index].Name)
}

func TestBuildObjective(t *testing.T) {
	problem := exampleProblem(t)
	model := problem.Model

	assert.Equal(t, milp.Maximize, model.Sense)
	assert.Equal(t, "Total_Satisfaction", model.ObjectiveName)
	require.Len(t, model.Objective, 18)

	// Coefficient of x(a, t, p) is utility(a, p) + utility(a, t)
	for _, term := range model.Objective {
		key := problem.Key(term.Variable)
		periodUtility := examplePeriodUtilities()[key.Agent][key.Period]
		taskUtility := exampleTaskUtilities()[key.Agent][key.Task]
		assert.Equal(t, periodUtility+taskUtility, term.Coefficient, "coefficient of %v", key)
	}
	assert.Equal(t, int64(9), model.Objective[0].Coefficient) // Prof1: Fall 3 + Marketing 6
}

func TestBuildConstraints(t *testing.T) {
	problem := exampleProblem(t)
	constraints := lo.KeyBy(problem.Model.Constraints, func(constraint milp.Constraint) string { return constraint.Name })

	// 3 task totals + 3 x 2 minimum coverages + 3 loads
	require.Len(t, problem.Model.Constraints, 12)
	assert.Equal(t, "TotalSections_Marketing", problem.Model.Constraints[0].Name)
	assert.Equal(t, "Load_Prof3", problem.Model.Constraints[11].Name)

	total := constraints["TotalSections_Finance"]
	assert.Equal(t, milp.Equal, total.Comparison)
	assert.Equal(t, int64(4), total.RHS)
	assert.Len(t, total.Expression, 6)
	for _, term := range total.Expression {
		assert.Equal(t, Task("Finance"), problem.Key(term.Variable).Task)
		assert.Equal(t, int64(1), term.Coefficient)
	}

	minimum := constraints["Min_Production_Spring"]
	assert.Equal(t, milp.GreaterOrEqual, minimum.Comparison)
	assert.Equal(t, int64(1), minimum.RHS)
	assert.Len(t, minimum.Expression, 3)
	for _, term := range minimum.Expression {
		key := problem.Key(term.Variable)
		assert.Equal(t, Task("Production"), key.Task)
		assert.Equal(t, Period("Spring"), key.Period)
	}

	load := constraints["Load_Prof2"]
	assert.Equal(t, milp.Equal, load.Comparison)
	assert.Equal(t, int64(4), load.RHS)
	assert.Len(t, load.Expression, 6)
	for _, term := range load.Expression {
		assert.Equal(t, Agent("Prof2"), problem.Key(term.Variable).Agent)
	}
}

func TestBuildWithOverrides(t *testing.T) {
	registry := exampleRegistry(t)
	preferences, err := NewPreferences(registry, examplePeriodUtilities(), exampleTaskUtilities())
	require.NoError(t, err)
	rules := exampleRules()
	rules.TaskTotals = map[Task]int64{"Finance": 5}
	rules.AgentLoads = map[Agent]int64{"Prof2": 5}

	problem, err := Build(registry, preferences, rules)

	require.NoError(t, err)
	constraints := lo.KeyBy(problem.Model.Constraints, func(constraint milp.Constraint) string { return constraint.Name })
	assert.Equal(t, int64(5), constraints["TotalSections_Finance"].RHS)
	assert.Equal(t, int64(4), constraints["TotalSections_Marketing"].RHS)
	assert.Equal(t, int64(5), constraints["Load_Prof2"].RHS)
}

func TestBuildIsPure(t *testing.T) {
	registry := exampleRegistry(t)
	preferences, err := NewPreferences(registry, examplePeriodUtilities(), exampleTaskUtilities())
	require.NoError(t, err)

	for range 10 {
		first, err := Build(registry, preferences, exampleRules())
		require.NoError(t, err)
		second, err := Build(registry, preferences, exampleRules())
		require.NoError(t, err)

		assert.Equal(t, first.Model, second.Model)
		assert.NotSame(t, first.Model, second.Model)
		assert.NotSame(t, &first.Model.Variables[0], &second.Model.Variables[0])
	}
}

func TestBuildConfigurationErrors(t *testing.T) {
	registry := exampleRegistry(t)
	preferences, err := NewPreferences(registry, examplePeriodUtilities(), exampleTaskUtilities())
	require.NoError(t, err)

	t.Run("Minimum coverage above the total", func(t *testing.T) {
		rules := exampleRules()
		rules.MinimumPerTaskPeriod = 3

		problem, err := Build(registry, preferences, rules)

		assert.Nil(t, problem)
		var configurationError *ConfigurationError
		assert.True(t, errors.As(err, &configurationError), "unexpected error: %v", err)
	})

	t.Run("Names colliding as LP identifiers", func(t *testing.T) {
		registry, err := NewRegistry([]Agent{"Prof 1", "Prof-1"}, []Task{"Finance"}, []Period{"Fall"})
		require.NoError(t, err)
		preferences, err := NewPreferences(registry,
			map[Agent]map[Period]int64{"Prof 1": {"Fall": 1}, "Prof-1": {"Fall": 1}},
			map[Agent]map[Task]int64{"Prof 1": {"Finance": 1}, "Prof-1": {"Finance": 1}},
		)
		require.NoError(t, err)

		_, err = Build(registry, preferences, Rules{TotalPerTask: 2, LoadPerAgent: 1})

		assert.True(t, errors.Is(err, ErrConfiguration), "unexpected error: %v", err)
		assert.ErrorContains(t, err, "x_Prof_1_Finance_Fall")
	})

	t.Run("Objective outside the int64 range", func(t *testing.T) {
		objective := milp.Expression{{Variable: 0, Coefficient: math.MaxInt64 / 10}}

		err := checkObjectiveRange(registry, exampleRules(), objective)

		assert.True(t, errors.Is(err, ErrConfiguration), "unexpected error: %v", err)
		assert.ErrorContains(t, err, "overflow the objective range")
		assert.NoError(t, checkObjectiveRange(registry, exampleRules(), milp.Expression{{Variable: 0, Coefficient: -MaxMagnitude}}))
	})

	t.Run("Missing registry", func(t *testing.T) {
		_, err := Build(nil, preferences, exampleRules())
		assert.True(t, errors.Is(err, ErrConfiguration))
	})
}
