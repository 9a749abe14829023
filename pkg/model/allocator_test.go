package model

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/limaJavier/courseload/pkg/milp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDirectory = "../../testdata/"

// stubSolver returns a fixed outcome and counts its invocations
type stubSolver struct {
	solution milp.Solution
	err      error
	calls    atomic.Int32
}

func (solver *stubSolver) Solve(model *milp.Model, options milp.Options) (milp.Solution, error) {
	solver.calls.Add(1)
	return solver.solution, solver.err
}

func exampleInput(t *testing.T) Input {
	input, err := InputFromFile(testDirectory + "professors.yaml")
	require.NoError(t, err)
	return input
}

func TestBranchAndBoundBasedAllocator(t *testing.T) {
	allocator := NewAllocator(milp.NewBranchAndBoundSolver())

	t.Run("Example configuration", func(t *testing.T) {
		//** Arrange
		input := exampleInput(t)

		//** Act
		report, err := allocator.Allocate(input, milp.Options{})

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, milp.Optimal, report.Status)
		assert.Equal(t, int64(121), report.Objective)
		assert.True(t, allocator.Verify(report, input))
		assertStructuralProperties(t, report, input)
	})

	t.Run("Every input file", func(t *testing.T) {
		inputExecution(t, allocator)
	})

	t.Run("Idempotence", func(t *testing.T) {
		input := exampleInput(t)

		first, err := allocator.Allocate(input, milp.Options{})
		require.NoError(t, err)
		second, err := allocator.Allocate(input, milp.Options{})
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.Objective, second.Objective)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestCbcBasedAllocator(t *testing.T) {
	skipWithoutExecutable(t, "cbc")
	inputExecution(t, NewAllocator(milp.NewCbcSolver()))
}

func TestGlpkBasedAllocator(t *testing.T) {
	skipWithoutExecutable(t, "glpsol")
	inputExecution(t, NewAllocator(milp.NewGlpkSolver()))
}

func inputExecution(t *testing.T, allocator Allocator) {
	testFiles, err := os.ReadDir(testDirectory)
	require.NoError(t, err)

	for _, file := range testFiles {
		//** Arrange
		filename := filepath.Join(testDirectory, file.Name())
		input, err := InputFromFile(filename)
		require.NoError(t, err, filename)

		//** Act
		report, err := allocator.Allocate(input, milp.Options{})

		//** Assert
		require.NoError(t, err, filename)
		assert.Equal(t, milp.Optimal, report.Status, filename)
		assert.True(t, allocator.Verify(report, input), filename)
		assertStructuralProperties(t, report, input)
		if file.Name() == "professors.yaml" || file.Name() == "professors.json" {
			assert.Equal(t, int64(121), report.Objective, filename)
		}
	}
}

func assertStructuralProperties(t *testing.T, report Report, input Input) {
	for _, task := range input.Registry.Tasks() {
		sections := lo.SumBy(report.Assignments, func(assignment Assignment) int64 {
			return lo.Ternary(assignment.Task == task, assignment.Count, 0)
		})
		assert.Equal(t, input.Rules.Total(task), sections, "sections of %v", task)

		for _, period := range input.Registry.Periods() {
			coverage := lo.SumBy(report.Assignments, func(assignment Assignment) int64 {
				return lo.Ternary(assignment.Task == task && assignment.Period == period, assignment.Count, 0)
			})
			assert.GreaterOrEqual(t, coverage, input.Rules.Minimum(task), "coverage of %v in %v", task, period)
		}
	}
	for _, agent := range input.Registry.Agents() {
		load := lo.SumBy(report.Assignments, func(assignment Assignment) int64 {
			return lo.Ternary(assignment.Agent == agent, assignment.Count, 0)
		})
		assert.Equal(t, input.Rules.Load(agent), load, "load of %v", agent)
	}
	for _, assignment := range report.Assignments {
		assert.Positive(t, assignment.Count)
	}
}

func TestAllocatorOutcomes(t *testing.T) {
	input := exampleInput(t)

	t.Run("Configuration errors stop before the solver", func(t *testing.T) {
		solver := &stubSolver{}
		allocator := NewAllocator(solver)
		rules := input.Rules
		rules.MinimumPerTaskPeriod = 3

		_, err := allocator.Allocate(input.WithRules(rules), milp.Options{})

		assert.True(t, errors.Is(err, ErrConfiguration), "unexpected error: %v", err)
		assert.Equal(t, int32(0), solver.calls.Load())
	})

	t.Run("Infeasible is a report", func(t *testing.T) {
		allocator := NewAllocator(&stubSolver{solution: milp.Solution{Status: milp.Infeasible}})

		report, err := allocator.Allocate(input, milp.Options{})

		require.NoError(t, err)
		assert.Equal(t, milp.Infeasible, report.Status)
		assert.Empty(t, report.Assignments)
		assert.True(t, allocator.Verify(report, input))
	})

	t.Run("Solver failures are errors", func(t *testing.T) {
		failure := errors.New("solver crashed")
		allocator := NewAllocator(&stubSolver{err: failure})

		_, err := allocator.Allocate(input, milp.Options{})

		assert.ErrorIs(t, err, failure)
	})

	t.Run("Fractional solver output", func(t *testing.T) {
		values := witnessValues()
		values[0] = 2.4
		allocator := NewAllocator(&stubSolver{solution: milp.Solution{Status: milp.Optimal, Values: values}})

		_, err := allocator.Allocate(input, milp.Options{})

		assert.True(t, errors.Is(err, ErrNumericIntegrity), "unexpected error: %v", err)
	})

	t.Run("Out of range solver output", func(t *testing.T) {
		values := witnessValues()
		values[0] = 1e19
		allocator := NewAllocator(&stubSolver{solution: milp.Solution{Status: milp.Optimal, Values: values}})

		report, err := allocator.Allocate(input, milp.Options{})

		assert.True(t, errors.Is(err, ErrNumericIntegrity), "unexpected error: %v", err)
		assert.Empty(t, report.Assignments)
		assert.Zero(t, report.Objective)
	})

	t.Run("Model carries the input name", func(t *testing.T) {
		allocator := NewAllocator(&stubSolver{solution: milp.Solution{Status: milp.Optimal, Values: witnessValues()}})
		input := input
		input.Name = "Spring_Review"

		report, err := allocator.Allocate(input, milp.Options{})

		require.NoError(t, err)
		assert.Equal(t, "Spring_Review", report.Name)
	})
}

func TestVerify(t *testing.T) {
	input := exampleInput(t)
	allocator := NewAllocator(&stubSolver{solution: milp.Solution{Status: milp.Optimal, Values: witnessValues()}})
	report, err := allocator.Allocate(input, milp.Options{})
	require.NoError(t, err)
	require.True(t, allocator.Verify(report, input))

	tamperings := map[string]func(report *Report){
		"objective":          func(report *Report) { report.Objective++ },
		"count":              func(report *Report) { report.Assignments[0].Count++ },
		"moved section":      func(report *Report) { report.Assignments[0].Period = "Fall" },
		"unknown agent":      func(report *Report) { report.Assignments[5].Agent = "Prof4" },
		"zero count":         func(report *Report) { report.Assignments = append(report.Assignments, Assignment{"Prof3", "Spring", "Finance", 0}) },
		"duplicated key":     func(report *Report) { report.Assignments = append(report.Assignments, report.Assignments[5]) },
		"order":              func(report *Report) { report.Assignments[0], report.Assignments[1] = report.Assignments[1], report.Assignments[0] },
		"dropped assignment": func(report *Report) { report.Assignments = report.Assignments[1:] },
		"allocation without solution": func(report *Report) {
			report.Status, report.StatusName = milp.NotSolved, milp.NotSolved.String()
		},
	}

	for name, tamper := range tamperings {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			tampered := report
			tampered.Assignments = append([]Assignment{}, report.Assignments...)
			tamper(&tampered)

			//** Act & Assert
			assert.False(t, allocator.Verify(tampered, input))
		})
	}
}

func skipWithoutExecutable(t *testing.T, name string) {
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%v is not available: %v", name, err)
	}
}
