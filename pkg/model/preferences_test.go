package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func examplePeriodUtilities() map[Agent]map[Period]int64 {
	return map[Agent]map[Period]int64{
		"Prof1": {"Fall": 3, "Spring": 4},
		"Prof2": {"Fall": 5, "Spring": 3},
		"Prof3": {"Fall": 4, "Spring": 4},
	}
}

func exampleTaskUtilities() map[Agent]map[Task]int64 {
	return map[Agent]map[Task]int64{
		"Prof1": {"Marketing": 6, "Finance": 5, "Production": 4},
		"Prof2": {"Marketing": 4, "Finance": 6, "Production": 5},
		"Prof3": {"Marketing": 5, "Finance": 4, "Production": 6},
	}
}

func exampleRegistry(t *testing.T) *Registry {
	registry, err := NewRegistry(
		[]Agent{"Prof1", "Prof2", "Prof3"},
		[]Task{"Marketing", "Finance", "Production"},
		[]Period{"Fall", "Spring"},
	)
	require.NoError(t, err)
	return registry
}

func TestNewPreferences(t *testing.T) {
	registry := exampleRegistry(t)

	t.Run("Complete tables", func(t *testing.T) {
		preferences, err := NewPreferences(registry, examplePeriodUtilities(), exampleTaskUtilities())
		require.NoError(t, err)

		utility, err := preferences.PeriodUtility("Prof2", "Fall")
		assert.NoError(t, err)
		assert.Equal(t, int64(5), utility)

		utility, err = preferences.TaskUtility("Prof3", "Production")
		assert.NoError(t, err)
		assert.Equal(t, int64(6), utility)

		utility, err = preferences.Utility(AssignmentKey{Agent: "Prof1", Task: "Marketing", Period: "Spring"})
		assert.NoError(t, err)
		assert.Equal(t, int64(10), utility)
	})

	t.Run("Missing task preference", func(t *testing.T) {
		//** Arrange
		taskUtilities := exampleTaskUtilities()
		delete(taskUtilities["Prof2"], "Production")

		//** Act
		preferences, err := NewPreferences(registry, examplePeriodUtilities(), taskUtilities)

		//** Assert
		assert.Nil(t, preferences)
		var missing *MissingPreferenceError
		require.True(t, errors.As(err, &missing), "unexpected error: %v", err)
		assert.Equal(t, MissingPreferenceError{Agent: "Prof2", Task: "Production"}, *missing)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.ErrorContains(t, err, "\"Prof2\" for task \"Production\"")
	})

	t.Run("Missing period preferences of a whole agent", func(t *testing.T) {
		periodUtilities := examplePeriodUtilities()
		delete(periodUtilities, "Prof3")

		_, err := NewPreferences(registry, periodUtilities, exampleTaskUtilities())

		var missing *MissingPreferenceError
		require.True(t, errors.As(err, &missing), "unexpected error: %v", err)
		assert.Equal(t, MissingPreferenceError{Agent: "Prof3", Period: "Fall"}, *missing)
	})

	t.Run("First missing pair follows registry order", func(t *testing.T) {
		taskUtilities := exampleTaskUtilities()
		delete(taskUtilities["Prof3"], "Marketing")
		delete(taskUtilities["Prof1"], "Production")
		delete(taskUtilities["Prof1"], "Finance")

		_, err := NewPreferences(registry, examplePeriodUtilities(), taskUtilities)

		var missing *MissingPreferenceError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, MissingPreferenceError{Agent: "Prof1", Task: "Finance"}, *missing)
	})

	t.Run("Entries of unknown entities", func(t *testing.T) {
		taskUtilities := exampleTaskUtilities()
		taskUtilities["Prof4"] = map[Task]int64{"Finance": 1}

		_, err := NewPreferences(registry, examplePeriodUtilities(), taskUtilities)

		assert.True(t, errors.Is(err, ErrConfiguration), "unexpected error: %v", err)
		assert.ErrorContains(t, err, "Prof4")
	})

	t.Run("Utilities beyond the bound", func(t *testing.T) {
		periodUtilities := examplePeriodUtilities()
		periodUtilities["Prof2"]["Spring"] = -MaxMagnitude - 1

		_, err := NewPreferences(registry, periodUtilities, exampleTaskUtilities())

		assert.True(t, errors.Is(err, ErrConfiguration), "unexpected error: %v", err)
		assert.ErrorContains(t, err, "\"Prof2\" for \"Spring\"")

		taskUtilities := exampleTaskUtilities()
		taskUtilities["Prof1"]["Finance"] = MaxMagnitude
		_, err = NewPreferences(registry, examplePeriodUtilities(), taskUtilities)
		assert.NoError(t, err)
	})

	t.Run("Lookups of unknown keys", func(t *testing.T) {
		preferences, err := NewPreferences(registry, examplePeriodUtilities(), exampleTaskUtilities())
		require.NoError(t, err)

		_, err = preferences.TaskUtility("Prof1", "Law")

		var missing *MissingPreferenceError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, Task("Law"), missing.Task)
	})

	t.Run("Caller's tables can change afterwards", func(t *testing.T) {
		periodUtilities := examplePeriodUtilities()
		preferences, err := NewPreferences(registry, periodUtilities, exampleTaskUtilities())
		require.NoError(t, err)

		periodUtilities["Prof1"]["Fall"] = 100

		utility, _ := preferences.PeriodUtility("Prof1", "Fall")
		assert.Equal(t, int64(3), utility)
	})
}
