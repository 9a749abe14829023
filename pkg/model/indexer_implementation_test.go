package model

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAndKeyDeterministic(t *testing.T) {
	// Arrange
	scenarios := [][3]int{
		{1, 1, 1},
		{3, 3, 2},
		{5, 7, 4},
		{20, 1, 3},
		{2, 15, 1},
	}

	for _, scenario := range scenarios {
		registry := syntheticRegistry(t, scenario[0], scenario[1], scenario[2])

		// Act
		indexer := newIndexer(registry)

		// Assert
		seen := make(map[int]bool)
		for _, agent := range registry.Agents() {
			for _, task := range registry.Tasks() {
				for _, period := range registry.Periods() {
					key := AssignmentKey{Agent: agent, Task: task, Period: period}
					index, ok := indexer.Index(key)
					require.True(t, ok)
					assert.GreaterOrEqual(t, index, 0)
					assert.Less(t, index, indexer.Size())
					assert.False(t, seen[index], "index %v assigned twice", index)
					seen[index] = true
					assert.Equal(t, key, indexer.Key(index))
				}
			}
		}
		assert.Len(t, seen, registry.Size())
	}
}

func TestIndexAndKeyNonDeterministic(t *testing.T) {
	for range 10 {
		// Arrange
		registry := syntheticRegistry(t, rand.Intn(10)+1, rand.Intn(10)+1, rand.Intn(5)+1)
		indexer := newIndexer(registry)

		for range 50 {
			// Act
			index := rand.Intn(indexer.Size())
			key := indexer.Key(index)

			// Assert
			actual, ok := indexer.Index(key)
			assert.True(t, ok)
			assert.Equal(t, index, actual)
		}
	}
}

func TestIndexIsAgentMajor(t *testing.T) {
	registry := syntheticRegistry(t, 2, 3, 2)
	indexer := newIndexer(registry)

	assert.Equal(t, AssignmentKey{Agent: "agent0", Task: "task0", Period: "period0"}, indexer.Key(0))
	assert.Equal(t, AssignmentKey{Agent: "agent0", Task: "task0", Period: "period1"}, indexer.Key(1))
	assert.Equal(t, AssignmentKey{Agent: "agent0", Task: "task1", Period: "period0"}, indexer.Key(2))
	assert.Equal(t, AssignmentKey{Agent: "agent1", Task: "task0", Period: "period0"}, indexer.Key(6))

	_, ok := indexer.Index(AssignmentKey{Agent: "stranger", Task: "task0", Period: "period0"})
	assert.False(t, ok)
}

func syntheticRegistry(t *testing.T, agents, tasks, periods int) *Registry {
	registry, err := NewRegistry(
		names[Agent]("agent", agents),
		names[Task]("task", tasks),
		names[Period]("period", periods),
	)
	require.NoError(t, err)
	return registry
}

func names[T ~string](prefix string, count int) []T {
	result := make([]T, count)
	for i := range count {
		result[i] = T(fmt.Sprintf("%v%d", prefix, i))
	}
	return result
}
