package model

import (
	"slices"
	"strings"
)

type Agent string

type Task string

type Period string

// Registry holds the ordered entity sets. Positions are stable and define report order.
type Registry struct {
	agents  []Agent
	tasks   []Task
	periods []Period

	agentPositions  map[Agent]int
	taskPositions   map[Task]int
	periodPositions map[Period]int
}

func NewRegistry(agents []Agent, tasks []Task, periods []Period) (*Registry, error) {
	agentPositions, err := positions("agent", agents)
	if err != nil {
		return nil, err
	}
	taskPositions, err := positions("task", tasks)
	if err != nil {
		return nil, err
	}
	periodPositions, err := positions("period", periods)
	if err != nil {
		return nil, err
	}

	return &Registry{
		agents:          slices.Clone(agents),
		tasks:           slices.Clone(tasks),
		periods:         slices.Clone(periods),
		agentPositions:  agentPositions,
		taskPositions:   taskPositions,
		periodPositions: periodPositions,
	}, nil
}

func positions[T ~string](kind string, entities []T) (map[T]int, error) {
	if len(entities) == 0 {
		return nil, configurationErrorf("no %v was supplied", kind)
	}

	positions := make(map[T]int, len(entities))
	for i, entity := range entities {
		if strings.TrimSpace(string(entity)) == "" {
			return nil, configurationErrorf("%v at position %v has a blank identity", kind, i)
		}
		if _, ok := positions[entity]; ok {
			return nil, configurationErrorf("duplicate %v \"%v\"", kind, entity)
		}
		positions[entity] = i
	}
	return positions, nil
}

func (registry *Registry) Agents() []Agent { return slices.Clone(registry.agents) }

func (registry *Registry) Tasks() []Task { return slices.Clone(registry.tasks) }

func (registry *Registry) Periods() []Period { return slices.Clone(registry.periods) }

func (registry *Registry) AgentPosition(agent Agent) (int, bool) {
	position, ok := registry.agentPositions[agent]
	return position, ok
}

func (registry *Registry) TaskPosition(task Task) (int, bool) {
	position, ok := registry.taskPositions[task]
	return position, ok
}

func (registry *Registry) PeriodPosition(period Period) (int, bool) {
	position, ok := registry.periodPositions[period]
	return position, ok
}

// Size returns the number of assignment keys
func (registry *Registry) Size() int {
	return len(registry.agents) * len(registry.tasks) * len(registry.periods)
}
