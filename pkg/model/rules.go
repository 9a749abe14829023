package model

import (
	"github.com/samber/lo"
)

// MaxMagnitude bounds utilities and rule values, so that utility sums and rule sums stay within int64
const MaxMagnitude int64 = 1 << 31

// Rules are the allocation rule parameters. Every rule has a default and optional per-entity overrides.
type Rules struct {
	TotalPerTask int64          // Sections of each task over all agents and periods
	TaskTotals   map[Task]int64 // Overrides of TotalPerTask

	MinimumPerTaskPeriod int64          // Sections of each task in every period, over all agents
	TaskMinimums         map[Task]int64 // Overrides of MinimumPerTaskPeriod

	LoadPerAgent int64           // Sections taught by each agent over all tasks and periods
	AgentLoads   map[Agent]int64 // Overrides of LoadPerAgent
}

func (rules Rules) Total(task Task) int64 {
	if total, ok := rules.TaskTotals[task]; ok {
		return total
	}
	return rules.TotalPerTask
}

func (rules Rules) Minimum(task Task) int64 {
	if minimum, ok := rules.TaskMinimums[task]; ok {
		return minimum
	}
	return rules.MinimumPerTaskPeriod
}

func (rules Rules) Load(agent Agent) int64 {
	if load, ok := rules.AgentLoads[agent]; ok {
		return load
	}
	return rules.LoadPerAgent
}

// Validate rejects negative parameters, overrides of unknown entities and rule sets that are
// infeasible by construction
func (rules Rules) Validate(registry *Registry) error {
	if rules.TotalPerTask < 0 || rules.MinimumPerTaskPeriod < 0 || rules.LoadPerAgent < 0 {
		return configurationErrorf("rule parameters must be non-negative")
	}
	if rules.TotalPerTask > MaxMagnitude || rules.MinimumPerTaskPeriod > MaxMagnitude || rules.LoadPerAgent > MaxMagnitude {
		return configurationErrorf("rule parameters must not exceed %v", MaxMagnitude)
	}
	if err := validateOverrides("sections of task", rules.TaskTotals, registry.taskPositions); err != nil {
		return err
	}
	if err := validateOverrides("minimum of task", rules.TaskMinimums, registry.taskPositions); err != nil {
		return err
	}
	if err := validateOverrides("load of agent", rules.AgentLoads, registry.agentPositions); err != nil {
		return err
	}

	periods := int64(len(registry.periods))
	for _, task := range registry.tasks {
		if minimum, total := rules.Minimum(task), rules.Total(task); minimum*periods > total {
			return configurationErrorf("task \"%v\" needs at least %v sections in each of %v periods but only has %v", task, minimum, periods, total)
		}
	}

	sections := lo.SumBy(registry.tasks, rules.Total)
	load := lo.SumBy(registry.agents, rules.Load)
	if sections == 0 {
		return configurationErrorf("rules allocate no sections")
	}
	if sections != load {
		return configurationErrorf("tasks require %v sections but agents teach %v", sections, load)
	}
	return nil
}

func validateOverrides[T comparable](kind string, overrides map[T]int64, known map[T]int) error {
	for entity, value := range overrides {
		if _, ok := known[entity]; !ok {
			return configurationErrorf("%v \"%v\" overrides an unknown entity", kind, entity)
		}
		if value < 0 {
			return configurationErrorf("%v \"%v\" must be non-negative: %v", kind, entity, value)
		}
		if value > MaxMagnitude {
			return configurationErrorf("%v \"%v\" must not exceed %v: %v", kind, entity, MaxMagnitude, value)
		}
	}
	return nil
}
