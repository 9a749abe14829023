package model

// Preferences holds a complete utility table for every agent x period and agent x task pair
type Preferences struct {
	periodUtilities map[Agent]map[Period]int64
	taskUtilities   map[Agent]map[Task]int64
}

// NewPreferences validates completeness eagerly, in registry order, so the first missing pair
// reported is deterministic. Entries naming unknown entities are rejected as well.
func NewPreferences(registry *Registry, periodUtilities map[Agent]map[Period]int64, taskUtilities map[Agent]map[Task]int64) (*Preferences, error) {
	preferences := &Preferences{
		periodUtilities: make(map[Agent]map[Period]int64, len(registry.agents)),
		taskUtilities:   make(map[Agent]map[Task]int64, len(registry.agents)),
	}

	for _, agent := range registry.agents {
		preferences.periodUtilities[agent] = make(map[Period]int64, len(registry.periods))
		for _, period := range registry.periods {
			utility, ok := periodUtilities[agent][period]
			if !ok {
				return nil, &MissingPreferenceError{Agent: agent, Period: period}
			}
			if utility > MaxMagnitude || utility < -MaxMagnitude {
				return nil, configurationErrorf("preference of \"%v\" for \"%v\" exceeds %v in magnitude: %v", agent, period, MaxMagnitude, utility)
			}
			preferences.periodUtilities[agent][period] = utility
		}

		preferences.taskUtilities[agent] = make(map[Task]int64, len(registry.tasks))
		for _, task := range registry.tasks {
			utility, ok := taskUtilities[agent][task]
			if !ok {
				return nil, &MissingPreferenceError{Agent: agent, Task: task}
			}
			if utility > MaxMagnitude || utility < -MaxMagnitude {
				return nil, configurationErrorf("preference of \"%v\" for \"%v\" exceeds %v in magnitude: %v", agent, task, MaxMagnitude, utility)
			}
			preferences.taskUtilities[agent][task] = utility
		}
	}

	// Completeness holds, so any surplus entry references an unknown entity
	for agent, utilities := range periodUtilities {
		for period := range utilities {
			if _, ok := preferences.periodUtilities[agent][period]; !ok {
				return nil, configurationErrorf("period preference references unknown pair (\"%v\", \"%v\")", agent, period)
			}
		}
	}
	for agent, utilities := range taskUtilities {
		for task := range utilities {
			if _, ok := preferences.taskUtilities[agent][task]; !ok {
				return nil, configurationErrorf("task preference references unknown pair (\"%v\", \"%v\")", agent, task)
			}
		}
	}

	return preferences, nil
}

func (preferences *Preferences) PeriodUtility(agent Agent, period Period) (int64, error) {
	utility, ok := preferences.periodUtilities[agent][period]
	if !ok {
		return 0, &MissingPreferenceError{Agent: agent, Period: period}
	}
	return utility, nil
}

func (preferences *Preferences) TaskUtility(agent Agent, task Task) (int64, error) {
	utility, ok := preferences.taskUtilities[agent][task]
	if !ok {
		return 0, &MissingPreferenceError{Agent: agent, Task: task}
	}
	return utility, nil
}

// Utility is the objective coefficient of an assignment: utility(agent, period) + utility(agent, task)
func (preferences *Preferences) Utility(key AssignmentKey) (int64, error) {
	periodUtility, err := preferences.PeriodUtility(key.Agent, key.Period)
	if err != nil {
		return 0, err
	}
	taskUtility, err := preferences.TaskUtility(key.Agent, key.Task)
	if err != nil {
		return 0, err
	}
	return periodUtility + taskUtility, nil
}
