package model

// Agent-major layout: index = period + periods*task + periods*tasks*agent
type indexerImplementation struct {
	registry *Registry
	tasks    int
	periods  int
}

func (indexer *indexerImplementation) Index(key AssignmentKey) (int, bool) {
	agent, ok := indexer.registry.AgentPosition(key.Agent)
	if !ok {
		return 0, false
	}
	task, ok := indexer.registry.TaskPosition(key.Task)
	if !ok {
		return 0, false
	}
	period, ok := indexer.registry.PeriodPosition(key.Period)
	if !ok {
		return 0, false
	}
	return period + indexer.periods*task + indexer.periods*indexer.tasks*agent, true
}

func (indexer *indexerImplementation) Key(index int) AssignmentKey {
	period := index % indexer.periods
	index = index / indexer.periods

	task := index % indexer.tasks
	index = index / indexer.tasks

	agent := index

	return AssignmentKey{
		Agent:  indexer.registry.agents[agent],
		Task:   indexer.registry.tasks[task],
		Period: indexer.registry.periods[period],
	}
}

func (indexer *indexerImplementation) Size() int {
	return indexer.registry.Size()
}
