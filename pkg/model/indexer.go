package model

// AssignmentKey identifies the decision variable counting sections of Task taught by Agent in Period
type AssignmentKey struct {
	Agent  Agent
	Task   Task
	Period Period
}

// indexer interface is designed to give a unique variable index to an assignment key and vice versa
type indexer interface {
	// Returns the unique variable index of an assignment key (false if the key names unknown entities)
	Index(key AssignmentKey) (int, bool)
	// Returns the assignment key of a variable index
	Key(index int) AssignmentKey
	// Returns the number of variables
	Size() int
}

func newIndexer(registry *Registry) indexer {
	return &indexerImplementation{
		registry: registry,
		tasks:    len(registry.tasks),
		periods:  len(registry.periods),
	}
}
