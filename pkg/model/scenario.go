package model

import (
	"github.com/limaJavier/courseload/pkg/milp"
)

// Scenario is one what-if allocation. Inputs may share registry and preferences; they are read-only.
type Scenario struct {
	Name    string
	Input   Input
	Options milp.Options
}

type ScenarioResult struct {
	Name     string
	Report   Report
	Verified bool
	Err      error
}

// RunScenarios allocates every scenario on its own goroutine, each with a freshly built model, and
// returns the results in the order of the scenarios
func RunScenarios(allocator Allocator, scenarios []Scenario) []ScenarioResult {
	type result struct {
		position int
		result   ScenarioResult
	}

	resultsChannel := make(chan result, len(scenarios)) // Channel to collect results
	for position, scenario := range scenarios {
		go func() {
			report, err := allocator.Allocate(scenario.Input, scenario.Options)
			resultsChannel <- result{
				position: position,
				result: ScenarioResult{
					Name:     scenario.Name,
					Report:   report,
					Verified: err == nil && allocator.Verify(report, scenario.Input),
					Err:      err,
				},
			}
		}()
	}

	results := make([]ScenarioResult, len(scenarios))
	for range scenarios {
		collected := <-resultsChannel
		results[collected.position] = collected.result
	}
	return results
}
