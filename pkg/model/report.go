package model

import (
	"github.com/google/uuid"
	"github.com/limaJavier/courseload/pkg/milp"
)

// Assignment states that Agent teaches Count sections of Task in Period
type Assignment struct {
	Agent  Agent  `json:"agent"`
	Period Period `json:"period"`
	Task   Task   `json:"task"`
	Count  int64  `json:"count"`
}

// Report is the typed outcome of an allocation. Assignments are sorted by registry order of
// (Agent, Period, Task) and are empty unless the status carries a solution.
type Report struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Status      milp.Status  `json:"-"`
	StatusName  string       `json:"status"`
	Objective   int64        `json:"objective"`
	Assignments []Assignment `json:"assignments"`
}

func newReport(name string, status milp.Status, objective int64, assignments []Assignment) Report {
	if assignments == nil {
		assignments = []Assignment{}
	}
	return Report{
		ID:          uuid.NewString(),
		Name:        name,
		Status:      status,
		StatusName:  status.String(),
		Objective:   objective,
		Assignments: assignments,
	}
}

// HasSolution reports whether the report carries an allocation
func (report Report) HasSolution() bool {
	return report.Status.HasSolution()
}
