package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/limaJavier/courseload/pkg/model"
	"github.com/samber/lo"
)

const columnWidth = 16

// FormatTable writes the report as a fixed-width table with the columns PROFESSOR, SEMESTER,
// COURSE and SECTIONS. Returns the number of rows written.
func FormatTable(w io.Writer, report model.Report) int {
	fmt.Fprintf(w, "Allocation '%s' (%s", report.Name, report.StatusName)
	if report.HasSolution() {
		fmt.Fprintf(w, ", satisfaction %d", report.Objective)
	}
	fmt.Fprintf(w, ")\n")

	if len(report.Assignments) == 0 {
		fmt.Fprintf(w, "No assignments found\n")
		return 0
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "%-16s %-16s %-16s %s\n", "PROFESSOR", "SEMESTER", "COURSE", "SECTIONS")
	fmt.Fprintf(w, "%-16s %-16s %-16s %s\n", "----------------", "----------------", "----------------", "--------")
	for _, assignment := range report.Assignments {
		fmt.Fprintf(w, "%-16s %-16s %-16s %d\n",
			truncate(string(assignment.Agent)),
			truncate(string(assignment.Period)),
			truncate(string(assignment.Task)),
			assignment.Count,
		)
	}

	sections := lo.SumBy(report.Assignments, func(assignment model.Assignment) int64 { return assignment.Count })
	fmt.Fprintf(w, "\n%d %s, %d %s\n",
		len(report.Assignments), plural(len(report.Assignments), "assignment"),
		sections, plural(int(sections), "section"),
	)
	return len(report.Assignments)
}

// FormatJSON writes the report as pretty-printed JSON
func FormatJSON(w io.Writer, report model.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatSummary writes the entity counts and model dimensions of a built problem
func FormatSummary(w io.Writer, problem *model.Problem) {
	registry := problem.Registry
	fmt.Fprintf(w, "Model '%s'\n\n", problem.Model.Name)
	fmt.Fprintf(w, "%-16s %d\n", "Professors", len(registry.Agents()))
	fmt.Fprintf(w, "%-16s %d\n", "Courses", len(registry.Tasks()))
	fmt.Fprintf(w, "%-16s %d\n", "Semesters", len(registry.Periods()))
	fmt.Fprintf(w, "%-16s %d\n", "Variables", len(problem.Model.Variables))
	fmt.Fprintf(w, "%-16s %d\n", "Constraints", len(problem.Model.Constraints))
}

// truncate shortens names wider than a column, keeping an ellipsis
func truncate(name string) string {
	runes := []rune(name)
	if len(runes) <= columnWidth {
		return name
	}
	return string(runes[:columnWidth-3]) + "..."
}

func plural(count int, noun string) string {
	if count == 1 {
		return noun
	}
	return noun + "s"
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
