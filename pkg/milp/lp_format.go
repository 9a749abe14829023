package milp

import (
	"fmt"
	"strings"
)

const termsPerLine = 6

// ToLP renders the model in CPLEX LP format. Every variable appears in the objective (with a zero
// coefficient if needed) so that solvers numbering columns by first appearance follow Model.Variables' order.
func (model *Model) ToLP() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "\\* %v *\\\n", sanitizeName(model.Name))
	builder.WriteString(model.Sense.String() + "\n")

	//** Objective
	coefficients := make([]int64, len(model.Variables))
	for _, term := range model.Objective {
		coefficients[term.Variable] = term.Coefficient
	}
	objective := make(Expression, len(model.Variables))
	for i := range model.Variables {
		objective[i] = Term{Variable: i, Coefficient: coefficients[i]}
	}
	objectiveName := model.ObjectiveName
	if objectiveName == "" {
		objectiveName = "obj"
	}
	fmt.Fprintf(&builder, " %v:", sanitizeName(objectiveName))
	model.writeExpression(&builder, objective)
	builder.WriteString("\n")

	//** Constraints
	builder.WriteString("Subject To\n")
	for i, constraint := range model.Constraints {
		name := constraint.Name
		if name == "" {
			name = fmt.Sprintf("R%d", i+1)
		}
		fmt.Fprintf(&builder, " %v:", sanitizeName(name))
		model.writeExpression(&builder, constraint.Expression)
		fmt.Fprintf(&builder, " %v %d\n", constraint.Comparison, constraint.RHS)
	}

	//** Bounds (variables default to [0, +inf) in LP format)
	bounds := make([]string, 0)
	for _, variable := range model.Variables {
		name := sanitizeName(variable.Name)
		if variable.Upper != NoUpperBound {
			bounds = append(bounds, fmt.Sprintf(" %d <= %v <= %d", variable.Lower, name, variable.Upper))
		} else if variable.Lower != 0 {
			bounds = append(bounds, fmt.Sprintf(" %v >= %d", name, variable.Lower))
		}
	}
	if len(bounds) > 0 {
		builder.WriteString("Bounds\n")
		builder.WriteString(strings.Join(bounds, "\n") + "\n")
	}

	//** Integrality
	generals := make([]string, 0, len(model.Variables))
	for _, variable := range model.Variables {
		if variable.Integer {
			generals = append(generals, sanitizeName(variable.Name))
		}
	}
	if len(generals) > 0 {
		builder.WriteString("Generals\n")
		for start := 0; start < len(generals); start += termsPerLine {
			end := min(start+termsPerLine, len(generals))
			builder.WriteString(" " + strings.Join(generals[start:end], " ") + "\n")
		}
	}

	builder.WriteString("End\n")
	return builder.String()
}

func (model *Model) writeExpression(builder *strings.Builder, expression Expression) {
	for i, term := range expression {
		if i > 0 && i%termsPerLine == 0 {
			builder.WriteString("\n  ")
		}
		name := sanitizeName(model.Variables[term.Variable].Name)
		if term.Coefficient < 0 {
			fmt.Fprintf(builder, " - %d %v", -term.Coefficient, name)
		} else if i == 0 {
			fmt.Fprintf(builder, " %d %v", term.Coefficient, name)
		} else {
			fmt.Fprintf(builder, " + %d %v", term.Coefficient, name)
		}
	}
}

// minimizationForm returns a copy of the model whose objective is minimised. Objective values of
// the copy are the negation of the original ones when the original model maximises.
func (model *Model) minimizationForm() *Model {
	clone := model.Clone()
	if clone.Sense == Maximize {
		clone.Sense = Minimize
		for i := range clone.Objective {
			clone.Objective[i].Coefficient = -clone.Objective[i].Coefficient
		}
	}
	return clone
}

// sanitizeName maps a name into an identifier accepted by every LP reader we drive
func sanitizeName(name string) string {
	if name == "" {
		return "_"
	}
	var builder strings.Builder
	for i, char := range name {
		isLetter := (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
		isDigit := char >= '0' && char <= '9'
		if i == 0 && isDigit {
			builder.WriteRune('_')
		}
		if isLetter || isDigit || char == '_' {
			builder.WriteRune(char)
		} else {
			builder.WriteRune('_')
		}
	}
	return builder.String()
}
