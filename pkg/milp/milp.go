package milp

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
)

// NoUpperBound marks a variable without a declared upper bound
const NoUpperBound int64 = math.MaxInt64

var (
	ErrInvalidModel    = errors.New("invalid model")
	ErrUnboundedDomain = errors.New("variable domain cannot be bounded")
)

type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (sense Sense) String() string {
	if sense == Minimize {
		return "Minimize"
	}
	return "Maximize"
}

type Comparison int

const (
	LessOrEqual Comparison = iota
	Equal
	GreaterOrEqual
)

func (comparison Comparison) String() string {
	switch comparison {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	default:
		return "="
	}
}

type Variable struct {
	Name    string
	Lower   int64
	Upper   int64 // NoUpperBound if the variable is only bounded from below
	Integer bool
}

// Term is Coefficient * Variables[Variable]
type Term struct {
	Variable    int
	Coefficient int64
}

type Expression []Term

type Constraint struct {
	Name       string
	Expression Expression
	Comparison Comparison
	RHS        int64
}

// Model is a linear program over integer coefficients. Solvers treat it as read-only.
type Model struct {
	Name          string
	Sense         Sense
	ObjectiveName string
	Objective     Expression
	Variables     []Variable
	Constraints   []Constraint
}

func NewModel(name string, sense Sense) *Model {
	return &Model{
		Name:        name,
		Sense:       sense,
		Variables:   []Variable{},
		Constraints: []Constraint{},
	}
}

// AddVariable appends a variable and returns its index
func (model *Model) AddVariable(variable Variable) int {
	model.Variables = append(model.Variables, variable)
	return len(model.Variables) - 1
}

func (model *Model) AddConstraint(constraint Constraint) {
	model.Constraints = append(model.Constraints, constraint)
}

func (model *Model) SetObjective(name string, objective Expression) {
	model.ObjectiveName = name
	model.Objective = objective
}

// Validate checks that every term references an existing variable, that bounds are consistent
// and that names are unique once rendered as LP identifiers
func (model *Model) Validate() error {
	if len(model.Variables) == 0 {
		return fmt.Errorf("%w: model \"%v\" has no variables", ErrInvalidModel, model.Name)
	}

	names := make(map[string]string) // Sanitized name -> original name
	for _, variable := range model.Variables {
		if variable.Name == "" {
			return fmt.Errorf("%w: unnamed variable", ErrInvalidModel)
		}
		if variable.Upper < variable.Lower {
			return fmt.Errorf("%w: variable \"%v\" has upper bound %v below lower bound %v", ErrInvalidModel, variable.Name, variable.Upper, variable.Lower)
		}
		sanitized := sanitizeName(variable.Name)
		if previous, ok := names[sanitized]; ok {
			return fmt.Errorf("%w: variables \"%v\" and \"%v\" share the name \"%v\"", ErrInvalidModel, previous, variable.Name, sanitized)
		}
		names[sanitized] = variable.Name
	}

	if err := model.validateExpression(model.ObjectiveName, model.Objective); err != nil {
		return err
	}

	rowNames := make(map[string]bool)
	for i, constraint := range model.Constraints {
		if constraint.Name != "" {
			sanitized := sanitizeName(constraint.Name)
			if rowNames[sanitized] {
				return fmt.Errorf("%w: duplicate constraint name \"%v\"", ErrInvalidModel, constraint.Name)
			}
			rowNames[sanitized] = true
		}
		if len(constraint.Expression) == 0 {
			return fmt.Errorf("%w: constraint %v (\"%v\") is empty", ErrInvalidModel, i, constraint.Name)
		}
		if err := model.validateExpression(constraint.Name, constraint.Expression); err != nil {
			return err
		}
	}
	return nil
}

func (model *Model) validateExpression(name string, expression Expression) error {
	seen := make(map[int]bool)
	for _, term := range expression {
		if term.Variable < 0 || term.Variable >= len(model.Variables) {
			return fmt.Errorf("%w: \"%v\" references unknown variable %v", ErrInvalidModel, name, term.Variable)
		}
		if seen[term.Variable] {
			return fmt.Errorf("%w: \"%v\" references variable \"%v\" twice", ErrInvalidModel, name, model.Variables[term.Variable].Name)
		}
		seen[term.Variable] = true
	}
	return nil
}

// Evaluate returns the objective value of an integral assignment
func (model *Model) Evaluate(values []int64) int64 {
	return evaluate(model.Objective, values)
}

// Violations returns the names (or positions) of the constraints the assignment does not satisfy,
// including variable bounds
func (model *Model) Violations(values []int64) []string {
	violations := make([]string, 0)
	for i, variable := range model.Variables {
		if values[i] < variable.Lower || values[i] > variable.Upper {
			violations = append(violations, variable.Name)
		}
	}
	for i, constraint := range model.Constraints {
		if !constraint.Satisfied(values) {
			violations = append(violations, lo.Ternary(constraint.Name != "", constraint.Name, fmt.Sprintf("R%d", i+1)))
		}
	}
	return violations
}

func (constraint Constraint) Satisfied(values []int64) bool {
	activity := evaluate(constraint.Expression, values)
	switch constraint.Comparison {
	case LessOrEqual:
		return activity <= constraint.RHS
	case GreaterOrEqual:
		return activity >= constraint.RHS
	default:
		return activity == constraint.RHS
	}
}

// Clone returns a deep copy of the model
func (model *Model) Clone() *Model {
	clone := &Model{
		Name:          model.Name,
		Sense:         model.Sense,
		ObjectiveName: model.ObjectiveName,
		Objective:     cloneExpression(model.Objective),
		Variables:     make([]Variable, len(model.Variables)),
		Constraints:   make([]Constraint, len(model.Constraints)),
	}
	copy(clone.Variables, model.Variables)
	for i, constraint := range model.Constraints {
		constraint.Expression = cloneExpression(constraint.Expression)
		clone.Constraints[i] = constraint
	}
	return clone
}

func cloneExpression(expression Expression) Expression {
	if expression == nil {
		return nil
	}
	clone := make(Expression, len(expression))
	copy(clone, expression)
	return clone
}

func evaluate(expression Expression, values []int64) int64 {
	return lo.SumBy(expression, func(term Term) int64 {
		return term.Coefficient * values[term.Variable]
	})
}

func evaluateFloat(expression Expression, values []float64) float64 {
	return lo.SumBy(expression, func(term Term) float64 {
		return float64(term.Coefficient) * values[term.Variable]
	})
}
