package milp

import (
	"fmt"
	"io"
	"slices"
	"time"

	log "github.com/golang/glog"
	"github.com/samber/lo"
)

const maxPropagationPasses = 64

type branchAndBoundSolver struct {
	nodeLimit int // Zero stands for no limit; reaching the limit behaves like reaching the time limit
}

// NewBranchAndBoundSolver returns an in-process solver for pure integer models. It explores the
// variables depth-first, tightening bounds by propagating every row, and prunes nodes whose
// objective bound cannot beat the incumbent.
func NewBranchAndBoundSolver() Solver {
	return &branchAndBoundSolver{}
}

func (solver *branchAndBoundSolver) Solve(model *Model, options Options) (Solution, error) {
	if err := model.Validate(); err != nil {
		return Solution{}, err
	}
	if variable, ok := lo.Find(model.Variables, func(variable Variable) bool { return !variable.Integer }); ok {
		return Solution{}, fmt.Errorf("%w: branch and bound supports integer variables only: \"%v\" is continuous", ErrInvalidModel, variable.Name)
	}

	start := time.Now()
	search := newSearch(model, options, start, solver.nodeLimit)

	lower := lo.Map(model.Variables, func(variable Variable, _ int) int64 { return variable.Lower })
	upper := lo.Map(model.Variables, func(variable Variable, _ int) int64 { return variable.Upper })

	//** Root propagation
	if !search.propagate(lower, upper) {
		fmt.Fprintf(search.progress, "bnb: infeasible at the root\n")
		return Solution{Status: Infeasible}, nil
	}

	// Variables propagation could not bound are only acceptable outside of every row
	unbounded := false
	for i, variable := range model.Variables {
		if upper[i] != NoUpperBound {
			continue
		}
		if search.occurrences[i] > 0 {
			return Solution{}, fmt.Errorf("%w: \"%v\"", ErrUnboundedDomain, variable.Name)
		}
		if search.objective[i] > 0 {
			unbounded = true
		}
		upper[i] = lower[i]
	}
	search.stopAtFirst = unbounded

	//** Search
	if search.tick() {
		search.branch(lower, upper)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(search.progress, "bnb: %d nodes in %v\n", search.nodes, elapsed)
	log.V(1).Infof("branch and bound explored %d nodes of model \"%v\" in %v", search.nodes, model.Name, elapsed)

	var status Status
	switch {
	case unbounded && search.found:
		return Solution{Status: Unbounded}, nil
	case search.timedOut && search.found:
		status = FeasibleUnproven
	case search.timedOut:
		return Solution{Status: NotSolved}, nil
	case search.found:
		status = Optimal
	default:
		return Solution{Status: Infeasible}, nil
	}

	return Solution{
		Status:    status,
		Objective: float64(model.Evaluate(search.best)),
		Values:    lo.Map(search.best, func(value int64, _ int) float64 { return float64(value) }),
	}, nil
}

// row is a constraint in range form: lower <= expression <= upper
type row struct {
	terms              []Term
	lower, upper       int64
	hasLower, hasUpper bool
}

type search struct {
	model       *Model
	rows        []row
	objective   []int64 // Coefficients in maximisation direction, indexed by variable
	occurrences []int   // Number of rows each variable appears in
	progress    io.Writer

	// Disjoint rows with positive coefficients and an upper limit; they bound the objective of the
	// variables they cover through their capacity
	packing []int
	covered []bool

	deadline    time.Time
	hasDeadline bool
	nodeLimit   int
	nodes       int
	timedOut    bool
	stopAtFirst bool

	found     bool
	best      []int64
	bestValue int64
}

func newSearch(model *Model, options Options, start time.Time, nodeLimit int) *search {
	direction := int64(1)
	if model.Sense == Minimize {
		direction = -1
	}

	objective := make([]int64, len(model.Variables))
	for _, term := range model.Objective {
		objective[term.Variable] = direction * term.Coefficient
	}

	occurrences := make([]int, len(model.Variables))
	rows := lo.Map(model.Constraints, func(constraint Constraint, _ int) row {
		for _, term := range constraint.Expression {
			occurrences[term.Variable]++
		}
		return row{
			terms:    lo.Filter(constraint.Expression, func(term Term, _ int) bool { return term.Coefficient != 0 }),
			lower:    constraint.RHS,
			upper:    constraint.RHS,
			hasLower: constraint.Comparison != LessOrEqual,
			hasUpper: constraint.Comparison != GreaterOrEqual,
		}
	})

	packing, covered := packingRows(rows, len(model.Variables))

	deadline, hasDeadline := options.deadline(start)
	return &search{
		model:       model,
		rows:        rows,
		objective:   objective,
		occurrences: occurrences,
		packing:     packing,
		covered:     covered,
		progress:    options.progress(),
		deadline:    deadline,
		hasDeadline: hasDeadline,
		nodeLimit:   nodeLimit,
	}
}

// tick accounts for a new node and reports whether the search may continue
func (s *search) tick() bool {
	if s.timedOut {
		return false
	}
	s.nodes++
	if (s.nodeLimit > 0 && s.nodes > s.nodeLimit) || (s.hasDeadline && time.Now().After(s.deadline)) {
		s.timedOut = true
	}
	return !s.timedOut
}

func (s *search) branch(lower, upper []int64) {
	if s.timedOut || (s.stopAtFirst && s.found) {
		return
	}

	if s.found && s.objectiveBound(lower, upper) <= s.bestValue {
		return
	}

	variable := -1
	for i := range lower {
		if lower[i] < upper[i] {
			variable = i
			break
		}
	}

	// Every variable is fixed
	if variable == -1 {
		if len(s.model.Violations(lower)) > 0 {
			return
		}
		s.record(lower)
		return
	}

	// Most promising values first
	value, last, step := upper[variable], lower[variable], int64(-1)
	if s.objective[variable] < 0 {
		value, last, step = lower[variable], upper[variable], 1
	}

	for ; ; value += step {
		if !s.tick() || (s.stopAtFirst && s.found) {
			return
		}
		childLower, childUpper := slices.Clone(lower), slices.Clone(upper)
		childLower[variable], childUpper[variable] = value, value
		if s.propagate(childLower, childUpper) {
			s.branch(childLower, childUpper)
		}
		if value == last {
			return
		}
	}
}

func packingRows(rows []row, variables int) ([]int, []bool) {
	packing, covered := []int{}, make([]bool, variables)
	for i, r := range rows {
		if !r.hasUpper || len(r.terms) == 0 {
			continue
		}
		if lo.SomeBy(r.terms, func(term Term) bool { return term.Coefficient <= 0 || covered[term.Variable] }) {
			continue
		}
		for _, term := range r.terms {
			covered[term.Variable] = true
		}
		packing = append(packing, i)
	}
	return packing, covered
}

// objectiveBound overestimates the best objective inside the box. Every upper bound is finite here.
func (s *search) objectiveBound(lower, upper []int64) int64 {
	var bound int64
	for i, coefficient := range s.objective {
		if s.covered[i] {
			bound += coefficient * lower[i]
		} else {
			bound += max(coefficient*lower[i], coefficient*upper[i])
		}
	}

	// Above their lower bounds the covered variables share the row's remaining capacity
	for _, index := range s.packing {
		r := s.rows[index]
		capacity := r.upper
		for _, term := range r.terms {
			capacity -= term.Coefficient * lower[term.Variable]
		}

		var domainGain, capacityGain int64
		for _, term := range r.terms {
			coefficient := s.objective[term.Variable]
			if coefficient <= 0 {
				continue
			}
			domainGain += coefficient * (upper[term.Variable] - lower[term.Variable])
			capacityGain = max(capacityGain, floorDiv(coefficient*capacity, term.Coefficient))
		}
		bound += min(domainGain, capacityGain)
	}
	return bound
}

func (s *search) record(values []int64) {
	value := lo.SumBy(lo.Range(len(values)), func(i int) int64 { return s.objective[i] * values[i] })
	if s.found && value <= s.bestValue {
		return
	}
	s.found = true
	s.bestValue = value
	s.best = slices.Clone(values)
	fmt.Fprintf(s.progress, "bnb: node %d incumbent %d\n", s.nodes, s.model.Evaluate(values))
}

// propagate tightens the box until no row changes it. Returns false if some row cannot be satisfied.
func (s *search) propagate(lower, upper []int64) bool {
	for range maxPropagationPasses {
		changed := false
		for _, r := range s.rows {
			feasible, rowChanged := r.propagate(lower, upper)
			if !feasible {
				return false
			}
			changed = changed || rowChanged
		}
		if !changed {
			break
		}
	}
	return true
}

// contribution is the extreme value a term can take inside the box
type contribution struct {
	value    int64
	infinite bool
}

func minContribution(coefficient, lower, upper int64) contribution {
	if coefficient > 0 {
		return contribution{value: coefficient * lower}
	} else if upper == NoUpperBound {
		return contribution{infinite: true}
	}
	return contribution{value: coefficient * upper}
}

func maxContribution(coefficient, lower, upper int64) contribution {
	if coefficient < 0 {
		return contribution{value: coefficient * lower}
	} else if upper == NoUpperBound {
		return contribution{infinite: true}
	}
	return contribution{value: coefficient * upper}
}

// residual removes one term from a (sum, infinite terms) activity; false if the rest is still infinite
func residual(sum int64, infinite int, term contribution) (int64, bool) {
	if term.infinite {
		return sum, infinite == 1
	}
	return sum - term.value, infinite == 0
}

func (r row) propagate(lower, upper []int64) (feasible bool, changed bool) {
	var minSum, maxSum int64
	var minInfinite, maxInfinite int
	for _, term := range r.terms {
		minimum := minContribution(term.Coefficient, lower[term.Variable], upper[term.Variable])
		maximum := maxContribution(term.Coefficient, lower[term.Variable], upper[term.Variable])
		if minimum.infinite {
			minInfinite++
		} else {
			minSum += minimum.value
		}
		if maximum.infinite {
			maxInfinite++
		} else {
			maxSum += maximum.value
		}
	}

	if r.hasUpper && minInfinite == 0 && minSum > r.upper {
		return false, false
	}
	if r.hasLower && maxInfinite == 0 && maxSum < r.lower {
		return false, false
	}

	for _, term := range r.terms {
		variable, coefficient := term.Variable, term.Coefficient
		variableLower, variableUpper := lower[variable], upper[variable]

		// coefficient * x <= upper - (minimum activity of the other terms)
		if r.hasUpper {
			if rest, ok := residual(minSum, minInfinite, minContribution(coefficient, variableLower, variableUpper)); ok {
				slack := r.upper - rest
				if coefficient > 0 {
					if bound := floorDiv(slack, coefficient); bound < upper[variable] {
						upper[variable], changed = bound, true
					}
				} else if bound := ceilDiv(-slack, -coefficient); bound > lower[variable] {
					lower[variable], changed = bound, true
				}
			}
		}

		// coefficient * x >= lower - (maximum activity of the other terms)
		if r.hasLower {
			if rest, ok := residual(maxSum, maxInfinite, maxContribution(coefficient, variableLower, variableUpper)); ok {
				need := r.lower - rest
				if coefficient > 0 {
					if bound := ceilDiv(need, coefficient); bound > lower[variable] {
						lower[variable], changed = bound, true
					}
				} else if bound := floorDiv(-need, -coefficient); bound < upper[variable] {
					upper[variable], changed = bound, true
				}
			}
		}

		if lower[variable] > upper[variable] {
			return false, changed
		}
	}

	return true, changed
}

// floorDiv and ceilDiv expect a positive divisor
func floorDiv(dividend, divisor int64) int64 {
	quotient := dividend / divisor
	if dividend%divisor != 0 && dividend < 0 {
		quotient--
	}
	return quotient
}

func ceilDiv(dividend, divisor int64) int64 {
	quotient := dividend / divisor
	if dividend%divisor != 0 && dividend > 0 {
		quotient++
	}
	return quotient
}
