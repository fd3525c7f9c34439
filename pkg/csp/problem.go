package csp

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyDomain     = errors.New("variable domain is empty")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrEmptyScope      = errors.New("constraint scope is empty")
	ErrInvalidWeight   = errors.New("soft constraint weight must be positive")
)

// Variable identifies a variable within the Problem that created it
type Variable int

// Domain holds the candidate values of a variable in the order the solver tries them
type Domain []int

type registeredConstraint struct {
	constraint Constraint
	soft       bool
	weight     int
}

// Problem is the immutable description of a CSP: variables, their domains and the
// constraint registry. Problems are built once and may be shared by several solvers.
type Problem struct {
	names       []string
	domains     []Domain
	constraints []registeredConstraint
}

func NewProblem() *Problem {
	return &Problem{
		names:       make([]string, 0),
		domains:     make([]Domain, 0),
		constraints: make([]registeredConstraint, 0),
	}
}

// AddVariable registers a variable with a copy of the given domain
func (problem *Problem) AddVariable(name string, domain Domain) (Variable, error) {
	if len(domain) == 0 {
		return -1, fmt.Errorf("%w: %v", ErrEmptyDomain, name)
	}
	problem.names = append(problem.names, name)
	problem.domains = append(problem.domains, slices.Clone(domain))
	return Variable(len(problem.names) - 1), nil
}

// AddConstraint registers a hard constraint
func (problem *Problem) AddConstraint(constraint Constraint) error {
	if err := problem.checkScope(constraint); err != nil {
		return err
	}
	problem.constraints = append(problem.constraints, registeredConstraint{constraint: constraint})
	return nil
}

// AddSoftConstraint registers a constraint whose violation costs weight instead of pruning the search
func (problem *Problem) AddSoftConstraint(constraint Constraint, weight int) error {
	if weight <= 0 {
		return fmt.Errorf("%w: %v (%v)", ErrInvalidWeight, constraint.Name(), weight)
	}
	if err := problem.checkScope(constraint); err != nil {
		return err
	}
	problem.constraints = append(problem.constraints, registeredConstraint{constraint: constraint, soft: true, weight: weight})
	return nil
}

func (problem *Problem) checkScope(constraint Constraint) error {
	scope := constraint.Scope()
	if len(scope) == 0 {
		return fmt.Errorf("%w: %v", ErrEmptyScope, constraint.Name())
	}
	for _, variable := range scope {
		if variable < 0 || int(variable) >= len(problem.names) {
			return fmt.Errorf("%w: %v in constraint %v", ErrUnknownVariable, variable, constraint.Name())
		}
	}
	return nil
}

func (problem *Problem) Variables() int {
	return len(problem.names)
}

func (problem *Problem) Name(variable Variable) string {
	return problem.names[variable]
}

// Domain returns a copy of the variable's domain
func (problem *Problem) Domain(variable Variable) Domain {
	return slices.Clone(problem.domains[variable])
}

func (problem *Problem) Constraints() []Constraint {
	constraints := make([]Constraint, 0, len(problem.constraints))
	for _, registered := range problem.constraints {
		constraints = append(constraints, registered.constraint)
	}
	return constraints
}

// HardConstraints returns the constraints that every solution must satisfy
func (problem *Problem) HardConstraints() []Constraint {
	constraints := make([]Constraint, 0, len(problem.constraints))
	for _, registered := range problem.constraints {
		if !registered.soft {
			constraints = append(constraints, registered.constraint)
		}
	}
	return constraints
}

// Check evaluates a total solution: feasible reports whether all hard constraints and
// domains hold, cost is the summed weight of violated soft constraints
func (problem *Problem) Check(solution Solution) (feasible bool, cost int) {
	if len(solution) != len(problem.names) {
		return false, 0
	}
	for variable, value := range solution {
		if !slices.Contains(problem.domains[variable], value) {
			return false, 0
		}
	}

	feasible = true
	for _, registered := range problem.constraints {
		if registered.constraint.Satisfied(solution.values(registered.constraint.Scope())) {
			continue
		}
		if !registered.soft {
			feasible = false
			continue
		}
		cost += registered.weight
	}
	return feasible, cost
}

// Solution maps every variable (by index) to its value
type Solution []int

func (solution Solution) Value(variable Variable) int {
	return solution[variable]
}

func (solution Solution) values(scope []Variable) []int {
	values := make([]int, len(scope))
	for i, variable := range scope {
		values[i] = solution[variable]
	}
	return values
}
