package csp

import (
	"fmt"
	"slices"
	"strings"
)

// Constraint is a named predicate over an ordered tuple of variables.
// Implementations must be pure: the solver only calls Satisfied once every variable of the
// scope is assigned and may call it from several goroutines at once.
type Constraint interface {
	Name() string
	// Scope returns the variables the constraint reads, in the order of Satisfied's values
	Scope() []Variable
	// Checks whether the values (one per scope variable) satisfy the constraint
	Satisfied(values []int) bool
}

// Predicate evaluates the values of a constraint's scope
type Predicate func(values []int) bool

type predicateConstraint struct {
	name      string
	scope     []Variable
	predicate Predicate
}

func NewPredicate(name string, scope []Variable, predicate Predicate) Constraint {
	return &predicateConstraint{
		name:      name,
		scope:     slices.Clone(scope),
		predicate: predicate,
	}
}

func (constraint *predicateConstraint) Name() string { return constraint.name }

func (constraint *predicateConstraint) Scope() []Variable { return slices.Clone(constraint.scope) }

func (constraint *predicateConstraint) Satisfied(values []int) bool {
	return constraint.predicate(values)
}

func (constraint *predicateConstraint) String() string {
	return describe(constraint.name, constraint.scope)
}

// AllDistinct requires every variable of its scope to take a pairwise different value
type AllDistinct struct {
	name  string
	scope []Variable
}

func NewAllDistinct(name string, scope []Variable) *AllDistinct {
	return &AllDistinct{
		name:  name,
		scope: slices.Clone(scope),
	}
}

func (constraint *AllDistinct) Name() string { return constraint.name }

func (constraint *AllDistinct) Scope() []Variable { return slices.Clone(constraint.scope) }

// Satisfied stops at the first collision
func (constraint *AllDistinct) Satisfied(values []int) bool {
	// Small scopes are scanned pairwise
	if len(values) <= 8 {
		for i := range len(values) - 1 {
			for j := i + 1; j < len(values); j++ {
				if values[i] == values[j] {
					return false
				}
			}
		}
		return true
	}

	seen := make(map[int]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			return false
		}
		seen[value] = struct{}{}
	}
	return true
}

func (constraint *AllDistinct) String() string {
	return describe(constraint.name, constraint.scope)
}

func describe(name string, scope []Variable) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%v(", name)
	for i, variable := range scope {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "%d", variable)
	}
	builder.WriteString(")")
	return builder.String()
}
