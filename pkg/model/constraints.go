package model

import (
	"slices"

	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/samber/lo"
)

type constraintState struct {
	model   *Model
	indexer indexer

	sessions,
	slots uint64
}

func (state constraintState) literal(variable csp.Variable, slot int) int64 {
	return int64(state.indexer.Index(uint64(variable), uint64(slot)))
}

// Every session takes at least one slot of its domain
func completenessConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0, state.sessions)
	for variable := range state.model.Sessions {
		domain := state.model.Problem.Domain(csp.Variable(variable))
		clauses = append(clauses, lo.Map(domain, func(slot int, _ int) int64 {
			return state.literal(csp.Variable(variable), slot)
		}))
	}
	return clauses
}

// Every session takes at most one slot of its domain
func uniquenessConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for variable := range state.model.Sessions {
		domain := state.model.Problem.Domain(csp.Variable(variable))
		for i := range domain {
			for j := i + 1; j < len(domain); j++ {
				clauses = append(clauses, []int64{
					-state.literal(csp.Variable(variable), domain[i]),
					-state.literal(csp.Variable(variable), domain[j]),
				})
			}
		}
	}
	return clauses
}

// No session takes a slot outside its domain
func negationConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for variable := range state.model.Sessions {
		domain := state.model.Problem.Domain(csp.Variable(variable))
		for slot := range int(state.slots) {
			if !slices.Contains(domain, slot) {
				clauses = append(clauses, []int64{-state.literal(csp.Variable(variable), slot)})
			}
		}
	}
	return clauses
}

// No two variables of an all-distinct scope share a slot
func distinctConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for _, constraint := range state.model.Problem.HardConstraints() {
		if _, ok := constraint.(*csp.AllDistinct); !ok {
			continue
		}

		scope := constraint.Scope()
		for i := range scope {
			for j := i + 1; j < len(scope); j++ {
				common := lo.Intersect(state.model.Problem.Domain(scope[i]), state.model.Problem.Domain(scope[j]))
				for _, slot := range common {
					clauses = append(clauses, []int64{
						-state.literal(scope[i], slot),
						-state.literal(scope[j], slot),
					})
				}
			}
		}
	}
	return clauses
}

// Every tuple violating a hard predicate constraint is blocked
func ruleConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for _, constraint := range state.model.Problem.HardConstraints() {
		if _, ok := constraint.(*csp.AllDistinct); ok {
			continue
		}

		scope := constraint.Scope()
		domains := lo.Map(scope, func(variable csp.Variable, _ int) []int {
			return state.model.Problem.Domain(variable)
		})

		generator := newTupleGenerator(domains)
		violations := generator.ConstrainedTuples([]func(tuple []int) bool{
			func(tuple []int) bool {
				// Partial tuples are kept until the predicate can be evaluated
				return slices.Contains(tuple, unassignedValue) || !constraint.Satisfied(tuple)
			},
		})

		for _, tuple := range violations {
			clauses = append(clauses, lo.Map(tuple, func(slot int, i int) int64 {
				return -state.literal(scope[i], slot)
			}))
		}
	}
	return clauses
}
