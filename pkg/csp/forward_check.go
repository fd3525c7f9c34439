package csp

import (
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// feasible checks that every hard all-distinct constraint containing variable can still be
// completed: the unassigned variables of its scope must admit a matching into the values
// not taken by the assigned ones
func (solver *Solver) feasible(plan plan, state *searchState, variable Variable) bool {
	for _, index := range plan.distinct[variable] {
		taken := make(map[int]bool)
		assigned := 0
		free := make([]Variable, 0)
		for _, scoped := range plan.scopes[index] {
			if value := state.values[scoped]; value != unassigned {
				taken[value] = true
				assigned++
			} else {
				free = append(free, scoped)
			}
		}

		// Two assigned variables already collide
		if len(taken) < assigned {
			return false
		}
		if len(free) == 0 {
			continue
		}

		candidates := make([][]int, len(free))
		for i, scoped := range free {
			candidates[i] = lo.Filter(solver.problem.domains[scoped], func(value int, _ int) bool {
				return !taken[value]
			})
			if len(candidates[i]) == 0 {
				return false
			}
		}

		if len(free) > 1 && !matchable(candidates) {
			return false
		}
	}
	return true
}

// matchable reports whether each candidate list can be given a distinct value of its own
func matchable(candidates [][]int) bool {
	values := lo.Uniq(lo.Flatten(candidates))
	if len(values) < len(candidates) {
		return false
	}
	slices.Sort(values)

	left := lo.Map(candidates, func(_ []int, i int) any { return i })
	right := lo.Map(values, func(value int, _ int) any { return value })

	neighbors := func(leftAny any, rightAny any) (bool, error) {
		return slices.Contains(candidates[leftAny.(int)], rightAny.(int)), nil
	}

	graph, err := bipartitegraph.NewBipartiteGraph(left, right, neighbors)
	if err != nil {
		// The neighbors predicate never fails, keep searching without pruning
		return true
	}
	return len(graph.LargestMatching()) == len(candidates)
}
