package model

import (
	"slices"

	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/limaJavier/sessiontable/pkg/sat"
	"github.com/samber/lo"
)

// verify checks a timetable against the request without going through a model
func verify(timetable Timetable, modelInput ModelInput, options BuildOptions) bool {
	if timetable.Status != csp.Solved || modelInput.Validate() != nil {
		return false
	}

	//** Initialize dependencies
	evaluator := newPredicateEvaluator(modelInput)
	catalog := modelInput.Catalog

	//** Collect the slots taken by every session
	expected := make(map[Session]bool)
	for _, course := range modelInput.Courses {
		for _, session := range course.Sessions() {
			expected[session] = true
		}
	}

	taken := make(map[Session]Slot)
	for _, entry := range timetable.Entries {
		session := entry.Session()
		_, alreadyTaken := taken[session]
		_, known := catalog.Index(entry.Slot)

		// Check that:
		// - The session belongs to the request
		// - The session is scheduled only once
		// - The slot exists in the catalog
		// - The course may be taught on the slot's day
		if !expected[session] ||
			alreadyTaken ||
			!known ||
			!evaluator.Allowed(entry.Course, entry.Slot) {
			return false
		}
		taken[session] = entry.Slot
	}
	if len(taken) != len(expected) {
		return false
	}

	//** Check course rules
	for _, course := range modelInput.Courses {
		slots := lo.Map(course.Sessions(), func(session Session, _ int) Slot { return taken[session] })
		if !evaluator.Successive(slots) {
			return false
		}
		if !options.SoftDaySpread && !evaluator.WithinDays(slots) {
			return false
		}
	}

	//** Check that sessions of the same kind never share a slot across courses
	for _, kind := range []SessionKind{Lecture, Tutorial, Practical} {
		used := make(map[Slot]bool)
		for session, slot := range taken {
			if session.Kind != kind {
				continue
			}
			if used[slot] {
				return false
			}
			used[slot] = true
		}
	}
	return true
}

func buildSat(variables uint64, constraints []func(state constraintState) [][]int64, state constraintState) (satInstance sat.SAT, explicitVariables map[int64]bool) {
	satInstance = sat.SAT{
		Variables: variables,
		Clauses:   [][]int64{},
	}

	type family struct {
		index   int
		clauses [][]int64
	}

	explicitVariables = make(map[int64]bool) // Variables that are explicitly stated in the clauses
	familiesChannel := make(chan family)     // Channel to collect constraints

	// Execute constraints functions on different goroutines to improve performance
	for index, constraint := range constraints {
		go func() {
			familiesChannel <- family{index: index, clauses: constraint(state)}
		}()
	}

	// Collect generated constraints, keeping the order of the constraints functions so
	// that the instance does not depend on goroutine scheduling
	families := make([][][]int64, len(constraints))
	for range constraints {
		collected := <-familiesChannel
		families[collected.index] = collected.clauses
	}

	for _, clauses := range families {
		for _, clause := range clauses {
			for _, variable := range clause {
				// Check whether the variable is positive, since required explicit variables ought to be positive
				if variable > 0 {
					explicitVariables[variable] = true
				}
			}
		}
		satInstance.Clauses = slices.Concat(satInstance.Clauses, clauses)
	}

	return satInstance, explicitVariables
}
