package model

import (
	"fmt"
	"slices"

	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/samber/lo"
)

type BuildOptions struct {
	// Register the day-spread rule as a soft constraint instead of a hard one
	SoftDaySpread bool
	// Cost of violating a soft day-spread rule, defaults to 1
	DaySpreadWeight int
	// Register one all-distinct constraint per session kind over every course instead of one per course pair
	GlobalDistinct bool
}

// Model is the constraint problem built from a request: one variable per session whose
// values are catalog slot indices
type Model struct {
	Catalog  *Catalog
	Problem  *csp.Problem
	Sessions []Session // Indexed by csp.Variable

	variables map[Session]csp.Variable
}

func BuildModel(modelInput ModelInput, options BuildOptions) (*Model, error) {
	if err := modelInput.Validate(); err != nil {
		return nil, err
	}
	if options.DaySpreadWeight <= 0 {
		options.DaySpreadWeight = 1
	}

	catalog := modelInput.Catalog
	evaluator := newPredicateEvaluator(modelInput)
	model := &Model{
		Catalog:   catalog,
		Problem:   csp.NewProblem(),
		Sessions:  make([]Session, 0),
		variables: make(map[Session]csp.Variable),
	}

	//** Register variables
	courseVariables := make(map[string][]csp.Variable)
	for _, course := range modelInput.Courses {
		domain := csp.Domain(catalog.IndicesOf(course.Days))
		for _, session := range course.Sessions() {
			variable, err := model.Problem.AddVariable(session.String(), domain)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			model.Sessions = append(model.Sessions, session)
			model.variables[session] = variable
			courseVariables[course.Name] = append(courseVariables[course.Name], variable)
		}
	}

	toSlots := func(values []int) []Slot {
		return lo.Map(values, func(value int, _ int) Slot { return catalog.Slot(value) })
	}

	constraints := make([]csp.Constraint, 0)

	//** Succession
	for _, course := range modelInput.Courses {
		constraints = append(constraints, csp.NewPredicate(
			fmt.Sprintf("succession(%v)", course.Name),
			courseVariables[course.Name],
			func(values []int) bool { return evaluator.Successive(toSlots(values)) },
		))
	}

	//** Distinct sessions
	for _, course := range modelInput.Courses {
		constraints = append(constraints, csp.NewAllDistinct(
			fmt.Sprintf("distinct-sessions(%v)", course.Name),
			courseVariables[course.Name],
		))
	}

	//** Cross course
	for _, kind := range []SessionKind{Lecture, Tutorial, Practical} {
		holders := lo.Filter(modelInput.Courses, func(course Course, _ int) bool {
			return slices.Contains(course.Kinds(), kind)
		})

		if options.GlobalDistinct {
			if len(holders) < 2 {
				continue
			}
			constraints = append(constraints, csp.NewAllDistinct(
				fmt.Sprintf("cross-course-%v", kind),
				lo.Map(holders, func(course Course, _ int) csp.Variable {
					return model.variables[Session{Course: course.Name, Kind: kind}]
				}),
			))
			continue
		}

		for i := range holders {
			for j := i + 1; j < len(holders); j++ {
				first := Session{Course: holders[i].Name, Kind: kind}
				second := Session{Course: holders[j].Name, Kind: kind}
				constraints = append(constraints, csp.NewAllDistinct(
					fmt.Sprintf("cross-course-%v(%v, %v)", kind, first.Course, second.Course),
					[]csp.Variable{model.variables[first], model.variables[second]},
				))
			}
		}
	}

	for _, constraint := range constraints {
		if err := model.Problem.AddConstraint(constraint); err != nil {
			return nil, err
		}
	}

	//** Day spread
	for _, course := range modelInput.Courses {
		constraint := csp.NewPredicate(
			fmt.Sprintf("day-spread(%v)", course.Name),
			courseVariables[course.Name],
			func(values []int) bool { return evaluator.WithinDays(toSlots(values)) },
		)

		var err error
		if options.SoftDaySpread {
			err = model.Problem.AddSoftConstraint(constraint, options.DaySpreadWeight)
		} else {
			err = model.Problem.AddConstraint(constraint)
		}
		if err != nil {
			return nil, err
		}
	}

	return model, nil
}

// Variable returns the variable standing for session
func (model *Model) Variable(session Session) (csp.Variable, bool) {
	variable, ok := model.variables[session]
	return variable, ok
}

// Decode turns a solution into timetable entries sorted by slot, then by session registration order
func (model *Model) Decode(solution csp.Solution) []Entry {
	entries := make([]Entry, 0, len(model.Sessions))
	order := make(map[Session]int)
	for variable, session := range model.Sessions {
		order[session] = variable
		entries = append(entries, Entry{
			Course: session.Course,
			Kind:   session.Kind,
			Slot:   model.Catalog.Slot(solution.Value(csp.Variable(variable))),
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if comparison := a.Slot.Compare(b.Slot); comparison != 0 {
			return comparison
		}
		return order[a.Session()] - order[b.Session()]
	})
	return entries
}
