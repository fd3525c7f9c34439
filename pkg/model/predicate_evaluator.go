package model

const (
	// Most sessions a course may hold
	MaxSessions = 3
	// Most distinct days a course's sessions may span
	MaxTeachingDays = 2
)

// predicateEvaluator holds the scheduling rules over slots, shared by the model builder and the verifier
type predicateEvaluator interface {
	// Checks whether the slots hold no duplicate, at most MaxSessions entries and positions that form an unbroken run once sorted
	Successive(slots []Slot) bool

	// Checks whether the slots span at most MaxTeachingDays distinct days
	WithinDays(slots []Slot) bool

	// Checks whether course may be taught on the slot's day
	Allowed(course string, slot Slot) bool
}

func newPredicateEvaluator(modelInput ModelInput) predicateEvaluator {
	allowed := make(map[string]map[string]bool)
	for _, course := range modelInput.Courses {
		allowed[course.Name] = make(map[string]bool)
		for _, day := range course.Days {
			allowed[course.Name][day] = true
		}
	}
	return &predicateEvaluatorStandard{allowed: allowed}
}
