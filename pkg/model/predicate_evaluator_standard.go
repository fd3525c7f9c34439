package model

import (
	"slices"

	"github.com/samber/lo"
)

type predicateEvaluatorStandard struct {
	allowed map[string]map[string]bool // Allowed days per course
}

func (evaluator *predicateEvaluatorStandard) Successive(slots []Slot) bool {
	if len(slots) > MaxSessions || len(lo.Uniq(slots)) != len(slots) {
		return false
	}

	// Positions are compared regardless of their day
	positions := lo.Map(slots, func(slot Slot, _ int) int { return slot.Position })
	slices.Sort(positions)
	for i := 1; i < len(positions); i++ {
		if positions[i]-positions[i-1] > 1 {
			return false
		}
	}
	return true
}

func (evaluator *predicateEvaluatorStandard) WithinDays(slots []Slot) bool {
	days := lo.Uniq(lo.Map(slots, func(slot Slot, _ int) string { return slot.Day }))
	return len(days) <= MaxTeachingDays
}

func (evaluator *predicateEvaluatorStandard) Allowed(course string, slot Slot) bool {
	return evaluator.allowed[course][slot.Day]
}
