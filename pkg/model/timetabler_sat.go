package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/limaJavier/sessiontable/pkg/sat"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type satTimetabler struct {
	solver  sat.SATSolver
	options options
}

// NewSatTimetabler encodes the hard rules as CNF. Soft rules are not encoded, the
// timetable only reports their violations.
func NewSatTimetabler(solver sat.SATSolver, opts ...Option) Timetabler {
	return &satTimetabler{
		solver:  solver,
		options: newOptions(opts),
	}
}

func (timetabler *satTimetabler) Build(ctx context.Context, modelInput ModelInput) (Timetable, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := timetabler.options.logger.With(zap.String("run", runID), zap.String("strategy", "sat"))

	//** Build model
	model, err := BuildModel(modelInput, timetabler.options.build)
	if err != nil {
		return Timetable{}, err
	}

	//** Initialize dependencies
	totalSessions, totalSlots := uint64(len(model.Sessions)), uint64(model.Catalog.Len())
	indexer := newIndexer(totalSessions, totalSlots)

	//** Build SAT instance
	variables := totalSessions * totalSlots

	// Constraints functions
	constraints := []func(state constraintState) [][]int64{
		completenessConstraints,
		uniquenessConstraints,
		negationConstraints,
		distinctConstraints,
		ruleConstraints,
	}

	state := constraintState{
		model:    model,
		indexer:  indexer,
		sessions: totalSessions,
		slots:    totalSlots,
	}

	satInstance, explicitVariables := buildSat(variables, constraints, state)
	logger.Debug("sat instance built",
		zap.Uint64("variables", satInstance.Variables),
		zap.Int("clauses", len(satInstance.Clauses)),
	)

	timetable := Timetable{
		RunID: runID,
		Stats: Stats{
			Variables:   model.Problem.Variables(),
			Constraints: len(model.Problem.Constraints()),
			Clauses:     len(satInstance.Clauses),
		},
	}

	//** Solve SAT instance
	solution, err := timetabler.solver.Solve(ctx, satInstance)
	timetable.Stats.Duration = time.Since(start)
	switch {
	case errors.Is(err, sat.ErrInterrupted):
		timetable.Status = csp.Inconclusive
	case err != nil:
		return Timetable{}, err
	case solution == nil: // The SAT instance is not satisfiable
		timetable.Status = csp.NoSolution
	default:
		values, err := decodeSolution(solution, explicitVariables, indexer, len(model.Sessions))
		if err != nil {
			return Timetable{}, err
		}
		feasible, cost := model.Problem.Check(values)
		if !feasible {
			return Timetable{}, fmt.Errorf("sat solver returned an assignment that breaks a hard rule")
		}
		timetable.Status = csp.Solved
		timetable.Entries = model.Decode(values)
		timetable.Violations = cost
	}

	logger.Info("timetable built",
		zap.Stringer("status", timetable.Status),
		zap.Int("clauses", timetable.Stats.Clauses),
		zap.Int("violations", timetable.Violations),
		zap.Duration("duration", timetable.Stats.Duration),
	)
	return timetable, nil
}

func (timetabler *satTimetabler) Verify(timetable Timetable, modelInput ModelInput) bool {
	return verify(timetable, modelInput, timetabler.options.build)
}

func decodeSolution(solution sat.SATSolution, explicitVariables map[int64]bool, indexer indexer, sessions int) (csp.Solution, error) {
	values := make(csp.Solution, sessions)
	for i := range values {
		values[i] = unassignedValue
	}

	for _, variable := range solution {
		// Acknowledge only positive variables that are explicitly stated in the clauses
		if variable > 0 && explicitVariables[variable] {
			session, slot := indexer.Attributes(uint64(variable))
			if values[session] != unassignedValue {
				return nil, fmt.Errorf("session %d was assigned more than one slot", session)
			}
			values[session] = int(slot)
		}
	}

	if lo.Contains(values, unassignedValue) {
		return nil, fmt.Errorf("sat solver returned an incomplete assignment")
	}
	return values, nil
}
