package model

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/limaJavier/sessiontable/pkg/csp"
	"go.uber.org/zap"
)

type backtrackingTimetabler struct {
	options options
}

func NewBacktrackingTimetabler(opts ...Option) Timetabler {
	return &backtrackingTimetabler{
		options: newOptions(opts),
	}
}

func (timetabler *backtrackingTimetabler) Build(ctx context.Context, modelInput ModelInput) (Timetable, error) {
	runID := uuid.NewString()
	logger := timetabler.options.logger.With(zap.String("run", runID), zap.String("strategy", "backtracking"))

	//** Build model
	model, err := BuildModel(modelInput, timetabler.options.build)
	if err != nil {
		return Timetable{}, err
	}
	logger.Debug("model built",
		zap.Int("variables", model.Problem.Variables()),
		zap.Int("constraints", len(model.Problem.Constraints())),
	)

	//** Solve
	solverOptions := slices.Concat(timetabler.options.solverOptions, []csp.Option{csp.WithLogger(logger)})
	if timetabler.options.trace != nil {
		solverOptions = append(solverOptions, csp.WithTracer(csp.LoggingTracer{Writer: timetabler.options.trace, Problem: model.Problem}))
	}
	result := csp.NewSolver(model.Problem, solverOptions...).Solve(ctx)

	timetable := Timetable{
		RunID:      runID,
		Status:     result.Status,
		Violations: result.Violations,
		Stats: Stats{
			Variables:   model.Problem.Variables(),
			Constraints: len(model.Problem.Constraints()),
			Nodes:       result.Stats.Nodes,
			Backtracks:  result.Stats.Backtracks,
			Duration:    result.Stats.Duration,
		},
	}
	if result.Status == csp.Solved {
		timetable.Entries = model.Decode(result.Solution)
	}

	logger.Info("timetable built",
		zap.Stringer("status", timetable.Status),
		zap.Int("violations", timetable.Violations),
		zap.Duration("duration", timetable.Stats.Duration),
	)
	return timetable, nil
}

func (timetabler *backtrackingTimetabler) Verify(timetable Timetable, modelInput ModelInput) bool {
	return verify(timetable, modelInput, timetabler.options.build)
}
