package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

const pollInterval = 10 * time.Millisecond

type giniSolver struct{}

// NewGiniSolver returns an in-process solver. Every call to Solve owns a fresh gini instance.
func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	}

	g := gini.New()
	var maxVariable int64
	for _, clause := range sat.Clauses {
		for _, literal := range clause {
			g.Add(toLit(literal))
			maxVariable = max(maxVariable, abs(literal))
		}
		g.Add(0)
	}

	result, err := solve(ctx, g)
	if err != nil {
		return nil, err
	}
	if result != 1 {
		return nil, nil
	}

	solution := make(SATSolution, 0, sat.Variables)
	for variable := int64(1); variable <= int64(sat.Variables); variable++ {
		// Variables absent from every clause are unconstrained, report them as false
		if variable <= maxVariable && g.Value(z.Var(variable).Pos()) {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}

func solve(ctx context.Context, g *gini.Gini) (int, error) {
	if ctx.Done() == nil {
		return g.Solve(), nil
	}

	process := g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if result, done := process.Test(); done {
			return result, nil
		}
		select {
		case <-ctx.Done():
			process.Stop()
			return 0, ErrInterrupted
		case <-ticker.C:
		}
	}
}

func toLit(literal int64) z.Lit {
	if literal < 0 {
		return z.Var(-literal).Neg()
	}
	return z.Var(literal).Pos()
}

func abs(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
