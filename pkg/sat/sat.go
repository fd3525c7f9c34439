package sat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInterrupted is returned when the context ends before the solver decides the instance
var ErrInterrupted = errors.New("sat solve interrupted")

// SATSolution holds one signed literal per variable, positive when the variable is true
type SATSolution []int64

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (both are valid outputs where error shall be nil)
	Solve(ctx context.Context, sat SAT) (SATSolution, error)
}
