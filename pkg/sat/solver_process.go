package sat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// processSolver feeds the DIMACS rendering of an instance to an external solver's standard input.
// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable.
type processSolver struct {
	name      string
	configKey string
	args      []string
}

func NewKissatSolver() SATSolver {
	return &processSolver{name: "kissat", configKey: "kissatPath", args: []string{"-q", "--relaxed"}}
}

func NewCadicalSolver() SATSolver {
	return &processSolver{name: "cadical", configKey: "cadicalPath", args: []string{"-q"}}
}

func (solver *processSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	path, err := ExecutablePath(solver.configKey)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, solver.args...)
	cmd.Stdin = strings.NewReader(sat.ToDIMACS())

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	}

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	switch {
	case exitCode == 20:
		return nil, nil
	case exitCode == 10:
		return parseSolution(stdOut.String())
	case err != nil:
		return nil, fmt.Errorf("an error occurred during %v execution: %w: %v", solver.name, err, stderr.String())
	default:
		return nil, fmt.Errorf("%v finished without a result (exit code %d)", solver.name, exitCode)
	}
}
