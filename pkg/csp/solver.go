package csp

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
)

const unassigned = -1

type Status int

const (
	// A total assignment satisfying every hard constraint was found
	Solved Status = iota
	// The search space was exhausted without a solution
	NoSolution
	// The search was cancelled (context or node limit) before it could decide
	Inconclusive
)

func (status Status) String() string {
	switch status {
	case Solved:
		return "solved"
	case NoSolution:
		return "no-solution"
	case Inconclusive:
		return "inconclusive"
	}
	return "unknown"
}

// Ordering selects the order in which variables are assigned
type Ordering int

const (
	RegistrationOrdering Ordering = iota
	// Static ordering keeping constraint scopes together, smaller domains and more
	// constrained variables first among equally connected ones
	DegreeOrdering
)

type Stats struct {
	Nodes      uint64 // Candidate values tried
	Backtracks uint64 // Exhausted decision points
	Duration   time.Duration
}

type Result struct {
	Status     Status
	Solution   Solution // nil unless Status is Solved
	Violations int      // Summed weight of the soft constraints the solution violates
	Stats      Stats
}

type Option func(*Solver)

func WithOrdering(ordering Ordering) Option {
	return func(solver *Solver) { solver.ordering = ordering }
}

// WithNodeLimit bounds the number of candidate values tried; zero means unbounded
func WithNodeLimit(nodes uint64) Option {
	return func(solver *Solver) { solver.nodeLimit = nodes }
}

// WithForwardChecking enables a matching-based feasibility check of every all-distinct
// constraint touched by an assignment
func WithForwardChecking(enabled bool) Option {
	return func(solver *Solver) { solver.forwardChecking = enabled }
}

func WithTracer(tracer Tracer) Option {
	return func(solver *Solver) { solver.tracer = tracer }
}

func WithLogger(logger *zap.Logger) Option {
	return func(solver *Solver) { solver.logger = logger }
}

// Solver runs a depth-first backtracking search over a Problem. A Solver keeps no state
// between calls: every Solve owns its own search state, so concurrent calls are safe.
type Solver struct {
	problem         *Problem
	ordering        Ordering
	nodeLimit       uint64
	forwardChecking bool
	tracer          Tracer
	logger          *zap.Logger
}

func NewSolver(problem *Problem, options ...Option) *Solver {
	solver := &Solver{
		problem:  problem,
		ordering: RegistrationOrdering,
		tracer:   DefaultTracer{},
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(solver)
	}
	if solver.tracer == nil {
		solver.tracer = DefaultTracer{}
	}
	if solver.logger == nil {
		solver.logger = zap.NewNop()
	}
	return solver
}

// Solve returns the first solution without soft violations. When soft constraints are
// registered and no such solution exists, the cheapest solution found before exhaustion
// (or before the search is cancelled) is returned instead.
func (solver *Solver) Solve(ctx context.Context) Result {
	start := time.Now()

	plan := solver.plan()
	state := newSearchState(solver.problem.Variables())
	status := solver.search(ctx, plan, state)

	result := Result{
		Status: status,
		Stats: Stats{
			Nodes:      state.nodes,
			Backtracks: state.backtracks,
			Duration:   time.Since(start),
		},
	}
	if state.best != nil {
		result.Status = Solved
		result.Solution = state.best
		result.Violations = state.bestCost
	}

	solver.logger.Debug("search finished",
		zap.Stringer("status", result.Status),
		zap.Int("variables", solver.problem.Variables()),
		zap.Int("constraints", len(solver.problem.constraints)),
		zap.Uint64("nodes", result.Stats.Nodes),
		zap.Uint64("backtracks", result.Stats.Backtracks),
		zap.Int("violations", result.Violations),
		zap.Duration("duration", result.Stats.Duration),
	)
	return result
}

func (solver *Solver) search(ctx context.Context, plan plan, state *searchState) Status {
	variables := len(plan.order)
	if variables == 0 {
		state.record(0)
		return Solved
	}

	state.push(plan.order[0])
	for len(state.stack) > 0 {
		depth := len(state.stack) - 1
		frame := &state.stack[depth]
		domain := solver.problem.domains[frame.variable]

		// Release the value tried by the previous iteration at this depth
		state.undo(frame)

		//** Backtrack
		if frame.cursor >= len(domain) {
			solver.tracer.Trace(Event{Kind: BacktrackEvent, Variable: frame.variable, Value: unassigned, Depth: depth})
			state.pop()
			continue
		}

		//** Try candidate
		if ctx.Err() != nil {
			return Inconclusive
		}
		if solver.nodeLimit > 0 && state.nodes >= solver.nodeLimit {
			return Inconclusive
		}
		state.nodes++
		value := domain[frame.cursor]
		frame.cursor++
		state.values[frame.variable] = value

		//** Check
		added, ok := solver.check(plan, state, depth)
		if !ok || (state.best != nil && state.cost+added >= state.bestCost) {
			solver.tracer.Trace(Event{Kind: RejectEvent, Variable: frame.variable, Value: value, Depth: depth})
			continue
		}
		frame.addedCost = added
		state.cost += added

		if solver.forwardChecking && !solver.feasible(plan, state, frame.variable) {
			solver.tracer.Trace(Event{Kind: RejectEvent, Variable: frame.variable, Value: value, Depth: depth})
			continue
		}
		solver.tracer.Trace(Event{Kind: AssignEvent, Variable: frame.variable, Value: value, Depth: depth})

		//** Complete assignment
		if depth == variables-1 {
			state.record(state.cost)
			solver.tracer.Trace(Event{Kind: SolutionEvent, Variable: frame.variable, Value: value, Depth: depth})
			if state.cost == 0 {
				return Solved
			}
			continue
		}

		//** Advance
		state.push(plan.order[depth+1])
	}

	if state.best != nil {
		return Solved
	}
	return NoSolution
}

// check evaluates the constraints whose scope became fully assigned at depth, returning
// the soft cost they add or false when a hard one fails
func (solver *Solver) check(plan plan, state *searchState, depth int) (int, bool) {
	added := 0
	for _, index := range plan.completes[depth] {
		registered := solver.problem.constraints[index]
		values := plan.buffers[index]
		for i, variable := range plan.scopes[index] {
			values[i] = state.values[variable]
		}

		if registered.constraint.Satisfied(values) {
			continue
		}
		if !registered.soft {
			return 0, false
		}
		added += registered.weight
	}
	return added, true
}

type plan struct {
	order     []Variable
	scopes    [][]Variable // Per registered constraint
	buffers   [][]int      // Per registered constraint, reused while evaluating
	completes [][]int      // Per depth, constraints whose last scope variable is assigned at that depth
	distinct  [][]int      // Per variable, hard all-distinct constraints containing it
}

func (solver *Solver) plan() plan {
	problem := solver.problem
	variables := problem.Variables()

	scopes := make([][]Variable, len(problem.constraints))
	buffers := make([][]int, len(problem.constraints))
	degrees := make([]int, variables)
	for index, registered := range problem.constraints {
		scopes[index] = registered.constraint.Scope()
		buffers[index] = make([]int, len(scopes[index]))
		for _, variable := range scopes[index] {
			degrees[variable] += len(scopes[index]) - 1
		}
	}

	order := make([]Variable, variables)
	for i := range order {
		order[i] = Variable(i)
	}
	if solver.ordering == DegreeOrdering {
		order = solver.connectedOrder(scopes, degrees)
	}

	position := make([]int, variables)
	for depth, variable := range order {
		position[variable] = depth
	}

	completes := make([][]int, variables)
	distinct := make([][]int, variables)
	for index, registered := range problem.constraints {
		last := 0
		for _, variable := range scopes[index] {
			last = max(last, position[variable])
		}
		completes[last] = append(completes[last], index)

		if _, ok := registered.constraint.(*AllDistinct); ok && !registered.soft {
			for _, variable := range scopes[index] {
				distinct[variable] = append(distinct[variable], index)
			}
		}
	}

	return plan{
		order:     order,
		scopes:    scopes,
		buffers:   buffers,
		completes: completes,
		distinct:  distinct,
	}
}

// connectedOrder picks the variable with the lowest dom/deg score first and then, at every
// step, the variable sharing the most constraints with the variables already ordered, ties
// broken by dom/deg and then by registration. Constraint scopes stay together, so every
// constraint is checked as soon as possible.
func (solver *Solver) connectedOrder(scopes [][]Variable, degrees []int) []Variable {
	variables := len(degrees)
	score := func(variable Variable) float64 {
		return float64(len(solver.problem.domains[variable])) / float64(1+degrees[variable])
	}

	constraintsOf := make([][]int, variables)
	for index, scope := range scopes {
		for _, variable := range scope {
			constraintsOf[variable] = append(constraintsOf[variable], index)
		}
	}

	order := make([]Variable, 0, variables)
	ordered := make([]bool, variables)
	connections := make([]int, variables) // Constraints shared with ordered variables
	touched := make([]bool, len(scopes))
	for range variables {
		next := Variable(-1)
		for i := range variables {
			variable := Variable(i)
			if ordered[variable] {
				continue
			}
			if next < 0 ||
				connections[variable] > connections[next] ||
				(connections[variable] == connections[next] && score(variable) < score(next)) {
				next = variable
			}
		}

		ordered[next] = true
		order = append(order, next)
		for _, index := range constraintsOf[next] {
			if touched[index] {
				continue
			}
			touched[index] = true
			for _, variable := range scopes[index] {
				if !ordered[variable] {
					connections[variable]++
				}
			}
		}
	}
	return order
}

type decision struct {
	variable  Variable
	cursor    int // Next domain index to try
	addedCost int // Soft cost added by the current value
}

type searchState struct {
	values     []int
	stack      []decision
	cost       int
	best       Solution
	bestCost   int
	nodes      uint64
	backtracks uint64
}

func newSearchState(variables int) *searchState {
	values := make([]int, variables)
	for i := range values {
		values[i] = unassigned
	}
	return &searchState{
		values: values,
		stack:  make([]decision, 0, variables),
	}
}

func (state *searchState) push(variable Variable) {
	state.stack = append(state.stack, decision{variable: variable})
}

func (state *searchState) pop() {
	state.stack = state.stack[:len(state.stack)-1]
	state.backtracks++
}

func (state *searchState) undo(frame *decision) {
	state.values[frame.variable] = unassigned
	state.cost -= frame.addedCost
	frame.addedCost = 0
}

func (state *searchState) record(cost int) {
	if state.best != nil && cost >= state.bestCost {
		return
	}
	state.best = slices.Clone(Solution(state.values))
	state.bestCost = cost
}
