package model

import (
	"context"
	"io"
	"time"

	"github.com/limaJavier/sessiontable/pkg/csp"
	"go.uber.org/zap"
)

type Timetabler interface {
	// Build returns a timetable whose status tells whether a schedule was found; only
	// malformed input and solver failures are reported as errors
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (Timetable, error)

	Verify(
		timetable Timetable,
		modelInput ModelInput,
	) bool
}

type Entry struct {
	Course string
	Kind   SessionKind
	Slot   Slot
}

func (entry Entry) Session() Session {
	return Session{Course: entry.Course, Kind: entry.Kind}
}

type Stats struct {
	Variables   int
	Constraints int
	Clauses     int    // Only set by SAT based timetablers
	Nodes       uint64 // Only set by search based timetablers
	Backtracks  uint64
	Duration    time.Duration
}

type Timetable struct {
	RunID      string
	Status     csp.Status
	Entries    []Entry // Sorted by slot, empty unless Status is csp.Solved
	Violations int     // Summed weight of the soft rules the timetable breaks
	Stats      Stats
}

// Assignments groups the entries as course -> session kind -> slot
func (timetable Timetable) Assignments() map[string]map[string]string {
	assignments := make(map[string]map[string]string)
	for _, entry := range timetable.Entries {
		if _, ok := assignments[entry.Course]; !ok {
			assignments[entry.Course] = make(map[string]string)
		}
		assignments[entry.Course][entry.Kind.String()] = entry.Slot.String()
	}
	return assignments
}

type Option func(*options)

type options struct {
	build         BuildOptions
	solverOptions []csp.Option
	logger        *zap.Logger
	trace         io.Writer
}

func newOptions(opts []Option) options {
	options := options{logger: zap.NewNop()}
	for _, option := range opts {
		option(&options)
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}
	return options
}

func WithBuildOptions(build BuildOptions) Option {
	return func(options *options) { options.build = build }
}

// WithSolverOptions tunes the backtracking search, SAT based timetablers ignore it
func WithSolverOptions(solverOptions ...csp.Option) Option {
	return func(options *options) { options.solverOptions = append(options.solverOptions, solverOptions...) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(options *options) { options.logger = logger }
}

// WithTrace writes every step of the backtracking search to writer, naming variables after their sessions
func WithTrace(writer io.Writer) Option {
	return func(options *options) { options.trace = writer }
}
