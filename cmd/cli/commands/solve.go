package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/limaJavier/sessiontable/pkg/model"
	"github.com/limaJavier/sessiontable/pkg/sat"
	"github.com/spf13/cobra"
)

var (
	validStrategies = []string{"backtracking", "sat"}
	validOrderings  = []string{"registration", "degree"}
	validFormats    = []string{"table", "json"}
	solvers         = map[string]func() sat.SATSolver{
		"gini":    sat.NewGiniSolver,
		"kissat":  sat.NewKissatSolver,
		"cadical": sat.NewCadicalSolver,
	}
)

type solveFlags struct {
	file            string
	out             string
	format          string
	strategy        string
	solver          string
	ordering        string
	timeout         string
	maxNodes        uint64
	forwardChecking bool
	globalDistinct  bool
	soft            bool
	softWeight      int
	trace           bool
}

func solveCmd() *cobra.Command {
	var flags solveFlags

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Build the timetable of a request file (json or yaml)",
		Long: `Build the timetable of a request file (json or yaml).
Exit codes: 10 when a verified timetable is found, 20 when none exists,
30 when the search stopped before deciding and 15 when verification fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeConfig(cmd, &flags)
			if err := flags.validate(); err != nil {
				return err
			}

			//** Extract input
			input, err := model.InputFromFile(flags.file)
			if err != nil {
				return fmt.Errorf("cannot parse input file: %w", err)
			}

			//** Initialize engines
			timetabler := flags.timetabler(cmd.ErrOrStderr())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout, _ := flags.deadline(); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			//** Build timetable
			timetable, err := timetabler.Build(ctx, input)
			if err != nil {
				return fmt.Errorf("an error occurred during timetable construction: %w", err)
			}

			switch timetable.Status {
			case csp.NoSolution:
				fmt.Fprintln(cmd.ErrOrStderr(), "no timetable satisfies the request")
				exitCode = exitNoSolution
				return nil
			case csp.Inconclusive:
				fmt.Fprintln(cmd.ErrOrStderr(), "the search stopped before finding a timetable")
				exitCode = exitInconclusive
				return nil
			}

			//** Verify timetable correctness
			if !timetabler.Verify(timetable, input) {
				fmt.Fprintln(cmd.ErrOrStderr(), "the timetable breaks the scheduling rules")
				exitCode = exitUnverified
				return nil
			}

			//** Write output
			output, err := render(timetable, flags.format)
			if err != nil {
				return err
			}
			if flags.out == "" {
				fmt.Fprint(cmd.OutOrStdout(), output)
			} else if err := os.WriteFile(flags.out, []byte(output), 0o666); err != nil {
				return fmt.Errorf("an error occurred while writing to the output file: %w", err)
			}
			exitCode = exitSolved
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "path to the request file")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "file where the timetable is written (default standard output)")
	cmd.Flags().StringVar(&flags.format, "format", "table", "output format: table or json")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "backtracking", "strategy: backtracking or sat")
	cmd.Flags().StringVar(&flags.solver, "solver", "gini", "SAT solver used by the sat strategy: gini, kissat or cadical")
	cmd.Flags().StringVar(&flags.ordering, "ordering", "registration", "variable ordering of the backtracking strategy: registration or degree")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "1m", "time budget, 0 disables it")
	cmd.Flags().Uint64Var(&flags.maxNodes, "max-nodes", 0, "candidate budget of the backtracking strategy, 0 disables it")
	cmd.Flags().BoolVar(&flags.forwardChecking, "forward-checking", false, "prune with all-distinct matchings")
	cmd.Flags().BoolVar(&flags.globalDistinct, "global-distinct", false, "one all-distinct constraint per session kind instead of one per course pair")
	cmd.Flags().BoolVar(&flags.soft, "soft", false, "treat the two-day rule as a preference")
	cmd.Flags().IntVar(&flags.softWeight, "soft-weight", 1, "cost of breaking the two-day preference")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "print every search step to standard error")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// mergeConfig fills the flags left unset from the configuration file
func mergeConfig(cmd *cobra.Command, flags *solveFlags) {
	if !cmd.Flags().Changed("strategy") {
		flags.strategy = config.Strategy
	}
	if !cmd.Flags().Changed("solver") {
		flags.solver = config.Solver
	}
	if !cmd.Flags().Changed("ordering") {
		flags.ordering = config.Ordering
	}
	if !cmd.Flags().Changed("timeout") {
		flags.timeout = config.Timeout
	}
	if !cmd.Flags().Changed("max-nodes") {
		flags.maxNodes = config.MaxNodes
	}
	if !cmd.Flags().Changed("forward-checking") {
		flags.forwardChecking = config.ForwardChecking
	}
	flags.strategy = strings.ToLower(flags.strategy)
	flags.solver = strings.ToLower(flags.solver)
	flags.ordering = strings.ToLower(flags.ordering)
	flags.format = strings.ToLower(flags.format)
}

func (flags solveFlags) validate() error {
	if !slices.Contains(validStrategies, flags.strategy) {
		return fmt.Errorf("%v is not a valid strategy", flags.strategy)
	} else if _, ok := solvers[flags.solver]; !ok {
		return fmt.Errorf("%v is not a valid solver", flags.solver)
	} else if !slices.Contains(validOrderings, flags.ordering) {
		return fmt.Errorf("%v is not a valid ordering", flags.ordering)
	} else if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("%v is not a valid format", flags.format)
	} else if flags.softWeight <= 0 {
		return fmt.Errorf("soft-weight must be positive: %v", flags.softWeight)
	}
	if timeout, err := flags.deadline(); err != nil || timeout < 0 {
		return fmt.Errorf("%v is not a valid timeout", flags.timeout)
	}
	return nil
}

// deadline parses the time budget, zero when it is disabled
func (flags solveFlags) deadline() (time.Duration, error) {
	if flags.timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(flags.timeout)
}

func (flags solveFlags) timetabler(trace io.Writer) model.Timetabler {
	options := []model.Option{
		model.WithLogger(logger),
		model.WithBuildOptions(model.BuildOptions{
			SoftDaySpread:   flags.soft,
			DaySpreadWeight: flags.softWeight,
			GlobalDistinct:  flags.globalDistinct,
		}),
	}

	if flags.strategy == "sat" {
		return model.NewSatTimetabler(solvers[flags.solver](), options...)
	}

	solverOptions := []csp.Option{
		csp.WithNodeLimit(flags.maxNodes),
		csp.WithForwardChecking(flags.forwardChecking),
	}
	if flags.ordering == "degree" {
		solverOptions = append(solverOptions, csp.WithOrdering(csp.DegreeOrdering))
	}
	if flags.trace {
		options = append(options, model.WithTrace(trace))
	}
	return model.NewBacktrackingTimetabler(append(options, model.WithSolverOptions(solverOptions...))...)
}
