package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/limaJavier/sessiontable/internal/parallel"
	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/limaJavier/sessiontable/pkg/model"
	"github.com/limaJavier/sessiontable/pkg/sat"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type TimetablerMetadata struct {
	Name string
	New  func(logger *zap.Logger) model.Timetabler
}

type TestMetadata struct {
	Name      string
	Input     model.ModelInput
	Courses   int
	Sessions  int
	Practical int
	Slots     int
}

type BenchmarkResult struct {
	Timetabler string
	Test       TestMetadata
	Duration   time.Duration
	Timetable  model.Timetable
	Err        error
}

func main() {
	if err := newBenchmarkCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newBenchmarkCmd() *cobra.Command {
	var (
		directories []string
		out         string
		workers     int
		timeout     time.Duration
		withKissat  bool
	)

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Run every strategy over the request files of the given directories and write a CSV report",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			tests, err := getTests(directories)
			if err != nil {
				return err
			}
			timetablers := getTimetablers(withKissat)

			results := benchmark(cmd.Context(), tests, timetablers, workers, timeout, logger)

			writer := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("cannot create CSV file: %w", err)
				}
				defer file.Close()
				writer = file
			}
			return toCsv(writer, results)
		},
	}

	cmd.Flags().StringSliceVarP(&directories, "dir", "d", []string{"pkg/model/testdata/satisfiable", "pkg/model/testdata/unsatisfiable"}, "directories holding request files")
	cmd.Flags().StringVarP(&out, "out", "o", "benchmark_results.csv", "CSV report, empty for standard output")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent builds (default one per CPU)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "time budget of each build, 0 disables it")
	cmd.Flags().BoolVar(&withKissat, "kissat", false, "also benchmark the kissat executable configured in config.json")
	return cmd
}

func getTests(directories []string) ([]TestMetadata, error) {
	tests := make([]TestMetadata, 0)
	for _, directory := range directories {
		testFiles, err := os.ReadDir(directory)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory: %w", err)
		}

		for _, file := range testFiles {
			if file.IsDir() {
				continue
			}
			filename := filepath.Join(directory, file.Name())
			input, err := model.InputFromFile(filename)
			if err != nil {
				return nil, fmt.Errorf("cannot parse input file %v: %w", filename, err)
			}

			tests = append(tests, TestMetadata{
				Name:      filename,
				Input:     input,
				Courses:   len(input.Courses),
				Sessions:  lo.SumBy(input.Courses, func(course model.Course) int { return len(course.Kinds()) }),
				Practical: lo.CountBy(input.Courses, func(course model.Course) bool { return course.HasPractical }),
				Slots:     input.Catalog.Len(),
			})
		}
	}
	return tests, nil
}

func getTimetablers(withKissat bool) []TimetablerMetadata {
	timetablers := []TimetablerMetadata{
		{
			Name: "backtracking",
			New: func(logger *zap.Logger) model.Timetabler {
				return model.NewBacktrackingTimetabler(model.WithLogger(logger))
			},
		},

		{
			Name: "backtracking-degree",
			New: func(logger *zap.Logger) model.Timetabler {
				return model.NewBacktrackingTimetabler(model.WithLogger(logger), model.WithSolverOptions(csp.WithOrdering(csp.DegreeOrdering)))
			},
		},

		{
			Name: "backtracking-matching",
			New: func(logger *zap.Logger) model.Timetabler {
				return model.NewBacktrackingTimetabler(
					model.WithLogger(logger),
					model.WithBuildOptions(model.BuildOptions{GlobalDistinct: true}),
					model.WithSolverOptions(csp.WithForwardChecking(true)),
				)
			},
		},

		{
			Name: "sat-gini",
			New: func(logger *zap.Logger) model.Timetabler {
				return model.NewSatTimetabler(sat.NewGiniSolver(), model.WithLogger(logger))
			},
		},
	}

	if withKissat {
		timetablers = append(timetablers, TimetablerMetadata{
			Name: "sat-kissat",
			New: func(logger *zap.Logger) model.Timetabler {
				return model.NewSatTimetabler(sat.NewKissatSolver(), model.WithLogger(logger))
			},
		})
	}
	return timetablers
}

// benchmark builds every test with every timetabler on a shared worker pool
func benchmark(ctx context.Context, tests []TestMetadata, timetablers []TimetablerMetadata, workers int, timeout time.Duration, logger *zap.Logger) []BenchmarkResult {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]BenchmarkResult, len(tests)*len(timetablers))
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	for i, test := range tests {
		for j, timetabler := range timetablers {
			index := i*len(timetablers) + j
			results[index] = BenchmarkResult{Timetabler: timetabler.Name, Test: test}

			wg.Add(1)
			err := pool.Submit(ctx, func() {
				defer wg.Done()
				logger.Info("benchmarking", zap.String("test", test.Name), zap.String("timetabler", timetabler.Name))

				buildCtx := ctx
				if timeout > 0 {
					var cancel context.CancelFunc
					buildCtx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				start := time.Now()
				timetable, err := timetabler.New(logger).Build(buildCtx, test.Input)
				results[index].Duration = time.Since(start)
				results[index].Timetable = timetable
				results[index].Err = err
			})
			if err != nil {
				wg.Done()
				results[index].Err = err
			}
		}
	}
	wg.Wait()

	return results
}

func toCsv(writer io.Writer, results []BenchmarkResult) error {
	csvWriter := csv.NewWriter(writer)

	header := []string{"Timetabler", "Test", "Courses", "Sessions", "Practicals", "Slots", "Variables", "Constraints", "Clauses", "Nodes", "Backtracks", "Duration(ms)", "Result"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	slices.SortStableFunc(results, func(a, b BenchmarkResult) int {
		return strings.Compare(a.Test.Name, b.Test.Name)
	})
	for _, result := range results {
		outcome := result.Timetable.Status.String()
		if result.Err != nil {
			outcome = "error"
		}
		stats := result.Timetable.Stats
		record := []string{
			result.Timetabler,
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Courses),
			fmt.Sprintf("%d", result.Test.Sessions),
			fmt.Sprintf("%d", result.Test.Practical),
			fmt.Sprintf("%d", result.Test.Slots),
			fmt.Sprintf("%d", stats.Variables),
			fmt.Sprintf("%d", stats.Constraints),
			fmt.Sprintf("%d", stats.Clauses),
			fmt.Sprintf("%d", stats.Nodes),
			fmt.Sprintf("%d", stats.Backtracks),
			fmt.Sprintf("%d", result.Duration.Milliseconds()),
			outcome,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
