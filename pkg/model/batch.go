package model

import (
	"context"
	"sync"

	"github.com/limaJavier/sessiontable/internal/parallel"
)

// BuildAll builds a timetable per input on at most workers goroutines. Results and
// errors are indexed like inputs.
func BuildAll(ctx context.Context, timetabler Timetabler, inputs []ModelInput, workers int) ([]Timetable, []error) {
	timetables := make([]Timetable, len(inputs))
	errs := make([]error, len(inputs))

	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			timetables[i], errs[i] = timetabler.Build(ctx, input)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	return timetables, errs
}
