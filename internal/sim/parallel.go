package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// Factory builds the simulator and initial state for run i of an ensemble.
// Every run must get its own system; muscles carry state and cannot be
// shared between goroutines.
type Factory func(i int) (*Simulator, dynamo.State, error)

type Ensemble struct {
	build   Factory
	numRuns int
}

func NewEnsemble(build Factory, numRuns int) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

func (e *Ensemble) Run(ctx context.Context, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, x0, err := e.build(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
				return
			}

			results[idx], err = s.Run(ctx, x0, cfg)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
			}
		}(i)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return results, err
	}
	return results, nil
}
