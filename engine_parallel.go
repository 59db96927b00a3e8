package depgraph

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// extractParallel runs extraction for every path on a bounded worker pool.
// Each worker parses with its own tree-sitter parser; outcomes are stored by
// index so the caller can apply them to the graph in path order from a
// single goroutine.
//
// A failing file does not cancel the others: which error Abort reports must
// not depend on scheduling. Only cancellation of ctx stops the pool.
func (e *Engine) extractParallel(ctx context.Context, paths []string) ([]fileOutcome, error) {
	numWorkers := e.workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(paths)))

	outcomes := make([]fileOutcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, err := e.extractFile(gctx, p)
			outcomes[i] = fileOutcome{path: p, result: fr, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
