package renderer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs tile tasks with bounded parallelism. The first failing task
// cancels the context handed to the others.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool; numWorkers <= 0 means one per CPU
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls task once per tile and merges the returned stats. It returns the
// first task error, or ctx's error if the render was cancelled.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, task func(context.Context, *Tile) (RenderStats, error)) (RenderStats, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	var (
		mu    sync.Mutex
		total RenderStats
	)
	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			stats, err := task(gctx, tile)
			if err != nil {
				return err
			}
			mu.Lock()
			total.merge(stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	// cancellation before any task started leaves nothing for Wait to report
	return total, ctx.Err()
}
