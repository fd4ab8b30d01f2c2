package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/11bthornton/clustering/internal/alignment"
)

// mapClusters runs fn over items on up to workers goroutines, each owning
// one Aligner, and returns the results in input order.
func mapClusters[T, R any](ctx context.Context, workers int, scoring *alignment.ScoringMatrix,
	items []T, fn func(*alignment.Aligner, T) (R, error)) ([]R, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]R, len(items))
	if len(items) == 0 {
		return out, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range items {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			al := alignment.NewAligner(scoring)
			for i := range jobs {
				r, err := fn(al, items[i])
				if err != nil {
					return err
				}
				out[i] = r
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}
