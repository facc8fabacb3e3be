package export

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch runs reqs with at most limit exports in flight (GOMAXPROCS when
// limit < 1). Results are returned in request order. Each export builds its
// own exporter, so requests only share the coordinator's filesystem.
//
// Batch stops starting new exports once ctx is done; those requests report
// Failed with KindIO and the context error.
func (c *Coordinator) Batch(ctx context.Context, reqs []Request, limit int) []Result {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Destination: req.Destination, State: Failed, Err: &Error{Kind: KindIO, Err: err}}
			continue
		}
		i, req := i, req
		g.Go(func() error {
			results[i] = c.Export(req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
