package core

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/sarchlab/waitstate/loader"
)

// RunBatch schedules independent kernels concurrently, at most cfg.Workers
// at a time. Results are in input order. The first failure cancels the
// kernels not yet finished and is returned.
//
// done, if not nil, is called once per finished kernel. Calls are
// serialized.
func RunBatch(ctx context.Context, cfg *Config, kernels []*loader.Kernel, done func(*Result)) ([]*Result, error) {
	results := make([]*Result, len(kernels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var mu sync.Mutex
	for i, k := range kernels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := Compile(ctx, cfg, k)
			if err != nil {
				return err
			}
			results[i] = res

			if done != nil {
				mu.Lock()
				done(res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	klog.V(1).Infof("batch: scheduled %d kernels with %d workers", len(kernels), cfg.Workers)
	return results, nil
}
