// Package analysis orchestrates the CCD pipelines: bulk-phase testing,
// pseudotime percent-variance profiling, permutation null construction,
// and melting-point stability comparisons.
package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fredricj/SingleCellProteogenomics/domain/cellcycle"
	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/ports"
)

// PermutationRunner builds empirical null matrices by recomputing the
// percent-variance statistic under shuffled cell orderings. Rows are
// independent, so permutations run concurrently; the reduction over rows
// is position-wise, so completion order does not matter.
type PermutationRunner struct {
	rng          ports.RNG
	permutations int
	workers      int
	logger       *internal.Logger
}

// NewPermutationRunner creates a runner with the given permutation count
// and worker limit
func NewPermutationRunner(rng ports.RNG, permutations, workers int, logger *internal.Logger) *PermutationRunner {
	if workers < 1 {
		workers = 1
	}
	return &PermutationRunner{
		rng:          rng,
		permutations: permutations,
		workers:      workers,
		logger:       logger,
	}
}

// NullPercentVariance returns a permutations x features matrix of
// percent variance computed after shuffling the cell order. The
// permutations are drawn sequentially from a single seeded stream so the
// matrix is reproducible regardless of worker scheduling.
func (r *PermutationRunner) NullPercentVariance(ctx context.Context, features [][]float64, window int, seed int64) ([][]float64, error) {
	if len(features) == 0 {
		return nil, errors.New("EMPTY_INPUT", "feature matrix must not be empty")
	}
	numCells := len(features[0])

	stream, err := r.rng.SeededStream(ctx, "percvar-null", seed)
	if err != nil {
		return nil, errors.Wrap(err, "create permutation stream")
	}
	perms := make([][]int, r.permutations)
	for i := range perms {
		perms[i] = stream.Perm(numCells)
	}

	null := make([][]float64, r.permutations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range perms {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := cellcycle.PermutedPercentVariance(features, perms[i], window)
			if err != nil {
				return errors.Wrapf(err, "permutation %d", i)
			}
			null[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("built null matrix: %d permutations x %d features", r.permutations, len(features))
	return null, nil
}
