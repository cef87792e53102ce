package profile

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MaxBatchSize caps a single batch detection call.
const MaxBatchSize = 10

// BatchDetectProfiles classifies up to MaxBatchSize inputs independently.
// Validation runs before any processing starts: an oversized batch fails
// with ErrBatchTooLarge and a batch containing any empty input fails with
// ErrInvalidInput, in both cases without partial results. Items are
// processed concurrently; the returned slice preserves input order.
func (d *Detector) BatchDetectProfiles(ctx context.Context, inputs []string, shared DetectOptions) ([]*DetectionResult, error) {
	if len(inputs) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			return nil, ErrInvalidInput
		}
	}

	results := make([]*DetectionResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		g.Go(func() error {
			res, err := d.DetectProfile(gctx, input, shared)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
