package rules

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GenerateAll generates moves for every piece of owner concurrently. The snapshot is
// shared by all workers; nothing writes to it.
func (g *Generator) GenerateAll(ctx context.Context, snap Snapshot, owner Owner) (map[Position][]Move, error) {
	squares := snap.Occupied(owner)
	results := make([][]Move, len(squares))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, pos := range squares {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = g.Generate(snap, pos)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[Position][]Move, len(squares))
	for i, pos := range squares {
		out[pos] = results[i]
	}
	return out, nil
}
