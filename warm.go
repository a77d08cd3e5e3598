package lazyline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Warm builds the index of every catalogued file, at most limit at a
// time (limit <= 0 means no bound). Files already indexed are skipped by
// the normal fast path. The first failure cancels the builds that have
// not started yet and is returned.
func (s *Store) Warm(ctx context.Context, limit int) error {
	if s.closed.Load() {
		return ErrClosed
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, e := range s.catalog.Entries() {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := s.index(e); err != nil {
				return fmt.Errorf("warm %s: %w", e.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
