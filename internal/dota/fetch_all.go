package dota

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

// FetchAll fetches every division concurrently. A division that fails
// upstream is logged and skipped; the batch carries whatever came
// back. Only when every division fails does FetchAll return
// domain.ErrNoData, so a flaky upstream never wipes regions that did
// answer.
func (c *Client) FetchAll(ctx context.Context) (*domain.Batch, error) {
	var (
		mu    sync.Mutex
		batch = &domain.Batch{Players: make(map[domain.Region][]domain.Player)}
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, region := range domain.Regions() {
		region := region
		g.Go(func() error {
			page, err := c.FetchRegion(gctx, region)
			if err != nil {
				slog.WarnContext(gctx, "Region fetch failed, skipping", "region", region, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			batch.Players[region] = page.Players
			if page.TimePosted > batch.Snapshot.TimePosted {
				batch.Snapshot.TimePosted = page.TimePosted
			}
			if page.NextScheduled > batch.Snapshot.NextScheduled {
				batch.Snapshot.NextScheduled = page.NextScheduled
			}
			return nil
		})
	}

	// Errors are swallowed per region, gctx only trips on cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if len(batch.Players) == 0 {
		return nil, domain.ErrNoData
	}
	return batch, nil
}
