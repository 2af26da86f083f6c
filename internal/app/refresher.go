package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/metrics"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/correlation"
)

// Intervals configures the refresher's sleep times for the paths
// where the upstream's own schedule cannot be followed.
type Intervals struct {
	// Fallback applies after a successful refresh whose
	// next_scheduled_post_time is missing or already in the past.
	Fallback time.Duration
	// EmptyRetry applies when every division came back empty.
	EmptyRetry time.Duration
	// ErrorRetry applies after a failed refresh.
	ErrorRetry time.Duration
}

// Refresher keeps the stored leaderboards in step with the upstream
// posting schedule. The upstream publishes when it will post next;
// the refresher sleeps until then and fetches again.
type Refresher struct {
	svc       *Service
	clock     clockwork.Clock
	intervals Intervals

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRefresher creates the background refresh job.
func NewRefresher(svc *Service, clock clockwork.Clock, intervals Intervals) *Refresher {
	return &Refresher{
		svc:       svc,
		clock:     clock,
		intervals: intervals,
		stopCh:    make(chan struct{}),
	}
}

// Run refreshes immediately, then loops on the upstream schedule. It
// blocks until Stop is called or ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	for {
		sleep := r.refreshOnce(ctx)

		select {
		case <-r.clock.After(sleep):
		case <-r.stopCh:
			slog.Info("Refresher stopped")
			return
		case <-ctx.Done():
			slog.Info("Refresher context cancelled")
			return
		}
	}
}

// Stop gracefully stops the refresh loop.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// refreshOnce runs one cycle and reports how long to sleep before the
// next one.
func (r *Refresher) refreshOnce(ctx context.Context) time.Duration {
	cycleCtx := correlation.WithID(ctx, correlation.NewID())

	snap, err := r.svc.RefreshNow(cycleCtx)
	switch {
	case errors.Is(err, domain.ErrNoData):
		metrics.RefreshCyclesTotal.WithLabelValues("empty").Inc()
		slog.WarnContext(cycleCtx, "Upstream returned no data, retrying soon", "retry_in", r.intervals.EmptyRetry)
		return r.intervals.EmptyRetry

	case err != nil:
		metrics.RefreshCyclesTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(cycleCtx, "Refresh failed", "error", err, "retry_in", r.intervals.ErrorRetry)
		return r.intervals.ErrorRetry
	}

	metrics.RefreshCyclesTotal.WithLabelValues("ok").Inc()

	now := r.clock.Now().Unix()
	if snap.NextScheduled > now {
		sleep := time.Duration(snap.NextScheduled-now) * time.Second
		slog.InfoContext(cycleCtx, "Next refresh scheduled", "sleep", sleep)
		return sleep
	}
	return r.intervals.Fallback
}
