package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/metrics"
	"github.com/adenchik/Lead-Board-Dota2/internal/countries"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

// Fetcher pulls all divisions from the upstream API.
type Fetcher interface {
	FetchAll(ctx context.Context) (*domain.Batch, error)
}

// RefreshListener is notified after every successful refresh.
type RefreshListener func(snap domain.Snapshot)

// Service orchestrates queries and refreshes.
type Service struct {
	players domain.PlayerRepository
	meta    domain.MetadataRepository
	fetcher Fetcher

	refreshGroup singleflight.Group

	mu        sync.Mutex
	listeners []RefreshListener
}

// NewService creates the application layer service.
func NewService(players domain.PlayerRepository, meta domain.MetadataRepository, fetcher Fetcher) *Service {
	return &Service{
		players: players,
		meta:    meta,
		fetcher: fetcher,
	}
}

// OnRefresh registers a listener called after each successful refresh.
// Must be called before the refresher starts.
func (s *Service) OnRefresh(fn RefreshListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Leaderboard lists a region's players under the given filter.
func (s *Service) Leaderboard(ctx context.Context, region domain.Region, filter domain.Filter) ([]domain.Player, error) {
	return s.players.ListPlayers(ctx, region, filter)
}

// Countries returns the countries present in a region, resolved to
// display names and sorted by name.
func (s *Service) Countries(ctx context.Context, region domain.Region) ([]countries.Country, error) {
	codes, err := s.players.Countries(ctx, region)
	if err != nil {
		return nil, err
	}
	return countries.Resolve(codes), nil
}

// Snapshot reports when the stored data was posted and when the
// upstream plans to post again.
func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return s.meta.Snapshot(ctx)
}

// RefreshNow fetches every division and replaces the stored rows.
// Concurrent calls collapse into one upstream round trip.
func (s *Service) RefreshNow(ctx context.Context) (domain.Snapshot, error) {
	v, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return v.(domain.Snapshot), nil
}

func (s *Service) refresh(ctx context.Context) (domain.Snapshot, error) {
	batch, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for _, region := range domain.Regions() {
		players, ok := batch.Players[region]
		if !ok || len(players) == 0 {
			// Region failed upstream or came back empty; its stored
			// rows stay untouched.
			continue
		}
		if err := s.players.ReplaceRegion(ctx, region, players); err != nil {
			return domain.Snapshot{}, fmt.Errorf("replace region %s: %w", region, err)
		}
		metrics.RefreshRowsReplaced.WithLabelValues(region.String()).Set(float64(len(players)))
	}

	if err := s.meta.SaveSnapshot(ctx, batch.Snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	metrics.LastRefreshTimestamp.Set(float64(time.Now().Unix()))
	slog.InfoContext(ctx, "Leaderboards refreshed",
		"regions", len(batch.Players),
		"time_posted", batch.Snapshot.TimePosted,
		"next_scheduled", batch.Snapshot.NextScheduled,
	)

	s.notify(batch.Snapshot)
	return batch.Snapshot, nil
}

func (s *Service) notify(snap domain.Snapshot) {
	s.mu.Lock()
	listeners := make([]RefreshListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
