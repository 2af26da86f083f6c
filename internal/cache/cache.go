// Package cache decorates the player repository with an optional
// Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/metrics"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

const (
	entryTTL      = 5 * time.Minute
	generationKey = "leaderboard:gen"
)

// PlayerCache implements domain.PlayerRepository on top of another
// repository. Listings are cached under a generation counter that
// ReplaceRegion bumps, so entries written before a refresh can never
// be served after it. Redis trouble degrades to direct reads, never
// to request failures.
type PlayerCache struct {
	rdb  goredis.Cmdable
	next domain.PlayerRepository
}

var _ domain.PlayerRepository = (*PlayerCache)(nil)

// NewPlayerCache wraps next with a Redis-backed listing cache.
func NewPlayerCache(rdb goredis.Cmdable, next domain.PlayerRepository) *PlayerCache {
	return &PlayerCache{rdb: rdb, next: next}
}

// ReplaceRegion writes through and bumps the cache generation.
func (c *PlayerCache) ReplaceRegion(ctx context.Context, region domain.Region, players []domain.Player) error {
	if err := c.next.ReplaceRegion(ctx, region, players); err != nil {
		return err
	}
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		slog.WarnContext(ctx, "Cache generation bump failed", "error", err)
	}
	return nil
}

// ListPlayers serves from the cache when possible.
func (c *PlayerCache) ListPlayers(ctx context.Context, region domain.Region, filter domain.Filter) ([]domain.Player, error) {
	key, ok := c.listKey(ctx, region, filter)
	if !ok {
		metrics.CacheRequestsTotal.WithLabelValues("bypass").Inc()
		return c.next.ListPlayers(ctx, region, filter)
	}

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var players []domain.Player
		if err := json.Unmarshal([]byte(cached), &players); err == nil {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return players, nil
		}
		// Corrupt entry, fall through to the repository.
		slog.WarnContext(ctx, "Dropping corrupt cache entry", "key", key)
		_ = c.rdb.Del(ctx, key).Err()
	case err != goredis.Nil:
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "Cache read failed", "error", err)
		return c.next.ListPlayers(ctx, region, filter)
	}

	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	players, err := c.next.ListPlayers(ctx, region, filter)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(players); err == nil {
		if err := c.rdb.Set(ctx, key, data, entryTTL).Err(); err != nil {
			slog.WarnContext(ctx, "Cache write failed", "error", err)
		}
	}

	return players, nil
}

// Countries is not cached, the distinct query is cheap.
func (c *PlayerCache) Countries(ctx context.Context, region domain.Region) ([]string, error) {
	return c.next.Countries(ctx, region)
}

// listKey builds the cache key for a listing. ok is false when the
// generation counter cannot be read, which disables caching for the
// request.
func (c *PlayerCache) listKey(ctx context.Context, region domain.Region, filter domain.Filter) (string, bool) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if err != nil && err != goredis.Nil {
		return "", false
	}
	return fmt.Sprintf("leaderboard:players:g%d:%s:%s", gen, region, filterKey(filter)), true
}

func filterKey(f domain.Filter) string {
	// The unfiltered listing is by far the hottest entry; give it a
	// stable short key.
	if f.IsZero() {
		return "all"
	}
	return fmt.Sprintf("%d-%d|%s|%s|%s",
		f.RankFrom, f.RankTo,
		strings.Join(f.NormalizedCountries(), ","),
		f.Team,
		strings.ToLower(f.NamePrefix),
	)
}
