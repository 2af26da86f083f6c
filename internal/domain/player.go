package domain

import "context"

// Player is one row of a regional leaderboard. Rank is positional:
// it is assigned from the 1-based index in the upstream payload, the
// API itself does not send it.
type Player struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	TeamID  int64  `json:"team_id,omitempty"`
	TeamTag string `json:"team_tag,omitempty"`
	Sponsor string `json:"sponsor,omitempty"`
	Country string `json:"country,omitempty"`
}

// HasTeam reports whether the player carries a team tag.
func (p Player) HasTeam() bool {
	return p.TeamTag != ""
}

// Snapshot describes the freshness of the stored leaderboards. Both
// values are unix seconds as published by the upstream; each is the
// maximum across the regions of one successful fetch batch.
type Snapshot struct {
	TimePosted    int64 `json:"time_posted"`
	NextScheduled int64 `json:"next_scheduled_post_time"`
}

// Batch is the result of fetching all regions once. Regions that
// failed upstream are simply absent from Players.
type Batch struct {
	Players  map[Region][]Player
	Snapshot Snapshot
}

// --- Interfaces ---

// PlayerRepository is the persistence contract for leaderboard rows.
type PlayerRepository interface {
	ReplaceRegion(ctx context.Context, region Region, players []Player) error
	ListPlayers(ctx context.Context, region Region, filter Filter) ([]Player, error)
	Countries(ctx context.Context, region Region) ([]string, error)
}

// MetadataRepository stores the freshness snapshot alongside the rows.
type MetadataRepository interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	Snapshot(ctx context.Context) (Snapshot, error)
}
