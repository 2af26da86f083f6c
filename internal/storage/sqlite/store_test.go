package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEurope(t *testing.T, store *Store) {
	t.Helper()
	players := []domain.Player{
		{Rank: 1, Name: "Miracle", TeamID: 100, TeamTag: "NGX", Sponsor: "acme", Country: "jo"},
		{Rank: 2, Name: "Topson", Country: "fi"},
		{Rank: 3, Name: "Sumail", TeamTag: "OG", Country: "pk"},
		{Rank: 4, Name: "Malr1ne", TeamTag: "FLC", Country: "de"},
		{Rank: 5, Name: "skiter", Country: "de"},
	}
	require.NoError(t, store.ReplaceRegion(context.Background(), domain.RegionEurope, players))
}

func TestReplaceRegionAndList(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, players, 5)

	assert.Equal(t, "Miracle", players[0].Name)
	assert.Equal(t, int64(100), players[0].TeamID)
	assert.Equal(t, "NGX", players[0].TeamTag)
	assert.Equal(t, "jo", players[0].Country)
	assert.Equal(t, 5, players[4].Rank)
}

func TestReplaceRegionSwapsRows(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	replacement := []domain.Player{{Rank: 1, Name: "NewKing", Country: "se"}}
	require.NoError(t, store.ReplaceRegion(context.Background(), domain.RegionEurope, replacement))

	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "NewKing", players[0].Name)
}

func TestReplaceRegionLeavesOtherRegionsAlone(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	china := []domain.Player{{Rank: 1, Name: "Ame", Country: "cn"}}
	require.NoError(t, store.ReplaceRegion(context.Background(), domain.RegionChina, china))

	require.NoError(t, store.ReplaceRegion(context.Background(), domain.RegionChina, nil))

	europe, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, europe, 5)

	empty, err := store.ListPlayers(context.Background(), domain.RegionChina, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListPlayersRankWindow(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{RankFrom: 2, RankTo: 4})
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, 2, players[0].Rank)
	assert.Equal(t, 4, players[2].Rank)
}

func TestListPlayersRankWindowNeedsBothBounds(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{RankFrom: 2})
	require.NoError(t, err)
	assert.Len(t, players, 5)
}

func TestListPlayersCountryFilterIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{Countries: []string{"de"}})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Malr1ne", players[0].Name)
	assert.Equal(t, "skiter", players[1].Name)
}

func TestListPlayersTeamFilter(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	withTeam, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{Team: domain.TeamWithTeam})
	require.NoError(t, err)
	assert.Len(t, withTeam, 3)

	teamless, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{Team: domain.TeamTeamless})
	require.NoError(t, err)
	require.Len(t, teamless, 2)
	assert.Equal(t, "Topson", teamless[0].Name)
}

func TestListPlayersNamePrefix(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, domain.Filter{NamePrefix: "mi"})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Miracle", players[0].Name)
}

func TestListPlayersCombinedFilters(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	filter := domain.Filter{
		RankFrom:  1,
		RankTo:    4,
		Countries: []string{"DE", "fi"},
		Team:      domain.TeamWithTeam,
	}
	players, err := store.ListPlayers(context.Background(), domain.RegionEurope, filter)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Malr1ne", players[0].Name)
}

func TestCountries(t *testing.T) {
	store := newTestStore(t)
	seedEurope(t, store)

	codes, err := store.Countries(context.Background(), domain.RegionEurope)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"JO", "FI", "PK", "DE"}, codes)
}

func TestCountriesEmptyRegion(t *testing.T) {
	store := newTestStore(t)

	codes, err := store.Countries(context.Background(), domain.RegionAmericas)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.TimePosted)

	want := domain.Snapshot{TimePosted: 1700000000, NextScheduled: 1700003600}
	require.NoError(t, store.SaveSnapshot(context.Background(), want))

	snap, err = store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, snap)

	// Upsert overwrites
	want.TimePosted = 1700007200
	require.NoError(t, store.SaveSnapshot(context.Background(), want))

	snap, err = store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1700007200), snap.TimePosted)
}

func TestHealthCheck(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}
