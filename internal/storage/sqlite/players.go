package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

// ReplaceRegion atomically swaps a region's rows for a fresh set.
// Readers either see the old leaderboard or the new one, never a mix.
func (s *Store) ReplaceRegion(ctx context.Context, region domain.Region, players []domain.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE region = ?`, region); err != nil {
		return fmt.Errorf("clear region %s: %w", region, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (region, rank, name, team_id, team_tag, sponsor, country)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range players {
		_, err := stmt.ExecContext(ctx, region, p.Rank, p.Name,
			nullInt64(p.TeamID), nullString(p.TeamTag), nullString(p.Sponsor), nullString(p.Country))
		if err != nil {
			return fmt.Errorf("insert player rank %d: %w", p.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit region %s: %w", region, err)
	}
	return nil
}

// ListPlayers returns a region's rows filtered and ordered by rank.
// Filter semantics: the rank window applies only when both bounds are
// set, country codes compare upper-cased, the team filter is
// tri-state with "teamless" meaning a NULL or empty tag, and the name
// filter is a case-insensitive prefix match.
func (s *Store) ListPlayers(ctx context.Context, region domain.Region, filter domain.Filter) ([]domain.Player, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT rank, name, team_id, team_tag, sponsor, country FROM players WHERE region = ?`)
	args := []any{region}

	if filter.HasRankWindow() {
		sb.WriteString(` AND rank BETWEEN ? AND ?`)
		args = append(args, filter.RankFrom, filter.RankTo)
	}

	if codes := filter.NormalizedCountries(); len(codes) > 0 {
		sb.WriteString(` AND UPPER(country) IN (?` + strings.Repeat(",?", len(codes)-1) + `)`)
		for _, c := range codes {
			args = append(args, c)
		}
	}

	switch filter.Team {
	case domain.TeamWithTeam:
		sb.WriteString(` AND team_tag IS NOT NULL AND team_tag != ''`)
	case domain.TeamTeamless:
		sb.WriteString(` AND (team_tag IS NULL OR team_tag = '')`)
	}

	if filter.NamePrefix != "" {
		sb.WriteString(` AND LOWER(name) LIKE ?`)
		args = append(args, strings.ToLower(filter.NamePrefix)+"%")
	}

	sb.WriteString(` ORDER BY rank`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var players []domain.Player
	for rows.Next() {
		var (
			p       domain.Player
			teamID  sql.NullInt64
			teamTag sql.NullString
			sponsor sql.NullString
			country sql.NullString
		)
		if err := rows.Scan(&p.Rank, &p.Name, &teamID, &teamTag, &sponsor, &country); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.TeamID = teamID.Int64
		p.TeamTag = teamTag.String
		p.Sponsor = sponsor.String
		p.Country = country.String
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	return players, nil
}

// Countries returns the distinct upper-cased country codes present in
// a region.
func (s *Store) Countries(ctx context.Context, region domain.Region) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT UPPER(country) FROM players
		WHERE region = ? AND country IS NOT NULL AND country != ''
	`, region)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}

	return codes, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(i int64) sql.NullInt64 {
	return sql.NullInt64{Int64: i, Valid: i != 0}
}
