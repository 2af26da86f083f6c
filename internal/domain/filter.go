package domain

import "strings"

// TeamFilter narrows a listing by team membership.
type TeamFilter string

const (
	TeamAny      TeamFilter = ""
	TeamWithTeam TeamFilter = "yes"
	TeamTeamless TeamFilter = "no"
)

// Filter narrows a regional leaderboard listing. The zero value
// matches every player.
//
// The rank window applies only when both bounds are set, country
// codes match case-insensitively, and NamePrefix is a
// case-insensitive prefix match.
type Filter struct {
	RankFrom   int
	RankTo     int
	Countries  []string
	Team       TeamFilter
	NamePrefix string
}

// HasRankWindow reports whether both rank bounds are present.
func (f Filter) HasRankWindow() bool {
	return f.RankFrom > 0 && f.RankTo > 0
}

// NormalizedCountries returns the country codes upper-cased with
// blanks dropped.
func (f Filter) NormalizedCountries() []string {
	if len(f.Countries) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Countries))
	for _, c := range f.Countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return !f.HasRankWindow() && len(f.Countries) == 0 && f.Team == TeamAny && f.NamePrefix == ""
}

// ParseTeamFilter maps the query parameter values used by the HTML
// form ("yes"/"no", anything else means no filtering).
func ParseTeamFilter(s string) TeamFilter {
	switch TeamFilter(s) {
	case TeamWithTeam, TeamTeamless:
		return TeamFilter(s)
	}
	return TeamAny
}
