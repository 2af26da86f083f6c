package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adenchik/Lead-Board-Dota2/internal/countries"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

// leaderboardPage is the template payload for the region page.
type leaderboardPage struct {
	Region        domain.Region
	Regions       []domain.Region
	Players       []domain.Player
	Countries     []countries.Country
	Filter        filterForm
	TimePosted    time.Time
	NextScheduled time.Time
}

// filterForm echoes the submitted filter values back into the form.
type filterForm struct {
	RankFrom  string
	RankTo    string
	Countries []string
	Team      string
	Name      string
}

func (f filterForm) HasCountry(code string) bool {
	for _, c := range f.Countries {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

func (s *Server) handleLanding(c echo.Context) error {
	region := s.rememberedRegion(c)
	return c.Redirect(http.StatusFound, "/"+region.String())
}

func (s *Server) handleRegionPage(c echo.Context) error {
	region, err := domain.ParseRegion(c.Param("region"))
	if err != nil {
		// Keep old bookmarks working instead of serving a 404.
		return c.Redirect(http.StatusFound, "/"+domain.DefaultRegion.String())
	}

	form := parseFilterForm(c)
	filter := form.toFilter()

	ctx := c.Request().Context()

	players, err := s.app.Leaderboard(ctx, region, filter)
	if err != nil {
		return err
	}
	countryList, err := s.app.Countries(ctx, region)
	if err != nil {
		return err
	}

	page := leaderboardPage{
		Region:    region,
		Regions:   domain.Regions(),
		Players:   players,
		Countries: countryList,
		Filter:    form,
	}

	snap, err := s.app.Snapshot(ctx)
	if err != nil {
		return err
	}
	// Zero timestamps mean no refresh has completed yet; the template
	// skips the freshness line.
	if snap.TimePosted > 0 {
		page.TimePosted = time.Unix(snap.TimePosted, 0).UTC()
	}
	if snap.NextScheduled > 0 {
		page.NextScheduled = time.Unix(snap.NextScheduled, 0).UTC()
	}

	s.rememberRegion(c, region)

	return s.renderTemplate(c, "leaderboard.html", page)
}

// parseFilterForm reads the filter query parameters shared by the HTML
// form and the JSON API.
func parseFilterForm(c echo.Context) filterForm {
	form := filterForm{
		RankFrom: strings.TrimSpace(c.QueryParam("rank_from")),
		RankTo:   strings.TrimSpace(c.QueryParam("rank_to")),
		Team:     strings.TrimSpace(c.QueryParam("team")),
		Name:     strings.TrimSpace(c.QueryParam("name_player")),
	}
	for _, raw := range strings.Split(c.QueryParam("countries"), ",") {
		if code := strings.TrimSpace(raw); code != "" {
			form.Countries = append(form.Countries, code)
		}
	}
	return form
}

func (f filterForm) toFilter() domain.Filter {
	filter := domain.Filter{
		Countries:  f.Countries,
		Team:       domain.ParseTeamFilter(f.Team),
		NamePrefix: f.Name,
	}
	if v, err := strconv.Atoi(f.RankFrom); err == nil {
		filter.RankFrom = v
	}
	if v, err := strconv.Atoi(f.RankTo); err == nil {
		filter.RankTo = v
	}
	return filter
}
