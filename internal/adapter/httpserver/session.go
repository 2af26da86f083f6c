package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

const (
	sessionName      = "leaderboard-session"
	sessionKeyRegion = "region"
)

// rememberedRegion returns the last region the visitor viewed, or the
// default region.
func (s *Server) rememberedRegion(c echo.Context) domain.Region {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// Stale or tampered cookie; treat as absent.
		return domain.DefaultRegion
	}

	raw, ok := session.Values[sessionKeyRegion].(string)
	if !ok {
		return domain.DefaultRegion
	}

	region, err := domain.ParseRegion(raw)
	if err != nil {
		return domain.DefaultRegion
	}
	return region
}

// rememberRegion stores the visitor's region preference.
func (s *Server) rememberRegion(c echo.Context, region domain.Region) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// Get returns a fresh session alongside decode errors; keep going.
		slog.Debug("Session decode failed, resetting", "error", err)
	}
	session.Values[sessionKeyRegion] = region.String()
	if err := session.Save(c.Request(), c.Response()); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}
}
