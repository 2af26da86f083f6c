package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/correlation"
	apperrors "github.com/adenchik/Lead-Board-Dota2/internal/platform/errors"
)

const refreshTimeout = 2 * time.Minute

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/:region/players", s.handlePlayers)
	api.GET("/:region/countries", s.handleCountries)
	api.POST("/refresh", s.handleRefresh)
}

func (s *Server) handleStatus(c echo.Context) error {
	snap, err := s.app.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"regions":                  domain.Regions(),
		"time_posted":              snap.TimePosted,
		"next_scheduled_post_time": snap.NextScheduled,
	})
}

func (s *Server) handlePlayers(c echo.Context) error {
	region, err := domain.ParseRegion(c.Param("region"))
	if err != nil {
		return apperrors.ValidationError("unknown region").WithField("region", c.Param("region"))
	}

	filter := parseFilterForm(c).toFilter()

	players, err := s.app.Leaderboard(c.Request().Context(), region, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"region":  region,
		"count":   len(players),
		"players": players,
	})
}

func (s *Server) handleCountries(c echo.Context) error {
	region, err := domain.ParseRegion(c.Param("region"))
	if err != nil {
		return apperrors.ValidationError("unknown region").WithField("region", c.Param("region"))
	}

	list, err := s.app.Countries(c.Request().Context(), region)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"region":    region,
		"countries": list,
	})
}

// handleRefresh triggers a refresh without waiting for the upstream
// round trip. Concurrent triggers collapse into a single fetch.
func (s *Server) handleRefresh(c echo.Context) error {
	id := correlation.NewID()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		ctx = correlation.WithID(ctx, id)

		if _, err := s.app.RefreshNow(ctx); err != nil {
			slog.ErrorContext(ctx, "Manual refresh failed", "error", err)
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"status":         "refresh started",
		"correlation_id": id,
	})
}
