// Package httpserver exposes the leaderboard over HTTP: the HTML
// pages, the JSON API and the operational endpoints.
package httpserver

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/adenchik/Lead-Board-Dota2/internal/countries"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/config"
	"github.com/adenchik/Lead-Board-Dota2/web"
)

const sessionMaxAge = 30 * 24 * time.Hour

type appService interface {
	Leaderboard(ctx context.Context, region domain.Region, filter domain.Filter) ([]domain.Player, error)
	Countries(ctx context.Context, region domain.Region) ([]countries.Country, error)
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	RefreshNow(ctx context.Context) (domain.Snapshot, error)
}

// HealthCheck is a named health check function.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app              appService
	websocketHandler http.Handler

	templates    *template.Template
	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, websocketHandler http.Handler, healthChecks []HealthCheck) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:             e,
		config:           cfg,
		app:              app,
		websocketHandler: websocketHandler,
		templates:        templates,
		sessionStore:     setupSessionStore(cfg),
		healthChecks:     healthChecks,
		startTime:        time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// The cookie only remembers the last viewed region; a
		// per-process secret just means the preference resets on
		// restart.
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
