package httpserver

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/adenchik/Lead-Board-Dota2/internal/countries"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	leaderboardFn func(ctx context.Context, region domain.Region, filter domain.Filter) ([]domain.Player, error)
	countriesFn   func(ctx context.Context, region domain.Region) ([]countries.Country, error)
	snapshotFn    func(ctx context.Context) (domain.Snapshot, error)
	refreshNowFn  func(ctx context.Context) (domain.Snapshot, error)
}

func (m *mockAppService) Leaderboard(ctx context.Context, region domain.Region, filter domain.Filter) ([]domain.Player, error) {
	if m.leaderboardFn != nil {
		return m.leaderboardFn(ctx, region, filter)
	}
	return nil, nil
}

func (m *mockAppService) Countries(ctx context.Context, region domain.Region) ([]countries.Country, error) {
	if m.countriesFn != nil {
		return m.countriesFn(ctx, region)
	}
	return nil, nil
}

func (m *mockAppService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx)
	}
	return domain.Snapshot{}, nil
}

func (m *mockAppService) RefreshNow(ctx context.Context) (domain.Snapshot, error) {
	if m.refreshNowFn != nil {
		return m.refreshNowFn(ctx)
	}
	return domain.Snapshot{}, errors.New("not implemented")
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl := template.Must(template.New("leaderboard.html").Parse(
		`{{.Region}}: {{range .Players}}{{.Rank}} {{.Name}};{{end}}`,
	))

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	e := echo.New()

	srv := &Server{
		echo:             e,
		config:           &config.Config{Port: "8066"},
		app:              app,
		websocketHandler: http.NotFoundHandler(),
		templates:        tmpl,
		sessionStore:     store,
		startTime:        time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}
