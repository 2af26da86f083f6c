// Package dota talks to the public Dota 2 web API leaderboard
// endpoint.
package dota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/metrics"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/retry"
)

const maxResponseBytes = 8 << 20 // divisions run ~4000 rows, this is generous

// Client fetches division leaderboards. All requests share one
// circuit breaker: the four divisions live behind the same upstream,
// so a broken upstream should open the breaker for all of them.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         circuitbreaker.CircuitBreaker[*Page]
	policy     retry.Policy
}

// Page is one division's leaderboard as published upstream.
type Page struct {
	Players       []domain.Player
	TimePosted    int64
	NextScheduled int64
}

type apiPlayer struct {
	Name    string `json:"name"`
	TeamID  int64  `json:"team_id"`
	TeamTag string `json:"team_tag"`
	Sponsor string `json:"sponsor"`
	Country string `json:"country"`
}

type apiResponse struct {
	TimePosted            int64       `json:"time_posted"`
	NextScheduledPostTime int64       `json:"next_scheduled_post_time"`
	Leaderboard           []apiPlayer `json:"leaderboard"`
}

// NewClient creates a leaderboard API client.
// Circuit breaker settings: 60% failure rate over min 5 requests in a
// 10s window opens the breaker, 30s before half-open, one success to
// close again.
func NewClient(baseURL string, timeout time.Duration) *Client {
	cb := circuitbreaker.NewBuilder[*Page]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "dota_api",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("dota_api", e.NewState.String()).Inc()
		}).
		Build()

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cb:         cb,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   2 * time.Second,
			RateLimitBackoff: 30 * time.Second,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Retrying upstream fetch", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
}

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.status)
}

func classify(err error) retry.Action {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.status == http.StatusTooManyRequests:
			return retry.After
		case statusErr.status >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	// Network errors, timeouts, decode garbage: worth another try.
	return retry.Retry
}

// FetchRegion fetches one division with retries behind the circuit
// breaker. Player ranks are assigned from the payload position, the
// API does not number its rows.
func (c *Client) FetchRegion(ctx context.Context, region domain.Region) (*Page, error) {
	page, err := retry.Do(ctx, c.policy, classify, func() (*Page, error) {
		return c.fetchOnce(ctx, region)
	})
	if err != nil {
		metrics.UpstreamFetchesTotal.WithLabelValues(region.String(), "error").Inc()
		return nil, fmt.Errorf("fetch %s leaderboard: %w", region, err)
	}

	metrics.UpstreamFetchesTotal.WithLabelValues(region.String(), "ok").Inc()
	return page, nil
}

func (c *Client) fetchOnce(ctx context.Context, region domain.Region) (*Page, error) {
	if !c.cb.TryAcquirePermit() {
		return nil, fmt.Errorf("upstream fetch blocked: %w", circuitbreaker.ErrOpen)
	}

	page, err := c.doRequest(ctx, region)
	if err != nil {
		c.cb.RecordError(err)
		return nil, err
	}
	c.cb.RecordSuccess()
	return page, nil
}

func (c *Client) doRequest(ctx context.Context, region domain.Region) (*Page, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL: %w", err)
	}
	q := u.Query()
	q.Set("division", region.String())
	q.Set("leaderboard", "0")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{status: resp.StatusCode}
	}

	var payload apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	players := make([]domain.Player, 0, len(payload.Leaderboard))
	for i, p := range payload.Leaderboard {
		players = append(players, domain.Player{
			Rank:    i + 1,
			Name:    p.Name,
			TeamID:  p.TeamID,
			TeamTag: p.TeamTag,
			Sponsor: p.Sponsor,
			Country: p.Country,
		})
	}

	return &Page{
		Players:       players,
		TimePosted:    payload.TimePosted,
		NextScheduled: payload.NextScheduledPostTime,
	}, nil
}
