package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adenchik/Lead-Board-Dota2/internal/platform/correlation"
)

func TestCorrelationMiddlewareAttachesID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/europe", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID string
	handler := correlationMiddleware(func(c echo.Context) error {
		id, ok := correlation.ID(c.Request().Context())
		require.True(t, ok)
		gotID = id
		return nil
	})

	require.NoError(t, handler(c))
	assert.Len(t, gotID, 8)
}

func TestCorrelationMiddlewareUniquePerRequest(t *testing.T) {
	e := echo.New()

	ids := make(map[string]struct{})
	handler := correlationMiddleware(func(c echo.Context) error {
		id, ok := correlation.ID(c.Request().Context())
		require.True(t, ok)
		ids[id] = struct{}{}
		return nil
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/europe", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		require.NoError(t, handler(c))
	}

	assert.Len(t, ids, 5)
}
