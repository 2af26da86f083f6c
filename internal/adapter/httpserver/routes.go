package httpserver

import (
	"log/slog"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/metrics"
	apperrors "github.com/adenchik/Lead-Board-Dota2/internal/platform/errors"
	"github.com/adenchik/Lead-Board-Dota2/web"
)

// Registered once; NewServer is called repeatedly in tests and
// re-registering on the default registry panics.
var httpMetrics = sync.OnceValue(func() *metrics.HTTPMetrics {
	return metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
})

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(apperrors.Middleware())
	s.echo.Use(httpMetrics().Middleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ContentSecurityPolicy: "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"connect-src 'self' ws: wss:; " +
			"frame-ancestors 'none'",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}))

	s.registerHealthRoutes()
	s.registerAPIRoutes()

	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	s.echo.GET("/ws", echo.WrapHandler(s.websocketHandler))
	s.echo.StaticFS("/static", echo.MustSubFS(web.StaticFiles, "static"))

	s.echo.GET("/", s.handleLanding)
	// Region pages go last; every static prefix above wins over the
	// path parameter.
	s.echo.GET("/:region", s.handleRegionPage)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
