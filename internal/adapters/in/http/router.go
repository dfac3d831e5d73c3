package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers the routes of s on a new echo instance. Metrics are
// served from gatherer.
func NewRouter(s *Server, gatherer prometheus.Gatherer, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.Any("error", v.Error),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.POST("/events/fieldservice", s.FieldServiceEvents)
	api.POST("/events/warehouse", s.WarehouseEvents)
	api.GET("/deliveries", s.GetDeliveries)
	api.DELETE("/deliveries/:order_id", s.CancelDelivery)
	api.GET("/inventory", s.GetInventory)

	return e
}
