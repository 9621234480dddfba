package http

import (
	"fmt"
	"log/slog"

	"tracking/api"
	"tracking/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// NewRouter mounts the API under /api/v1 behind Authenticate and contract validation,
// plus /health, /metrics, the contract itself and its Swagger UI.
func NewRouter(s *Server, recorder *metrics.Recorder, gatherer prometheus.Gatherer, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := api.Load()
	if err != nil {
		return nil, err
	}
	contract, err := NewContractRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("route openapi document: %w", err)
	}
	if err = registerSwagger(doc); err != nil {
		return nil, fmt.Errorf("register swagger document: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.OFF)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(recorder.Middleware())

	e.GET("/health", s.Health)
	e.GET("/metrics", metrics.Handler(gatherer))
	e.GET("/openapi.yaml", OpenAPIDocument)
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))

	v1 := e.Group("/api/v1", Authenticate(), ValidateRequest(contract))
	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders/:id/track", s.TrackOrder)
	v1.PATCH("/orders/:id", s.PatchOrder)

	return e, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "HTTP")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				logger.WarnContext(c.Request().Context(), "request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	})
}
