// Package httpapi exposes the detection service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// APIVersion is reported by /api/info
const APIVersion = "1.0.0"

// Detector classifies email text
type Detector interface {
	Analyze(ctx context.Context, text string) (*core.Analysis, error)
	ModelVersion() string
}

// ModelInfo describes the loaded model for /api/info
type ModelInfo struct {
	Version      string    `json:"version"`
	Schema       string    `json:"schema"`
	Features     int       `json:"features"`
	TrainedAt    time.Time `json:"trained_at"`
	Samples      int       `json:"samples"`
	TestAccuracy float64   `json:"test_accuracy"`
}

// Options configures the HTTP server
type Options struct {
	ListenAddress  string
	MaxRequestSize string
}

// Server is the HTTP frontend of the detection service
type Server struct {
	echo     *echo.Echo
	detector Detector
	info     ModelInfo
	address  string
	logger   *zap.Logger
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewServer creates the HTTP server and registers its routes. gatherer
// backs the /metrics endpoint.
func NewServer(detector Detector, info ModelInfo, gatherer prometheus.Gatherer, opts Options, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	if opts.MaxRequestSize != "" {
		e.Use(middleware.BodyLimit(opts.MaxRequestSize))
	}

	s := &Server{
		echo:     e,
		detector: detector,
		info:     info,
		address:  opts.ListenAddress,
		logger:   logger,
	}

	// Routes
	e.POST("/predict", s.predict)
	e.GET("/health", s.health)
	e.GET("/api/info", s.apiInfo)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves HTTP until Stop is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.address))
	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("Request handled", fields...)
			return nil
		},
	})
}
