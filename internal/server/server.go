package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ironsheep/image-grayscale/internal/config"
)

// corsMaxAge is the preflight cache lifetime in seconds.
const corsMaxAge = 3600

// Server serves the grayscale HTTP API.
type Server struct {
	cfg  config.Config
	log  zerolog.Logger
	echo *echo.Echo
}

// New creates a server with all routes and middleware registered.
//
// cfg is expected to have passed config.Validate.
func New(cfg config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:  cfg,
		log:  logger,
		echo: e,
	}

	e.HTTPErrorHandler = s.handleError
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: newRequestID,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: s.logRequest,
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.log.Error().Err(err).Bytes("stack", stack).Msg("recovered from panic")
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.CORS.AllowedOrigin},
		AllowMethods: []string{http.MethodPost, http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		MaxAge:       corsMaxAge,
	}))
	e.Use(middleware.BodyLimit(cfg.Upload.MaxBodySize))

	e.POST("/filter", s.handleFilter)
	e.GET("/healthz", s.handleHealth)

	return s
}

// Handler returns the server as an http.Handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully, waiting at most Server.ShutdownTimeout for in-flight
// requests.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Address()
	errCh := make(chan error, 1)

	go func() {
		s.log.Info().Str("address", addr).Str("allowed_origin", s.cfg.CORS.AllowedOrigin).Msg("server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen on %s: %w", addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) logRequest(_ echo.Context, v middleware.RequestLoggerValues) error {
	event := s.log.Info()
	if v.Error != nil {
		event = s.log.Warn().Err(v.Error)
	}
	event.
		Str("method", v.Method).
		Str("uri", v.URI).
		Int("status", v.Status).
		Dur("latency", v.Latency).
		Str("request_id", v.RequestID).
		Msg("request")
	return nil
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return id.String()
}
