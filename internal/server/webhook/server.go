// Package webhook receives submissions pushed by the form provider over HTTP.
package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/logging"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 5 * time.Second

// Ingestor stores a delivered submission idempotently.
type Ingestor interface {
	Ingest(ctx context.Context, boxID string, externalID string, data models.Payload) (*models.Submission, bool, error)
}

type Server struct {
	address string
	secret  string
	logger  logging.Logger
	ingest  Ingestor
	e       *echo.Echo
}

func NewServer(address string, secret string, l logging.Logger, ingest Ingestor) *Server {
	s := &Server{
		address: address,
		secret:  secret,
		logger:  l.With("module", "webhook_server"),
		ingest:  ingest,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(s.requestLogger)

	e.GET("/health", s.health)
	e.POST("/webhooks/submissions/:boxId", s.receiveSubmission, s.requireSecret)

	s.e = e
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting webhook server", "address", s.address)
		if err := s.e.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(context.Background(), "Stopping webhook server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		s.logger.Info(req.Context(), "request completed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
}
