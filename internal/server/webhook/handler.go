package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/labstack/echo/v4"
)

type submissionRequest struct {
	SubmissionID string          `json:"submission_id"`
	Data         json.RawMessage `json:"data"`
}

type submissionResponse struct {
	ID           string         `json:"id"`
	SubmissionID string         `json:"submission_id"`
	BoxID        string         `json:"box_id"`
	Data         models.Payload `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
	Created      bool           `json:"created"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// requireSecret rejects requests whose X-Webhook-Secret header does not
// match. An empty configured secret rejects everything.
func (s *Server) requireSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		got := c.Request().Header.Get(common.WebhookSecretHeaderName)
		if s.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
		}
		return next(c)
	}
}

func (s *Server) receiveSubmission(c echo.Context) error {
	var req submissionRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	data, err := models.ParsePayload(req.Data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "data must be a JSON object")
	}

	ctx := c.Request().Context()
	sub, created, err := s.ingest.Ingest(ctx, c.Param("boxId"), req.SubmissionID, data)
	if err != nil {
		return s.mapError(err)
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
		s.logger.Info(ctx, "Submission ingested", "box_id", sub.FeedbackBoxID, "submission_id", sub.SubmissionID)
	}

	return c.JSON(code, submissionResponse{
		ID:           sub.ID,
		SubmissionID: sub.SubmissionID,
		BoxID:        sub.FeedbackBoxID,
		Data:         sub.Data,
		CreatedAt:    sub.CreatedAt,
		Created:      created,
	})
}

func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "box not found")
	case errors.Is(err, common.ErrorValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "internal error", Internal: err}
	}
}

// errorHandler renders every error as a JSON errorResponse.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		if he.Internal != nil {
			s.logger.Error(c.Request().Context(), "webhook request failed", "error", he.Internal)
		}
	} else {
		s.logger.Error(c.Request().Context(), "webhook request failed", "error", err)
	}

	if err := c.JSON(code, errorResponse{Error: http.StatusText(code), Message: msg}); err != nil {
		s.logger.Error(c.Request().Context(), "failed to write error response", "error", err)
	}
}
