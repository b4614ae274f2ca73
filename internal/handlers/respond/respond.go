// Package respond writes JSON responses and maps domain errors to HTTP
// status codes.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lildude/competitions/internal/competition"
	"github.com/sirupsen/logrus"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encoding response")
	}
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	var (
		cfgErr      *competition.ConfigurationError
		notFoundErr *competition.NotFoundError
		authErr     *competition.AuthorizationError
		upstreamErr *competition.UpstreamFetchError
	)
	// Upstream failures can wrap a NotFoundError for the athlete's token, which
	// must not read as a missing resource.
	switch {
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &authErr):
		return http.StatusForbidden
	case errors.Is(err, competition.ErrAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Server side failures are logged and
// their details withheld from the client.
func Error(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := Status(err)
	msg := err.Error()
	switch status {
	case http.StatusBadGateway:
		log.WithError(err).Warn("activity source failed")
	case http.StatusInternalServerError, http.StatusGatewayTimeout:
		log.WithError(err).WithField("status", status).Error("request failed")
		msg = http.StatusText(status)
	}
	JSON(w, log, status, map[string]string{"error": msg})
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, log logrus.FieldLogger, msg string) {
	JSON(w, log, http.StatusBadRequest, map[string]string{"error": msg})
}
