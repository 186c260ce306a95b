package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"deltaoption/internal/metrics"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// statusFor maps domain errors onto HTTP status codes. Lifecycle
// conflicts are 409, payment failures 402, authorization 403, and
// oracle outages surface as 502 so callers can tell them from our own
// failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrNotWriter),
		errors.Is(err, errors.ErrNotBuyer),
		errors.Is(err, errors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrAlreadyBought),
		errors.Is(err, errors.ErrAlreadyTerminal),
		errors.Is(err, errors.ErrOptionExpired),
		errors.Is(err, errors.ErrOptionNotExpired):
		return http.StatusConflict
	case errors.Is(err, errors.ErrPaymentMismatch),
		errors.Is(err, errors.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, errors.ErrExpiryInPast),
		errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrOracleUnavailable),
		errors.Is(err, errors.ErrZeroPrice),
		errors.Is(err, errors.ErrUnknownSymbol):
		return http.StatusBadGateway
	}

	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Errorw("Request failed", "error", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// statusRecorder captures the response code for request metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests per route and response code
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	}
}
