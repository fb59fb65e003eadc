package server

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"stockroom/internal/shared"
)

const (
	msgValidation     = "Request data is invalid"
	msgNotFound       = "Item not found"
	msgUnauthorized   = "Invalid API Key"
	msgDivisionByZero = "Division by zero is not allowed"
	msgRateLimited    = "Too many requests"
	msgInternal       = "An internal error occurred"
)

// Translate maps a failure to its status code and wire shape. Anything that is
// not one of the request-level variants is a defect and comes out as an opaque
// 500; that includes ConfigError, which must never reach a request.
func Translate(err error) (int, shared.StructuredError) {
	var (
		validation *shared.ValidationError
		notFound   *shared.NotFoundError
		auth       *shared.AuthError
		divZero    *shared.DivisionByZeroError
		rateLimit  *shared.RateLimitError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, shared.StructuredError{
			ErrorType: shared.ErrorTypeValidation,
			Message:   msgValidation,
			Details:   validation.Violations,
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, shared.StructuredError{
			ErrorType: shared.ErrorTypeNotFound,
			Message:   msgNotFound,
		}
	case errors.As(err, &auth):
		return http.StatusUnauthorized, shared.StructuredError{
			ErrorType: shared.ErrorTypeUnauthorized,
			Message:   msgUnauthorized,
		}
	case errors.As(err, &divZero):
		return http.StatusBadRequest, shared.StructuredError{
			ErrorType: shared.ErrorTypeDivisionByZero,
			Message:   msgDivisionByZero,
		}
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests, shared.StructuredError{
			ErrorType: shared.ErrorTypeRateLimited,
			Message:   msgRateLimited,
		}
	default:
		return http.StatusInternalServerError, shared.StructuredError{
			ErrorType: shared.ErrorTypeInternal,
			Message:   msgInternal,
		}
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Translate(err)

	entry := a.Log.WithFields(logrus.Fields{
		"request_id": requestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"error_type": body.ErrorType,
	})
	switch {
	case status >= http.StatusInternalServerError:
		entry.WithError(err).Error("request failed")
	case status == http.StatusUnauthorized:
		entry.Warn(err.Error())
	default:
		entry.Debug(err.Error())
	}

	a.Metrics.errors.WithLabelValues(body.ErrorType).Inc()
	writeJSON(w, status, body)
}
