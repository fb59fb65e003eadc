package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockroom/internal/shared"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		status    int
		errorType string
	}{
		{"validation", &shared.ValidationError{Violations: []shared.Violation{{Field: "name"}}}, http.StatusBadRequest, shared.ErrorTypeValidation},
		{"not found", &shared.NotFoundError{Resource: "item", ID: 7}, http.StatusNotFound, shared.ErrorTypeNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", &shared.NotFoundError{ID: 7}), http.StatusNotFound, shared.ErrorTypeNotFound},
		{"auth", &shared.AuthError{Missing: true}, http.StatusUnauthorized, shared.ErrorTypeUnauthorized},
		{"division by zero", &shared.DivisionByZeroError{}, http.StatusBadRequest, shared.ErrorTypeDivisionByZero},
		{"rate limited", &shared.RateLimitError{Key: "192.0.2.1"}, http.StatusTooManyRequests, shared.ErrorTypeRateLimited},
		{"config error is a defect", &shared.ConfigError{Field: "API_KEY", Err: errors.New("unset")}, http.StatusInternalServerError, shared.ErrorTypeInternal},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, shared.ErrorTypeInternal},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, body := Translate(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.errorType, body.ErrorType)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestTranslate_OnlyValidationCarriesDetails(t *testing.T) {
	t.Parallel()

	_, body := Translate(&shared.ValidationError{Violations: []shared.Violation{{Field: "a"}, {Field: "b"}}})
	assert.Len(t, body.Details, 2)

	_, body = Translate(&shared.NotFoundError{ID: 1})
	assert.Nil(t, body.Details)
}

func TestTranslate_InternalErrorIsOpaque(t *testing.T) {
	t.Parallel()

	_, body := Translate(errors.New("sql: password=hunter2"))
	assert.NotContains(t, body.Message, "hunter2")
}
