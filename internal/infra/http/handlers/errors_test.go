package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/hirelocal/internal/usecase"
)

func TestWriteUsecaseError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &usecase.DomainError{Code: usecase.CodeValidation, Message: "title is required"}, http.StatusBadRequest, "validation_error"},
		{"not found", &usecase.DomainError{Code: usecase.CodeNotFound, Message: "lead not found"}, http.StatusNotFound, "not_found"},
		{"forbidden", &usecase.DomainError{Code: usecase.CodeForbidden, Message: "no"}, http.StatusForbidden, "forbidden"},
		{"upgrade required", usecase.ErrUpgradeRequired, http.StatusForbidden, "upgrade_required"},
		{"wrapped conflict", fmt.Errorf("accept: %w", usecase.ErrLeadUnavailable), http.StatusConflict, "lead_unavailable"},
		{"invalid transition", &usecase.DomainError{Code: usecase.CodeTransition, Message: "lead can no longer be cancelled"}, http.StatusConflict, "invalid_transition"},
		{"technical", &usecase.TechnicalError{Code: usecase.CodeStorage, Message: "failed to load lead", Err: errors.New("pq: connection refused")}, http.StatusInternalServerError, "internal_error"},
		{"unknown domain code", &usecase.DomainError{Code: "SOMETHING_NEW", Message: "x"}, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeUsecaseError(rec, httptest.NewRequest(http.MethodGet, "/leads/1", nil), log, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
			assert.NotContains(t, body.Message, "pq:")
		})
	}
}

func TestIdentity_MissingIsUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := identity(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
