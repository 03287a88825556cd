package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/http/middleware"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorCodes = map[string]struct {
	status int
	code   string
}{
	usecase.CodeValidation:  {http.StatusBadRequest, "validation_error"},
	usecase.CodeNotFound:    {http.StatusNotFound, "not_found"},
	usecase.CodeForbidden:   {http.StatusForbidden, "forbidden"},
	usecase.CodeNotEligible: {http.StatusForbidden, "upgrade_required"},
	usecase.CodeConflict:    {http.StatusConflict, "lead_unavailable"},
	usecase.CodeTransition:  {http.StatusConflict, "invalid_transition"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUsecaseError maps a use case error to a response. Technical errors are logged and
// never echoed to the client.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		if m, ok := errorCodes[de.Code]; ok {
			writeError(w, m.status, m.code, de.Message)
			return
		}
	}
	log.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please try again")
}

func identity(w http.ResponseWriter, r *http.Request) (entity.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
	}
	return id, ok
}
