package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/hirelocal/internal/usecase"
)

type SubscriptionHandler struct {
	Status *usecase.EntitlementStatusUseCase
	log    *slog.Logger
}

func NewSubscriptionHandler(status *usecase.EntitlementStatusUseCase, log *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Status: status, log: log}
}

func (h *SubscriptionHandler) HandleEntitlement(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	status, err := h.Status.Execute(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
