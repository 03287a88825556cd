package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/hirelocal/internal/infra/http/middleware"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

type LeadHandler struct {
	Create *usecase.CreateLeadUseCase
	Accept *usecase.AcceptLeadUseCase
	Get    *usecase.GetLeadUseCase
	List   *usecase.ListLeadsUseCase
	Status *usecase.LeadStatusUseCase
	Inbox  *usecase.InboxUseCase
	log    *slog.Logger
}

func NewLeadHandler(
	create *usecase.CreateLeadUseCase,
	accept *usecase.AcceptLeadUseCase,
	get *usecase.GetLeadUseCase,
	list *usecase.ListLeadsUseCase,
	status *usecase.LeadStatusUseCase,
	inbox *usecase.InboxUseCase,
	log *slog.Logger,
) *LeadHandler {
	return &LeadHandler{Create: create, Accept: accept, Get: get, List: list, Status: status, Inbox: inbox, log: log}
}

func queryLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	out, err := h.Create.Execute(r.Context(), caller, input)
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	middleware.RecordLeadCreated(out.Delivery.Notified, out.Delivery.LiveDelivered, out.Delivery.Failed)
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	leads, err := h.List.Execute(r.Context(), caller, r.URL.Query().Get("status"), queryLimit(r))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	detail, err := h.Get.Execute(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *LeadHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	out, err := h.Accept.Execute(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		outcome := "error"
		if code := usecase.DomainCode(err); code != "" {
			outcome = code
		}
		middleware.RecordAcceptance(outcome)
		writeUsecaseError(w, r, h.log, err)
		return
	}
	middleware.RecordAcceptance("accepted")
	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	lead, err := h.Status.Cancel(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *LeadHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	lead, err := h.Status.Complete(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	lead, err := h.Status.Correct(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *LeadHandler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	items, err := h.Inbox.Execute(r.Context(), caller, queryLimit(r))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
