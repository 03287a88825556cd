package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xavierca1/hirelocal/internal/infra/realtime"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

type NotificationHandler struct {
	Inbox     *usecase.NotificationInbox
	Hub       *realtime.Hub
	Heartbeat time.Duration
	log       *slog.Logger
}

func NewNotificationHandler(inbox *usecase.NotificationInbox, hub *realtime.Hub, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{Inbox: inbox, Hub: hub, Heartbeat: 25 * time.Second, log: log}
}

// HandleList is the polling fallback. ?unread=true limits to unread, ?since=RFC3339 to
// newer rows.
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var since *time.Time
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "since must be an RFC3339 timestamp")
			return
		}
		since = &t
	}

	list, err := h.Inbox.List(r.Context(), caller, q.Get("unread") == "true", since, queryLimit(r))
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	n, err := h.Inbox.MarkRead(r.Context(), caller, req.IDs)
	if err != nil {
		writeUsecaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// HandleStream is the live channel: one SSE stream per open tab.
func (h *NotificationHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := h.Hub.Subscribe(caller.UserID)
	defer h.Hub.Unsubscribe(caller.UserID, ch)

	if ping, err := realtime.MakeEvent("ping", 1, nil); err == nil {
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", ping)
	}
	flusher.Flush()

	ticker := time.NewTicker(h.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
