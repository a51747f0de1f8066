// Package httpx is the HTTP debug surface of a running App: the buffered
// event log, the flush trigger, the state tree and a navigation endpoint.
package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/statesaga/internal/app"
	"github.com/jcmexdev/statesaga/internal/eventlog"
	"github.com/jcmexdev/statesaga/internal/store"
)

const defaultRecentLimit = 50

// EventReader reads flushed events back from the sink.
type EventReader interface {
	Recent(ctx context.Context, limit int) ([]eventlog.Event, error)
}

// Handler serves the debug endpoints.
type Handler struct {
	app     *app.App
	flusher *eventlog.Flusher // nil: flush disabled
	sink    EventReader       // nil: /events/recent disabled
}

// NewHandler builds a Handler. flusher and sink may be nil.
func NewHandler(a *app.App, flusher *eventlog.Flusher, sink EventReader) *Handler {
	return &Handler{app: a, flusher: flusher, sink: sink}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListEvents returns the buffered events without flushing them.
func (h *Handler) ListEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, EventsResponse{Events: h.app.Logger.Collect()})
}

// FlushEvents ships the buffer to the sink now.
func (h *Handler) FlushEvents(w http.ResponseWriter, r *http.Request) {
	if h.flusher == nil {
		writeError(w, http.StatusServiceUnavailable, "flush_disabled", "no event sink configured")
		return
	}
	n, err := h.flusher.Flush(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "event flush failed", "error", err)
		writeError(w, http.StatusBadGateway, "flush_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, FlushResponse{Flushed: n})
}

// RecentEvents reads back the latest flushed events, newest first.
func (h *Handler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		writeError(w, http.StatusServiceUnavailable, "sink_disabled", "no event sink configured")
		return
	}
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	events, err := h.sink.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, "sink_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: events})
}

func (h *Handler) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Store.Snapshot())
}

func (h *Handler) GetModuleState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "module")
	state, ok := h.app.Store.ModuleState(name)
	if !ok {
		writeError(w, http.StatusNotFound, "module_not_found", name)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PushHistory navigates the App, as a browser would. Mounted components
// re-render asynchronously.
func (h *Handler) PushHistory(w http.ResponseWriter, r *http.Request) {
	var req PushHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "url is required")
		return
	}

	slog.InfoContext(r.Context(), "history push", "url", req.URL)
	h.app.Store.Dispatch(store.PushAction{URL: req.URL, State: req.State, PreserveState: req.PreserveState})
	writeJSON(w, http.StatusAccepted, h.app.Store.Snapshot().Location)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
