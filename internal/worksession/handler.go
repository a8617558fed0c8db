package worksession

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Toggle(ctx context.Context, req ToggleRequest) (*ToggleResult, error)
	Start(ctx context.Context, req ToggleRequest) (*ToggleResult, error)
	Stop(ctx context.Context, req ToggleRequest) (*ToggleResult, error)
	UpdateTimes(ctx context.Context, sessionID string, req UpdateTimesRequest, editorID string) (*Session, error)
	List(ctx context.Context, filter ListFilter) ([]*Session, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// StatusFor maps a toggle direction onto the response status: 201 for a new session, 200 for a closed one.
func StatusFor(direction string) int {
	if direction == DirectionIn {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "Start", h.Service.Start)
}

func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "Stop", h.Service.Stop)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "Toggle", h.Service.Toggle)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, ToggleRequest) (*ToggleResult, error)) {
	var req ToggleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := fn(r.Context(), req)
	if err != nil {
		h.Logger.Error(op+": work session scan failed", "error", err, "qr_id", req.QRID, "process_name", req.ProcessName)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, StatusFor(result.Direction), result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessions, err := h.Service.List(r.Context(), ListFilter{Date: q.Get("date"), Status: q.Get("status")})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *Handler) UpdateTimes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTimesRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateTimes(r.Context(), id, req, internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.Logger.Error("UpdateTimes: failed to edit work session", "error", err, "session_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}
