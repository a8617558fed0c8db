package scan

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal/auth"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
)

type DispatcherAPI interface {
	Dispatch(ctx context.Context, caller *auth.User, req Request) (*Response, error)
}

type Handler struct {
	*transport.BaseHandler
	Dispatcher DispatcherAPI
}

func NewHandler(baseHandler *transport.BaseHandler, dispatcher DispatcherAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Dispatcher:  dispatcher,
	}
}

func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	caller, _ := auth.UserFromContext(r.Context())

	resp, err := h.Dispatcher.Dispatch(r.Context(), caller, req)
	if err != nil {
		h.Logger.Error("Scan: dispatch failed", "error", err, "context", req.Context, "qr_id", req.QRID)
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if resp.Session != nil {
		status = worksession.StatusFor(resp.Direction)
	}
	h.WriteJSON(w, status, resp)
}
