package breaksession

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, req CreateRequest) (*Break, error)
	End(ctx context.Context, id string) (*Break, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, day string) ([]*Break, error)
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Break session created",
		"breakSession": created,
	})
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ended, err := h.Service.End(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Break session ended",
		"breakSession": ended,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("Delete: failed to delete break session", "error", err, "break_id", id)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	breaks, err := h.Service.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"breakSessions": breaks})
}
