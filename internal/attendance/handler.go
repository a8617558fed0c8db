package attendance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ScanSecurity(ctx context.Context, req ScanRequest) (*ScanResult, error)
	ListByDate(ctx context.Context, day string) ([]*Log, error)
	DailySummary(ctx context.Context, day, qrID string) (*DailySummary, error)
	UpdateScanTime(ctx context.Context, id string, req UpdateScanTimeRequest, editorID string) (*Log, error)
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

type scanResponse struct {
	Message    string `json:"message"`
	Attendance *Log   `json:"attendance"`
}

// Scan records a security gate scan. An omitted context is taken as SECURITY.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.ScanSecurity(r.Context(), req)
	if err != nil {
		h.Logger.Error("Scan: failed to record attendance", "error", err, "qr_id", req.QRID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, scanResponse{
		Message:    result.Message,
		Attendance: result.Attendance,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.ListByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendance": logs,
		"count":      len(logs),
	})
}

func (h *Handler) DailySummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.Service.DailySummary(r.Context(), q.Get("date"), q.Get("qrId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) UpdateScanTime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateScanTimeRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateScanTime(r.Context(), id, req, internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.Logger.Error("UpdateScanTime: failed to edit attendance", "error", err, "attendance_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}
