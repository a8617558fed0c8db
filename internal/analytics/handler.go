package analytics

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal/transport"
)

type ServiceAPI interface {
	DailyIdle(ctx context.Context, day string) (*IdleReport, error)
	DailyHours(ctx context.Context, day string) (*HoursReport, error)
	DailyAverageHours(ctx context.Context, day string) (*HoursReport, error)
	MonthlyHours(ctx context.Context, month string) (*HoursReport, error)
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

func (h *Handler) DailyIdle(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.DailyIdle(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.Logger.Error("DailyIdle: failed to build report", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) DailyHours(w http.ResponseWriter, r *http.Request) {
	h.writeHours(w, r, h.Service.DailyHours, r.URL.Query().Get("date"))
}

func (h *Handler) DailyAverageHours(w http.ResponseWriter, r *http.Request) {
	h.writeHours(w, r, h.Service.DailyAverageHours, r.URL.Query().Get("date"))
}

func (h *Handler) MonthlyHours(w http.ResponseWriter, r *http.Request) {
	h.writeHours(w, r, h.Service.MonthlyHours, r.URL.Query().Get("month"))
}

func (h *Handler) writeHours(w http.ResponseWriter, r *http.Request, build func(context.Context, string) (*HoursReport, error), period string) {
	report, err := build(r.Context(), period)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}
