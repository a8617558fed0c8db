package identity

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Resolve(ctx context.Context, token, override string) (*Identity, error)
	IssueForEmployee(ctx context.Context, employeeID string) (*Credential, error)
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

type ResolveRequest struct {
	QRID       string `json:"qrId"`
	EmployeeID string `json:"employeeId,omitempty"`
}

// IssueCredential creates or fetches the QR credential of an employee.
func (h *Handler) IssueCredential(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	cred, err := h.Service.IssueForEmployee(r.Context(), employeeID)
	if err != nil {
		h.Logger.Error("IssueCredential: failed to issue credential", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cred)
}

// ResolveToken previews which credential and employee a scanned token maps to.
func (h *Handler) ResolveToken(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	id, err := h.Service.Resolve(r.Context(), req.QRID, req.EmployeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, id)
}
