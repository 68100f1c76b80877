package admin

import (
	"context"
	"net/http"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/authz"
	"github.com/drivelink/backoffice/internal/transport"
)

type ServiceAPI interface {
	Profile(ctx context.Context, p *authz.Principal) *Profile
	Menu(ctx context.Context, p *authz.Principal) []authz.MenuItem
	RefreshPermissions(ctx context.Context, p *authz.Principal) RefreshResponse
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentAdmin handles GET /admins/me
func (h *Handler) GetCurrentAdmin(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.Profile(r.Context(), p))
}

// GetMenu handles GET /admins/me/menu
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, MenuResponse{Items: h.Service.Menu(r.Context(), p)})
}

// RefreshPermissions handles POST /admins/me/permissions/refresh
func (h *Handler) RefreshPermissions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.RefreshPermissions(r.Context(), p))
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*authz.Principal, bool) {
	p, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		h.Logger.ErrorContext(r.Context(), "admin handler: principal not found in context")
		h.WriteAppError(w, internal.NewUnauthorizedError("unauthorized", internal.ErrCodeInvalidToken))
	}
	return p, ok
}
