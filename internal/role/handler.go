package role

import (
	"context"
	"net/http"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/core/common/validation"
	"github.com/drivelink/backoffice/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListRoles(ctx context.Context) ([]*Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error)
	ActivateRole(ctx context.Context, id int64) (*Role, error)
	DeactivateRole(ctx context.Context, id int64) (*Role, error)
	GrantPermission(ctx context.Context, roleID int64, permission string) error
	RevokePermission(ctx context.Context, roleID int64, permission string) error
	AssignRole(ctx context.Context, adminID int64, req AssignRoleRequest) (*Assignment, error)
	RevokeRole(ctx context.Context, adminID, roleID int64) error
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

func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{Permissions: perms})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.Service.CreateRole(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ActivateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.Service.ActivateRole(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeactivateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.Service.DeactivateRole(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var req GrantPermissionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.Service.GrantPermission(r.Context(), id, req.Permission); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.RevokePermission(r.Context(), id, chi.URLParam(r, "permission")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	assignment, err := h.Service.AssignRole(r.Context(), adminID, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, assignment)
}

func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := h.id(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.Service.RevokeRole(r.Context(), adminID, roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, ok := h.ParseIDParam(r, param)
	if !ok {
		h.WriteAppError(w, internal.NewValidationFieldError(param, "invalid id", internal.ErrCodeInvalidRequest))
	}
	return id, ok
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := h.DecodeJSON(r, dst); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest))
		return false
	}
	if appErr := validation.ValidateStruct(dst); appErr != nil {
		h.WriteAppError(w, appErr)
		return false
	}
	return true
}
