package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/authz"
	"github.com/drivelink/backoffice/internal/transport"
)

type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, p *authz.Principal, permission string) bool
	HasAnyPermission(ctx context.Context, p *authz.Principal, permissions []string) bool
	HasAnyRole(ctx context.Context, p *authz.Principal, roleNames []string) bool
	IsSuperAdmin(ctx context.Context, p *authz.Principal) bool
}

// RBACAuthorization builds route guards on top of the authorization resolver.
type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer PermissionAuthorizer
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

// Require allows the request when the principal holds permission.
func (ra *RBACAuthorization) Require(permission string) func(http.Handler) http.Handler {
	return ra.guard("permission", []string{permission}, func(ctx context.Context, p *authz.Principal) bool {
		return ra.authorizer.HasPermission(ctx, p, permission)
	})
}

func (ra *RBACAuthorization) RequireAny(permissions ...string) func(http.Handler) http.Handler {
	return ra.guard("any_permission", permissions, func(ctx context.Context, p *authz.Principal) bool {
		return ra.authorizer.HasAnyPermission(ctx, p, permissions)
	})
}

func (ra *RBACAuthorization) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return ra.guard("role", roles, func(ctx context.Context, p *authz.Principal) bool {
		return ra.authorizer.HasAnyRole(ctx, p, roles)
	})
}

func (ra *RBACAuthorization) RequireSuperAdmin() func(http.Handler) http.Handler {
	return ra.guard("super_admin", nil, ra.authorizer.IsSuperAdmin)
}

// RequirePermissionOrSuperAdmin is used for catalog reads that super admins see regardless of grants.
func (ra *RBACAuthorization) RequirePermissionOrSuperAdmin(permission string) func(http.Handler) http.Handler {
	return ra.guard("permission_or_super_admin", []string{permission}, func(ctx context.Context, p *authz.Principal) bool {
		return ra.authorizer.HasPermission(ctx, p, permission) || ra.authorizer.IsSuperAdmin(ctx, p)
	})
}

func (ra *RBACAuthorization) guard(kind string, required []string, allowed func(context.Context, *authz.Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := authz.PrincipalFromContext(r.Context())
			if !ok {
				ra.Logger.WarnContext(r.Context(), "authorization check failed: principal not found in context")
				ra.WriteAppError(w, internal.NewUnauthorizedError("unauthorized", internal.ErrCodeInvalidToken))
				return
			}

			if !allowed(r.Context(), principal) {
				ra.Logger.WarnContext(r.Context(), "access denied",
					"admin_id", principal.ID,
					"check", kind,
					"required", required,
					"path", r.URL.Path)
				ra.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
