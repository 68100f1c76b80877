package rest

import (
	"log/slog"

	"github.com/drivelink/backoffice/internal/admin"
	"github.com/drivelink/backoffice/internal/auth"
	"github.com/drivelink/backoffice/internal/authz"
	"github.com/drivelink/backoffice/internal/kyc"
	"github.com/drivelink/backoffice/internal/role"
	"github.com/drivelink/backoffice/internal/transport/middleware"
	"github.com/drivelink/backoffice/internal/transport/swagger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. A nil handler skips its routes.
type Handlers struct {
	Health  *HealthHandler
	Auth    *auth.Handler
	RBAC    *auth.RBACAuthorization
	Admin   *admin.Handler
	Role    *role.Handler
	Kyc     *kyc.Handler
	OpenAPI *openapi3.T
}

type Options struct {
	AllowedOrigins []string
	LoginRateLimit int
	Production     bool
}

func NewRouter(h Handlers, opts Options, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID(logger))
	router.Use(middleware.Recovery)
	router.Use(middleware.SecureHeaders(opts.Production))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestLogger)

	if h.OpenAPI != nil {
		router.Handle(swagger.SpecPath, swagger.SpecHandler(h.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.With(middleware.LoginRateLimit(opts.LoginRateLimit)).Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.With(h.Auth.AuthMiddleware).Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Admin != nil {
				pr.Get("/admins/me", h.Admin.GetCurrentAdmin)
				pr.Get("/admins/me/menu", h.Admin.GetMenu)
				pr.Post("/admins/me/permissions/refresh", h.Admin.RefreshPermissions)
			}

			if h.Role != nil && h.RBAC != nil {
				registerRoleRoutes(pr, h.Role, h.RBAC)
			}

			if h.Kyc != nil && h.RBAC != nil {
				registerKycRoutes(pr, h.Kyc, h.RBAC)
			}
		})
	})

	return router
}

func registerRoleRoutes(r chi.Router, h *role.Handler, rbac *auth.RBACAuthorization) {
	r.Group(func(vr chi.Router) {
		vr.Use(rbac.RequirePermissionOrSuperAdmin(authz.PermViewRoles))
		vr.Get("/roles", h.GetRoles)
		vr.Get("/permissions", h.GetPermissions)
	})

	r.Group(func(mr chi.Router) {
		mr.Use(rbac.Require(authz.PermManageRoles))
		mr.Post("/roles", h.CreateRole)
		mr.Patch("/roles/{id}/activate", h.ActivateRole)
		mr.Patch("/roles/{id}/deactivate", h.DeactivateRole)
		mr.Post("/roles/{id}/permissions", h.GrantPermission)
		mr.Delete("/roles/{id}/permissions/{permission}", h.RevokePermission)
		mr.Post("/admins/{id}/roles", h.AssignRole)
		mr.Delete("/admins/{id}/roles/{roleID}", h.RevokeRole)
	})
}

func registerKycRoutes(r chi.Router, h *kyc.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/drivers/{id}/kyc", func(kr chi.Router) {
		kr.With(rbac.Require(authz.PermViewDrivers)).Get("/", h.GetSummary)
		kr.With(rbac.Require(authz.PermViewDrivers)).Get("/audit", h.GetAuditTrail)

		kr.Group(func(mr chi.Router) {
			mr.Use(rbac.Require(authz.PermManageDrivers))
			mr.Post("/steps/{step}", h.CompleteStep)
			mr.Post("/submit", h.Submit)
			mr.Post("/approve", h.Approve)
			mr.Post("/reject", h.Reject)
			mr.Post("/reset", h.Reset)
		})
	})
}
