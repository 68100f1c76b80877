package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/authz"
	"github.com/drivelink/backoffice/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubPrincipals map[int64]*authz.Principal

func (s stubPrincipals) LoadPrincipal(_ context.Context, id int64) (*authz.Principal, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, internal.ErrAdminNotFound
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler  *Handler
		tokenGen *JWTTokenGenerator
		rbac     *RBACAuthorization
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator("handler-access-secret-handler-access", "handler-refresh-secret-handler-refresh", time.Minute, time.Hour)
		svc := NewService(newMockCredentialStore(), tokenGen, quietLogger())
		handler = NewHandler(transport.NewBaseHandler(quietLogger()), svc, stubPrincipals{
			1: {ID: 1, Email: "ops@drivelink.io", Permissions: []string{"view_drivers"}},
			3: {ID: 3, Email: "root@drivelink.io", Role: "Super Admin"},
		})
		rbac = NewRBACAuthorization(authz.NewResolver(nil, nil, nil, quietLogger()), quietLogger())
	})

	bearer := func(id int64) string {
		token, err := tokenGen.GenerateAccessToken(id, "x@drivelink.io")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return "Bearer " + token
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns tokens for valid credentials", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ops@drivelink.io","password":"correct_password"}`))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var tokens AuthTokens
			gomega.Expect(json.NewDecoder(w.Body).Decode(&tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("returns 401 for bad credentials", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ops@drivelink.io","password":"nope"}`))
			w := httptest.NewRecorder()
			handler.Login(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("returns 400 for malformed bodies", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":`))
			w := httptest.NewRecorder()
			handler.Login(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var seen *authz.Principal
		var actor int64

		protected := func() http.Handler {
			return handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = authz.PrincipalFromContext(r.Context())
				actor = internal.ActorIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
		}

		ginkgo.BeforeEach(func() {
			seen = nil
			actor = 0
		})

		ginkgo.It("loads the principal for a valid token", func() {
			req := httptest.NewRequest(http.MethodGet, "/admins/me", nil)
			req.Header.Set("Authorization", bearer(1))
			w := httptest.NewRecorder()
			protected().ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen.Email).To(gomega.Equal("ops@drivelink.io"))
			gomega.Expect(actor).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("rejects missing and invalid tokens", func() {
			w := httptest.NewRecorder()
			protected().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admins/me", nil))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))

			req := httptest.NewRequest(http.MethodGet, "/admins/me", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			w = httptest.NewRecorder()
			protected().ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("rejects tokens of admins that no longer exist", func() {
			req := httptest.NewRequest(http.MethodGet, "/admins/me", nil)
			req.Header.Set("Authorization", bearer(99))
			w := httptest.NewRecorder()
			protected().ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seen).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("RBACAuthorization", func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

		serve := func(mw func(http.Handler) http.Handler, p *authz.Principal) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if p != nil {
				req = req.WithContext(authz.WithPrincipal(req.Context(), p))
			}
			w := httptest.NewRecorder()
			mw(ok).ServeHTTP(w, req)
			return w.Code
		}

		ops := &authz.Principal{ID: 1, Permissions: []string{"view_drivers"}}
		legacyAdmin := &authz.Principal{ID: 2, Role: "admin"}
		root := &authz.Principal{ID: 3, Role: "Super Admin"}

		ginkgo.It("requires a principal", func() {
			gomega.Expect(serve(rbac.Require("view_drivers"), nil)).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("checks a single permission", func() {
			gomega.Expect(serve(rbac.Require("view_drivers"), ops)).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve(rbac.Require("manage_drivers"), ops)).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve(rbac.Require("manage_drivers"), legacyAdmin)).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("checks any of several permissions", func() {
			gomega.Expect(serve(rbac.RequireAny("manage_roles", "view_drivers"), ops)).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve(rbac.RequireAny("manage_roles"), ops)).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("checks roles and super admin", func() {
			gomega.Expect(serve(rbac.RequireRole("admin"), legacyAdmin)).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve(rbac.RequireRole("admin"), ops)).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve(rbac.RequireSuperAdmin(), root)).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve(rbac.RequireSuperAdmin(), legacyAdmin)).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve(rbac.RequirePermissionOrSuperAdmin("view_roles"), root)).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve(rbac.RequirePermissionOrSuperAdmin("view_roles"), ops)).To(gomega.Equal(http.StatusForbidden))
		})
	})
})
