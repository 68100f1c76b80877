package role_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/drivelink/backoffice/internal/role"
	rolePostgres "github.com/drivelink/backoffice/internal/role/postgres"
	"github.com/drivelink/backoffice/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Role Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		svc := role.NewService(rolePostgres.NewRoleRepository(openCatalog()), nil, quietLogger())
		handler := role.NewHandler(transport.NewBaseHandler(quietLogger()), svc)

		router = chi.NewRouter()
		router.Get("/roles", handler.GetRoles)
		router.Post("/roles", handler.CreateRole)
		router.Get("/permissions", handler.GetPermissions)
		router.Patch("/roles/{id}/deactivate", handler.DeactivateRole)
		router.Post("/roles/{id}/permissions", handler.GrantPermission)
		router.Delete("/roles/{id}/permissions/{permission}", handler.RevokePermission)
		router.Post("/admins/{id}/roles", handler.AssignRole)
		router.Delete("/admins/{id}/roles/{roleID}", handler.RevokeRole)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates a role and lists it", func() {
		w := do(http.MethodPost, "/roles", `{"name":"support","permissions":["view_drivers"]}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/roles", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.RolesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Roles).To(HaveLen(1))
		Expect(resp.Roles[0].Name).To(Equal("support"))
	})

	It("lists permissions", func() {
		w := do(http.MethodGet, "/permissions", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.PermissionsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Permissions).To(HaveLen(2))
	})

	It("validates request bodies", func() {
		Expect(do(http.MethodPost, "/roles", `{"name":""}`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPost, "/roles", `{not json`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPost, "/roles/1/permissions", `{}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("grants, revokes and assigns", func() {
		Expect(do(http.MethodPost, "/roles", `{"name":"support"}`).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/roles/1/permissions", `{"permission":"manage_drivers"}`).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, "/roles/1/permissions/manage_drivers", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodPost, "/admins/10/roles", `{"role_id":1}`).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodDelete, "/admins/10/roles/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, "/admins/10/roles/1", "").Code).To(Equal(http.StatusNotFound))
	})

	It("returns 404 for unknown roles", func() {
		Expect(do(http.MethodPatch, "/roles/77/deactivate", "").Code).To(Equal(http.StatusNotFound))
	})
})
