package role_test

import (
	"context"
	"time"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/core/events"
	"github.com/drivelink/backoffice/internal/role"
	rolePostgres "github.com/drivelink/backoffice/internal/role/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		repo      role.RepositoryAPI
		publisher *recordingPublisher
		svc       *role.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = rolePostgres.NewRoleRepository(openCatalog())
		publisher = &recordingPublisher{}
		svc = role.NewService(repo, publisher, quietLogger())
		ctx = internal.ContextWithActorID(context.Background(), 10)
	})

	createReviewer := func() *role.Role {
		created, err := svc.CreateRole(ctx, role.CreateRoleRequest{
			Name:        "KYC Reviewer",
			Permissions: []string{"view_drivers"},
		})
		Expect(err).NotTo(HaveOccurred())
		return created
	}

	Describe("CreateRole", func() {
		It("normalizes the name and grants the listed permissions", func() {
			created := createReviewer()
			Expect(created.Name).To(Equal("kyc_reviewer"))
			Expect(created.DisplayName).To(Equal("KYC Reviewer"))
			Expect(created.IsActive).To(BeTrue())
			Expect(created.Permissions).To(Equal([]string{"view_drivers"}))

			roles, err := svc.ListRoles(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].Permissions).To(Equal([]string{"view_drivers"}))
		})

		It("rejects duplicates", func() {
			createReviewer()
			_, err := svc.CreateRole(ctx, role.CreateRoleRequest{Name: "kyc_reviewer"})
			Expect(err).To(MatchError(internal.ErrRoleExists))
		})

		It("rejects invalid names and unknown permissions", func() {
			_, err := svc.CreateRole(ctx, role.CreateRoleRequest{Name: "9lives!"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))

			_, err = svc.CreateRole(ctx, role.CreateRoleRequest{Name: "auditor", Permissions: []string{"fly"}})
			appErr, ok = internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidPermission)))
		})
	})

	Describe("permissions", func() {
		It("grants and revokes, publishing a permissions change each time", func() {
			created := createReviewer()
			Expect(svc.GrantPermission(ctx, created.ID, "manage_drivers")).To(Succeed())
			Expect(svc.RevokePermission(ctx, created.ID, "view_drivers")).To(Succeed())

			roles, err := svc.ListRoles(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles[0].Permissions).To(Equal([]string{"manage_drivers"}))
			Expect(publisher.types()).To(Equal([]string{
				events.EventTypeRolePermissionsChanged,
				events.EventTypeRolePermissionsChanged,
			}))
		})

		It("does not publish when nothing was revoked", func() {
			created := createReviewer()
			Expect(svc.RevokePermission(ctx, created.ID, "manage_drivers")).To(Succeed())
			Expect(publisher.types()).To(BeEmpty())
		})

		It("reports unknown roles and permissions", func() {
			Expect(svc.GrantPermission(ctx, 999, "view_drivers")).To(MatchError(internal.ErrRoleNotFound))
			created := createReviewer()
			Expect(svc.GrantPermission(ctx, created.ID, "nope")).To(MatchError(internal.ErrPermissionNotFound))
		})
	})

	Describe("activation", func() {
		It("publishes only when the flag changes", func() {
			created := createReviewer()
			deactivated, err := svc.DeactivateRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deactivated.IsActive).To(BeFalse())

			_, err = svc.DeactivateRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.types()).To(HaveLen(1))

			activated, err := svc.ActivateRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(activated.IsActive).To(BeTrue())
		})
	})

	Describe("assignments", func() {
		It("assigns with the acting admin and revokes without deleting", func() {
			created := createReviewer()
			assignment, err := svc.AssignRole(ctx, 10, role.AssignRoleRequest{RoleID: created.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.IsActive).To(BeTrue())
			Expect(assignment.AssignedBy).To(HaveValue(Equal(int64(10))))

			ids, err := repo.AdminIDsWithRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]int64{10}))

			Expect(svc.RevokeRole(ctx, 10, created.ID)).To(Succeed())
			ids, err = repo.AdminIDsWithRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())

			Expect(svc.RevokeRole(ctx, 10, created.ID)).To(MatchError(internal.ErrRoleNotFound))
			Expect(publisher.types()).To(Equal([]string{
				events.EventTypeRoleAssignmentChanged,
				events.EventTypeRoleAssignmentChanged,
			}))
		})

		It("rejects unknown admins and past expiry", func() {
			created := createReviewer()
			_, err := svc.AssignRole(ctx, 404, role.AssignRoleRequest{RoleID: created.ID})
			Expect(err).To(MatchError(internal.ErrAdminNotFound))

			past := time.Now().Add(-time.Hour)
			_, err = svc.AssignRole(ctx, 10, role.AssignRoleRequest{RoleID: created.ID, ExpiresAt: &past})
			Expect(err).To(HaveOccurred())
		})
	})
})
