package authz_test

import (
	"context"
	"time"

	"github.com/drivelink/backoffice/internal/authz"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	var (
		ctx      context.Context
		sync     *fakeSync
		roles    *fakeRoles
		resolver *authz.Resolver
		now      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		sync = newFakeSync()
		roles = &fakeRoles{assignments: map[int64][]authz.RoleAssignment{}}
		resolver = authz.NewResolver(sync, roles, nil, quietLogger(), authz.WithClock(func() time.Time { return now }))
	})

	Describe("NormalizeRoleName", func() {
		It("lower-cases and replaces spaces with underscores", func() {
			Expect(authz.NormalizeRoleName("Super Admin")).To(Equal("super_admin"))
			Expect(authz.NormalizeRoleName("SUPER_ADMIN")).To(Equal("super_admin"))
			Expect(authz.NormalizeRoleName("  Ops Lead ")).To(Equal("ops_lead"))
		})
	})

	Describe("HasPermission", func() {
		It("denies a nil principal", func() {
			Expect(resolver.HasPermission(ctx, nil, "view_dashboard")).To(BeFalse())
			Expect(resolver.HasAnyPermission(ctx, nil, []string{"view_dashboard"})).To(BeFalse())
			Expect(resolver.HasAllPermissions(ctx, nil, []string{})).To(BeFalse())
		})

		It("grants from the role-sync source", func() {
			sync.perms[7] = []string{"manage_roles"}
			p := &authz.Principal{ID: 7}
			Expect(resolver.HasPermission(ctx, p, "manage_roles")).To(BeTrue())
			Expect(resolver.HasPermission(ctx, p, "view_reports")).To(BeFalse())
		})

		It("falls back to the inline permission list", func() {
			p := &authz.Principal{ID: 8, Permissions: []string{"view_reports"}}
			Expect(resolver.HasPermission(ctx, p, "view_reports")).To(BeTrue())
		})

		It("grants the allowlist to a legacy admin regardless of case", func() {
			p := &authz.Principal{ID: 9, Role: "Admin"}
			Expect(resolver.HasPermission(ctx, p, "manage_settings")).To(BeTrue())
			Expect(resolver.HasPermission(ctx, p, "send_notifications")).To(BeTrue())
			Expect(resolver.HasPermission(ctx, p, "delete_everything")).To(BeFalse())
		})

		It("does not grant the allowlist to other legacy roles", func() {
			p := &authz.Principal{ID: 10, Role: "support"}
			Expect(resolver.HasPermission(ctx, p, "view_dashboard")).To(BeFalse())
		})

		It("keeps folding when the role-sync source fails", func() {
			sync.err = errLookup
			p := &authz.Principal{ID: 11, Role: "admin", Permissions: []string{"export_drivers"}}
			Expect(resolver.HasPermission(ctx, p, "export_drivers")).To(BeTrue())
			Expect(resolver.HasPermission(ctx, p, "view_drivers")).To(BeTrue())
			Expect(resolver.HasPermission(ctx, p, "manage_roles")).To(BeFalse())
		})

		It("combines checks with any/all", func() {
			p := &authz.Principal{ID: 12, Permissions: []string{"view_drivers", "view_reports"}}
			Expect(resolver.HasAnyPermission(ctx, p, []string{"manage_roles", "view_reports"})).To(BeTrue())
			Expect(resolver.HasAllPermissions(ctx, p, []string{"view_drivers", "view_reports"})).To(BeTrue())
			Expect(resolver.HasAllPermissions(ctx, p, []string{"view_drivers", "manage_roles"})).To(BeFalse())
			Expect(resolver.HasAnyPermission(ctx, p, nil)).To(BeFalse())
		})
	})

	Describe("HasRole", func() {
		It("denies a nil principal", func() {
			Expect(resolver.HasRole(ctx, nil, "admin")).To(BeFalse())
			Expect(resolver.HasAnyRole(ctx, nil, []string{"admin"})).To(BeFalse())
		})

		It("normalizes legacy role names", func() {
			p := &authz.Principal{ID: 1, Role: "super_admin"}
			Expect(resolver.HasRole(ctx, p, "super_admin")).To(BeTrue())
			Expect(resolver.HasRole(ctx, p, "Super Admin")).To(BeTrue())
			Expect(resolver.HasRole(ctx, p, "SUPER_ADMIN")).To(BeTrue())
			Expect(resolver.HasRole(ctx, p, "admin")).To(BeFalse())
		})

		It("takes the admin fast path", func() {
			p := &authz.Principal{ID: 2, Role: "admin"}
			Expect(resolver.HasRole(ctx, p, "ADMIN")).To(BeTrue())
		})

		It("matches active, unexpired assignments by exact name", func() {
			later := now.Add(time.Hour)
			roles.assignments[3] = []authz.RoleAssignment{
				{RoleID: 1, RoleName: "kyc_reviewer", RoleActive: true, Active: true, AssignedAt: now.Add(-time.Hour), ExpiresAt: &later},
			}
			p := &authz.Principal{ID: 3}
			Expect(resolver.HasRole(ctx, p, "kyc_reviewer")).To(BeTrue())
			Expect(resolver.HasRole(ctx, p, "KYC Reviewer")).To(BeFalse())
		})

		It("ignores expired, revoked and deactivated assignments", func() {
			earlier := now.Add(-time.Minute)
			roles.assignments[4] = []authz.RoleAssignment{
				{RoleName: "expired", RoleActive: true, Active: true, ExpiresAt: &earlier},
				{RoleName: "revoked", RoleActive: true, Active: false},
				{RoleName: "disabled", RoleActive: false, Active: true},
			}
			p := &authz.Principal{ID: 4}
			Expect(resolver.HasAnyRole(ctx, p, []string{"expired", "revoked", "disabled"})).To(BeFalse())
		})

		It("treats a role lookup failure as no match", func() {
			roles.err = errLookup
			p := &authz.Principal{ID: 5, Role: "ops"}
			Expect(resolver.HasRole(ctx, p, "kyc_reviewer")).To(BeFalse())
			Expect(resolver.HasRole(ctx, p, "Ops")).To(BeTrue())
		})

		It("works without a role relationship", func() {
			bare := authz.NewResolver(nil, nil, nil, quietLogger())
			p := &authz.Principal{ID: 6, Role: "Finance Team"}
			Expect(bare.HasRole(ctx, p, "finance_team")).To(BeTrue())
			Expect(bare.HasPermission(ctx, p, "view_reports")).To(BeFalse())
		})
	})

	Describe("CurrentRoleName and IsSuperAdmin", func() {
		It("prefers the most recently assigned effective role", func() {
			roles.assignments[20] = []authz.RoleAssignment{
				{RoleName: "support", RoleActive: true, Active: true, AssignedAt: now.Add(-48 * time.Hour)},
				{RoleName: "Super Admin", RoleActive: true, Active: true, AssignedAt: now.Add(-time.Hour)},
			}
			p := &authz.Principal{ID: 20, Role: "support"}
			Expect(resolver.CurrentRoleName(ctx, p)).To(Equal("Super Admin"))
			Expect(resolver.IsSuperAdmin(ctx, p)).To(BeTrue())
		})

		It("falls back to the legacy role, then to empty", func() {
			Expect(resolver.CurrentRoleName(ctx, &authz.Principal{ID: 21, Role: "admin"})).To(Equal("admin"))
			Expect(resolver.CurrentRoleName(ctx, &authz.Principal{ID: 22})).To(BeEmpty())
			Expect(resolver.CurrentRoleName(ctx, nil)).To(BeEmpty())
		})

		It("does not treat plain admins as super admins", func() {
			Expect(resolver.IsSuperAdmin(ctx, &authz.Principal{ID: 23, Role: "admin"})).To(BeFalse())
			Expect(resolver.IsSuperAdmin(ctx, &authz.Principal{ID: 24, Role: "SUPER ADMIN"})).To(BeTrue())
			Expect(resolver.IsSuperAdmin(ctx, nil)).To(BeFalse())
		})
	})

	Describe("permission cache controls", func() {
		It("clears and refreshes through the sync", func() {
			sync.perms[30] = []string{"view_drivers"}
			p := &authz.Principal{ID: 30}

			Expect(resolver.ClearPermissionCache(ctx, p)).To(BeTrue())
			Expect(resolver.RefreshPermissionCache(ctx, p)).To(Equal([]string{"view_drivers"}))
			Expect(sync.cleared).To(Equal([]int64{30}))
			Expect(sync.refreshedIDs()).To(Equal([]int64{30}))
		})

		It("reports failures as false / nil", func() {
			sync.err = errLookup
			p := &authz.Principal{ID: 31}
			Expect(resolver.ClearPermissionCache(ctx, p)).To(BeFalse())
			Expect(resolver.RefreshPermissionCache(ctx, p)).To(BeNil())
			Expect(resolver.ClearPermissionCache(ctx, nil)).To(BeFalse())
		})
	})

	Describe("EffectivePermissions", func() {
		It("unions role-sync, inline and allowlist grants without duplicates", func() {
			sync.perms[40] = []string{"manage_roles", "view_drivers"}
			p := &authz.Principal{ID: 40, Role: "admin", Permissions: []string{"export_drivers", "manage_roles"}}

			perms := resolver.EffectivePermissions(ctx, p)
			Expect(perms).To(ContainElements("manage_roles", "view_drivers", "export_drivers", "send_notifications"))
			Expect(perms).To(HaveLen(2 + 1 + len(authz.LegacyAllowlist()) - 1))
		})
	})
})
