package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/drivelink/backoffice/internal/admin"
	adminPostgres "github.com/drivelink/backoffice/internal/admin/postgres"
	"github.com/drivelink/backoffice/internal/auth"
	"github.com/drivelink/backoffice/internal/authz"
	driverDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/driver"
	roleDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/role"
	"github.com/drivelink/backoffice/internal/kyc"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	clearData    bool
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the permission catalog, default roles, sample admins and sample drivers for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		db, err := initGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		hash, err := auth.HashPassword(seedPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		ctx := context.Background()
		if clearData {
			if err := clearSeedData(ctx, db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared drivers, audit logs and role assignments")
		}

		if err := seed(ctx, db, hash); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("Seed complete. Admin password:", seedPassword)
	},
}

type seedRole struct {
	Name        string
	DisplayName string
	Permissions []string
}

var seedRoles = []seedRole{
	{Name: "super_admin", DisplayName: "Super Admin"},
	{Name: "operations", DisplayName: "Operations", Permissions: []string{
		authz.PermViewDashboard, authz.PermViewDrivers, authz.PermManageDrivers, authz.PermViewReports,
	}},
	{Name: "kyc_reviewer", DisplayName: "KYC Reviewer", Permissions: []string{
		authz.PermViewDashboard, authz.PermViewDrivers,
	}},
}

type seedAdmin struct {
	Admin admin.Admin
	Roles []string
}

var seedAdmins = []seedAdmin{
	{Admin: admin.Admin{Email: "root@drivelink.io", Name: "Root"}, Roles: []string{"super_admin"}},
	{Admin: admin.Admin{Email: "ops@drivelink.io", Name: "Operations"}, Roles: []string{"operations"}},
	{Admin: admin.Admin{Email: "reviewer@drivelink.io", Name: "Reviewer"}, Roles: []string{"kyc_reviewer"}},
	{Admin: admin.Admin{Email: "legacy@drivelink.io", Name: "Legacy Admin", Role: "admin", Permissions: []string{"export_reports"}}},
}

// seed is idempotent: rows are matched by their natural keys.
func seed(ctx context.Context, db *gorm.DB, passwordHash string) error {
	db = db.WithContext(ctx)

	perms := make(map[string]int64, len(authz.Catalog))
	for _, entry := range authz.Catalog {
		row := roleDatamodel.Permission{Name: entry.Name}
		if err := db.Where("name = ?", entry.Name).
			Attrs(roleDatamodel.Permission{DisplayName: entry.DisplayName, GroupName: entry.Group}).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", entry.Name, err)
		}
		perms[entry.Name] = row.ID
	}
	fmt.Printf("Seeded %d permissions\n", len(perms))

	roles := make(map[string]int64, len(seedRoles))
	for _, r := range seedRoles {
		row := roleDatamodel.Role{Name: r.Name}
		if err := db.Where("name = ?", r.Name).
			Attrs(roleDatamodel.Role{DisplayName: r.DisplayName}).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
		roles[r.Name] = row.ID

		grants := r.Permissions
		if r.Name == "super_admin" {
			grants = make([]string, 0, len(authz.Catalog))
			for _, entry := range authz.Catalog {
				grants = append(grants, entry.Name)
			}
		}
		for _, name := range grants {
			link := roleDatamodel.RolePermission{RoleID: row.ID, PermissionID: perms[name]}
			if err := db.Where("role_id = ? AND permission_id = ?", row.ID, perms[name]).
				FirstOrCreate(&link).Error; err != nil {
				return fmt.Errorf("grant %s to %s: %w", name, r.Name, err)
			}
		}
		fmt.Printf("Seeded role %s with %d permissions\n", r.Name, len(grants))
	}

	admins := adminPostgres.NewAdminRepository(db)
	now := time.Now().UTC()
	for _, sa := range seedAdmins {
		a := sa.Admin
		if err := admins.Upsert(ctx, &a, passwordHash); err != nil {
			return fmt.Errorf("seed admin %s: %w", a.Email, err)
		}
		for _, roleName := range sa.Roles {
			assignment := roleDatamodel.AdminRole{AdminID: a.ID, RoleID: roles[roleName], IsActive: true, AssignedAt: now}
			if err := db.Where("admin_id = ? AND role_id = ?", a.ID, roles[roleName]).
				FirstOrCreate(&assignment).Error; err != nil {
				return fmt.Errorf("assign %s to %s: %w", roleName, a.Email, err)
			}
		}
		fmt.Println("Seeded admin:", a.Email)
	}

	return seedDrivers(db, now)
}

func seedDrivers(db *gorm.DB, now time.Time) error {
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	expiry := now.AddDate(3, 0, 0)
	stepAt := now.Add(-48 * time.Hour)

	drivers := []driverDatamodel.Driver{
		{FirstName: "Budi", LastName: "Santoso", Email: "budi@drivers.drivelink.io", Phone: "+6281200000001"},
		{
			FirstName: "Sari", LastName: "Wijaya", Email: "sari@drivers.drivelink.io", Phone: "+6281200000002",
			DateOfBirth: &dob, Address: "Jl. Sudirman 1, Jakarta", LicenseNumber: "SIM-0002", LicenseExpiry: &expiry,
			KycStatus: string(kyc.StatusInProgress), KycStep: 1, KycStep1At: &stepAt, KycVersion: 1,
		},
		{
			FirstName: "Agus", LastName: "Pratama", Email: "agus@drivers.drivelink.io", Phone: "+6281200000003",
			DateOfBirth: &dob, Address: "Jl. Asia Afrika 8, Bandung", LicenseNumber: "SIM-0003", LicenseExpiry: &expiry,
			ProfilePhotoURL: "https://cdn.drivelink.io/photos/agus.jpg", EmergencyContactPhone: "+6281200000099",
			KycStatus: string(kyc.StatusCompleted), KycStep: 3, KycStep1At: &stepAt, KycStep2At: &stepAt, KycStep3At: &stepAt,
			KycCompletedAt: &stepAt, KycVersion: 3,
		},
	}

	for i := range drivers {
		d := drivers[i]
		if err := db.Where("email = ?", d.Email).FirstOrCreate(&d).Error; err != nil {
			return fmt.Errorf("seed driver %s: %w", d.Email, err)
		}
		if d.KycStatus != string(kyc.StatusCompleted) {
			continue
		}
		docTypes := []kyc.DocumentType{kyc.DocDriverLicenseScan, kyc.DocNationalID, kyc.DocPassportPhoto, kyc.DocUtilityBill}
		for i, docType := range docTypes {
			status := kyc.VerificationPending
			if i < 3 {
				status = kyc.VerificationVerified
			}
			doc := driverDatamodel.DriverDocument{
				DriverID:           d.ID,
				DocumentType:       string(docType),
				FileURL:            fmt.Sprintf("https://cdn.drivelink.io/docs/%d/%s.jpg", d.ID, docType),
				VerificationStatus: string(status),
				UploadedAt:         stepAt,
			}
			if err := db.Where("driver_id = ? AND document_type = ?", d.ID, docType).FirstOrCreate(&doc).Error; err != nil {
				return fmt.Errorf("seed document %s for driver %d: %w", docType, d.ID, err)
			}
		}
	}
	fmt.Printf("Seeded %d drivers\n", len(drivers))
	return nil
}

func clearSeedData(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&driverDatamodel.KycAuditLog{},
		&driverDatamodel.DriverDocument{},
		&driverDatamodel.Driver{},
		&roleDatamodel.AdminRole{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear drivers and role assignments before seeding")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "Password for every seeded admin")
}
