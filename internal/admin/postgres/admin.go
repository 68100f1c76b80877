package postgres

import (
	"context"
	"errors"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/admin"
	"github.com/drivelink/backoffice/internal/authz"
	adminDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/admin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*admin.Admin, error) {
	var row adminDatamodel.AdminUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAdminNotFound
		}
		return nil, err
	}
	return toDomain(&row), nil
}

// LoadPrincipal returns ErrAdminNotFound for unknown or inactive admins.
func (r *AdminRepository) LoadPrincipal(ctx context.Context, id int64) (*authz.Principal, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, internal.ErrAdminNotFound
	}
	return a.Principal(), nil
}

// ActiveIDs lists every active admin, used to warm the permission cache.
func (r *AdminRepository) ActiveIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).
		Model(&adminDatamodel.AdminUser{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// Upsert creates the admin or updates name, hash, role and inline permissions by email.
func (r *AdminRepository) Upsert(ctx context.Context, a *admin.Admin, passwordHash string) error {
	var row adminDatamodel.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", a.Email).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = adminDatamodel.AdminUser{
			Email:        a.Email,
			Name:         a.Name,
			PasswordHash: passwordHash,
			Role:         a.Role,
			Permissions:  datatypes.JSONSlice[string](a.Permissions),
			IsActive:     true,
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		err := r.db.WithContext(ctx).Model(&row).Updates(map[string]interface{}{
			"name":          a.Name,
			"password_hash": passwordHash,
			"role":          a.Role,
			"permissions":   datatypes.JSONSlice[string](a.Permissions),
		}).Error
		if err != nil {
			return err
		}
	}
	a.ID = row.ID
	return nil
}

func toDomain(row *adminDatamodel.AdminUser) *admin.Admin {
	return &admin.Admin{
		ID:          row.ID,
		Email:       row.Email,
		Name:        row.Name,
		Role:        row.Role,
		Permissions: []string(row.Permissions),
		IsActive:    row.IsActive,
		LastLoginAt: row.LastLoginAt,
		CreatedAt:   row.CreatedAt,
	}
}
