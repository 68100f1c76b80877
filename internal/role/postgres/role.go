package postgres

import (
	"context"
	"errors"
	"time"

	adminDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/admin"
	roleDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/role"
	"github.com/drivelink/backoffice/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db, now: time.Now}
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) RolePermissionNames(ctx context.Context, roleID int64) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.Permission{}).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ? AND rp.is_active = ? AND permissions.is_active = ?", roleID, true, true).
		Order("permissions.name ASC").
		Pluck("permissions.name", &names).Error
	return names, err
}

func (r *RoleRepository) GetRoleByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	return r.firstRole(ctx, "id = ?", id)
}

func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	return r.firstRole(ctx, "name = ?", name)
}

func (r *RoleRepository) firstRole(ctx context.Context, query string, arg interface{}) (*roleDatamodel.Role, error) {
	var row roleDatamodel.Role
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// CreateRoleWithPermissions inserts the role and its grants in one transaction.
func (r *RoleRepository) CreateRoleWithPermissions(ctx context.Context, row *roleDatamodel.Role, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for _, id := range permissionIDs {
			if err := grant(tx, row.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RoleRepository) SetRoleActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&roleDatamodel.Role{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *RoleRepository) ListPermissions(ctx context.Context) ([]*roleDatamodel.Permission, error) {
	var perms []*roleDatamodel.Permission
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("group_name ASC, name ASC").Find(&perms).Error
	return perms, err
}

func (r *RoleRepository) GetPermissionByName(ctx context.Context, name string) (*roleDatamodel.Permission, error) {
	var row roleDatamodel.Permission
	err := r.db.WithContext(ctx).Where("name = ? AND is_active = ?", name, true).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GrantPermission reactivates an existing join row or inserts a new one.
func (r *RoleRepository) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return grant(tx, roleID, permissionID)
	})
}

func grant(tx *gorm.DB, roleID, permissionID int64) error {
	var row roleDatamodel.RolePermission
	err := tx.Where("role_id = ? AND permission_id = ?", roleID, permissionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&roleDatamodel.RolePermission{RoleID: roleID, PermissionID: permissionID, IsActive: true}).Error
	}
	if err != nil {
		return err
	}
	if row.IsActive {
		return nil
	}
	return tx.Model(&row).Update("is_active", true).Error
}

func (r *RoleRepository) RevokePermission(ctx context.Context, roleID, permissionID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&roleDatamodel.RolePermission{}).
		Where("role_id = ? AND permission_id = ? AND is_active = ?", roleID, permissionID, true).
		Update("is_active", false)
	return result.RowsAffected > 0, result.Error
}

func (r *RoleRepository) AdminExists(ctx context.Context, adminID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&adminDatamodel.AdminUser{}).Where("id = ?", adminID).Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) AssignRole(ctx context.Context, row *roleDatamodel.AdminRole) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// RevokeAssignment deactivates every active assignment of the role; rows are never deleted.
func (r *RoleRepository) RevokeAssignment(ctx context.Context, adminID, roleID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&roleDatamodel.AdminRole{}).
		Where("admin_id = ? AND role_id = ? AND is_active = ?", adminID, roleID, true).
		Update("is_active", false)
	return result.RowsAffected > 0, result.Error
}

func (r *RoleRepository) AdminIDsWithRole(ctx context.Context, roleID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.AdminRole{}).
		Where("role_id = ? AND is_active = ? AND (expires_at IS NULL OR expires_at > ?)", roleID, true, r.now().UTC()).
		Distinct().
		Order("admin_id ASC").
		Pluck("admin_id", &ids).Error
	return ids, err
}
