package role

import (
	"time"

	"gorm.io/gorm"
)

type Role struct {
	ID          int64          `gorm:"primaryKey"`
	Name        string         `gorm:"column:name;uniqueIndex;not null"`
	DisplayName string         `gorm:"column:display_name"`
	Description string         `gorm:"column:description"`
	IsActive    bool           `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

type Permission struct {
	ID          int64          `gorm:"primaryKey"`
	Name        string         `gorm:"column:name;uniqueIndex;not null"`
	DisplayName string         `gorm:"column:display_name"`
	GroupName   string         `gorm:"column:group_name"`
	IsActive    bool           `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

type RolePermission struct {
	ID           int64     `gorm:"primaryKey"`
	RoleID       int64     `gorm:"column:role_id;not null;uniqueIndex:idx_role_permission"`
	PermissionID int64     `gorm:"column:permission_id;not null;uniqueIndex:idx_role_permission"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AdminRole is an assignment of a role to an admin. Revoked or expired rows are kept.
type AdminRole struct {
	ID         int64      `gorm:"primaryKey"`
	AdminID    int64      `gorm:"column:admin_id;not null;index"`
	RoleID     int64      `gorm:"column:role_id;not null;index"`
	IsActive   bool       `gorm:"column:is_active;default:true"`
	AssignedBy *int64     `gorm:"column:assigned_by"`
	AssignedAt time.Time  `gorm:"column:assigned_at;not null"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
