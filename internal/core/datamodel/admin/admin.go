package admin

import (
	"time"

	"gorm.io/datatypes"
)

type AdminUser struct {
	ID           int64                       `gorm:"primaryKey"`
	Email        string                      `gorm:"column:email;uniqueIndex;not null"`
	Name         string                      `gorm:"column:name;not null"`
	PasswordHash string                      `gorm:"column:password_hash;not null"`
	Role         string                      `gorm:"column:role"`
	Permissions  datatypes.JSONSlice[string] `gorm:"column:permissions"`
	IsActive     bool                        `gorm:"column:is_active;default:true"`
	LastLoginAt  *time.Time                  `gorm:"column:last_login_at"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
