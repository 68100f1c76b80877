package role

import (
	"time"

	roleDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/role"
)

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	GroupName   string `json:"group_name"`
}

type Assignment struct {
	ID         int64      `json:"id"`
	AdminID    int64      `json:"admin_id"`
	RoleID     int64      `json:"role_id"`
	IsActive   bool       `json:"is_active"`
	AssignedBy *int64     `json:"assigned_by,omitempty"`
	AssignedAt time.Time  `json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func FromDataModel(r *roleDatamodel.Role, permissions []string) *Role {
	if permissions == nil {
		permissions = []string{}
	}
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		IsActive:    r.IsActive,
		Permissions: permissions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func PermissionFromDataModel(p *roleDatamodel.Permission) Permission {
	return Permission{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		GroupName:   p.GroupName,
	}
}

func AssignmentFromDataModel(a *roleDatamodel.AdminRole) *Assignment {
	return &Assignment{
		ID:         a.ID,
		AdminID:    a.AdminID,
		RoleID:     a.RoleID,
		IsActive:   a.IsActive,
		AssignedBy: a.AssignedBy,
		AssignedAt: a.AssignedAt,
		ExpiresAt:  a.ExpiresAt,
	}
}
