package role

import "time"

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	DisplayName string   `json:"display_name" validate:"max=100"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

type GrantPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

type AssignRoleRequest struct {
	RoleID    int64      `json:"role_id" validate:"required,min=1"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type PermissionsResponse struct {
	Permissions []Permission `json:"permissions"`
}
