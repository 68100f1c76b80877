package admin

import (
	"time"

	"github.com/drivelink/backoffice/internal/authz"
)

type Admin struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"legacy_role,omitempty"`
	Permissions []string   `json:"inline_permissions,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a *Admin) Principal() *authz.Principal {
	return &authz.Principal{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		Permissions: a.Permissions,
	}
}

// Profile is the authorization view of the current admin.
type Profile struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	CurrentRole  *string  `json:"current_role"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	Permissions  []string `json:"permissions"`
}

type MenuResponse struct {
	Items []authz.MenuItem `json:"items"`
}

type RefreshResponse struct {
	Cleared     bool     `json:"cleared"`
	Permissions []string `json:"permissions"`
}
