package authz

import (
	"context"
	"strings"
	"time"
)

// Principal is the authenticated admin whose grants are being resolved.
type Principal struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// RoleAssignment is one admin_roles row joined with its role.
type RoleAssignment struct {
	RoleID     int64      `db:"role_id" json:"role_id"`
	RoleName   string     `db:"role_name" json:"role_name"`
	RoleActive bool       `db:"role_active" json:"role_active"`
	Active     bool       `db:"active" json:"active"`
	AssignedAt time.Time  `db:"assigned_at" json:"assigned_at"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// Effective reports whether the assignment still grants anything at now.
func (a RoleAssignment) Effective(now time.Time) bool {
	if !a.Active || !a.RoleActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// NormalizeRoleName lower-cases a role name and replaces spaces with underscores,
// so "Super Admin", "SUPER_ADMIN" and "super_admin" compare equal.
func NormalizeRoleName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
