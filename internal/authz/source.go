package authz

import (
	"context"
	"slices"
)

const (
	SourceRoleSync        = "role_sync"
	SourceInlineList      = "inline_list"
	SourceLegacyAllowlist = "legacy_allowlist"
)

// PermissionSource is one strategy in the ordered permission fold.
type PermissionSource interface {
	Name() string
	Grants(ctx context.Context, p *Principal, permission string) (bool, error)
}

// legacyAllowlist is granted to legacy "admin" and "super_admin" principals.
var legacyAllowlist = map[string]struct{}{
	"view_dashboard":     {},
	"view_drivers":       {},
	"view_companies":     {},
	"manage_matching":    {},
	"view_reports":       {},
	"manage_settings":    {},
	"manage_drivers":     {},
	"manage_requests":    {},
	"send_notifications": {},
}

// LegacyAllowlist returns the built-in permissions granted to legacy admin roles, sorted.
func LegacyAllowlist() []string {
	perms := make([]string, 0, len(legacyAllowlist))
	for name := range legacyAllowlist {
		perms = append(perms, name)
	}
	slices.Sort(perms)
	return perms
}

// RoleSyncSource consults the role/permission graph through a PermissionSync.
type RoleSyncSource struct {
	sync PermissionSync
}

func NewRoleSyncSource(sync PermissionSync) RoleSyncSource {
	return RoleSyncSource{sync: sync}
}

func (RoleSyncSource) Name() string { return SourceRoleSync }

func (s RoleSyncSource) Grants(ctx context.Context, p *Principal, permission string) (bool, error) {
	perms, err := s.sync.Permissions(ctx, p.ID)
	if err != nil {
		return false, err
	}
	return slices.Contains(perms, permission), nil
}

// InlineListSource checks the principal's legacy inline permission list.
type InlineListSource struct{}

func (InlineListSource) Name() string { return SourceInlineList }

func (InlineListSource) Grants(_ context.Context, p *Principal, permission string) (bool, error) {
	return slices.Contains(p.Permissions, permission), nil
}

// LegacyAllowlistSource grants the fixed allowlist to legacy admin roles.
type LegacyAllowlistSource struct{}

func (LegacyAllowlistSource) Name() string { return SourceLegacyAllowlist }

func (LegacyAllowlistSource) Grants(_ context.Context, p *Principal, permission string) (bool, error) {
	if !isLegacyAdmin(p.Role) {
		return false, nil
	}
	_, ok := legacyAllowlist[permission]
	return ok, nil
}

func isLegacyAdmin(role string) bool {
	switch NormalizeRoleName(role) {
	case "admin", "super_admin":
		return true
	}
	return false
}
