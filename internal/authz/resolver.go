package authz

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Resolver answers permission, role and menu questions for a principal.
// Checks never return errors: any failure is a denial.
type Resolver struct {
	sources []PermissionSource
	sync    PermissionSync
	roles   RoleLookup
	menu    []MenuItem
	logger  *slog.Logger
	now     func() time.Time
}

type ResolverOption func(*Resolver)

// WithClock overrides the clock used for assignment expiry.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// WithSources replaces the default source order.
func WithSources(sources ...PermissionSource) ResolverOption {
	return func(r *Resolver) { r.sources = sources }
}

// NewResolver wires the default fold: role sync, then the inline list, then the legacy allowlist.
// A nil sync or roles argument disables that relationship.
func NewResolver(sync PermissionSync, roles RoleLookup, menu []MenuItem, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if sync == nil {
		sync = NoPermissionSync{}
	}
	if roles == nil {
		roles = NoRoleLookup{}
	}
	r := &Resolver{
		sync:   sync,
		roles:  roles,
		menu:   menu,
		logger: logger,
		now:    time.Now,
		sources: []PermissionSource{
			NewRoleSyncSource(sync),
			InlineListSource{},
			LegacyAllowlistSource{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) HasPermission(ctx context.Context, p *Principal, permission string) bool {
	if p == nil || permission == "" {
		return false
	}

	for _, src := range r.sources {
		granted, err := src.Grants(ctx, p, permission)
		if err != nil {
			r.logger.WarnContext(ctx, "permission source failed, treating as miss",
				"source", src.Name(),
				"admin_id", p.ID,
				"permission", permission,
				"error", err)
			continue
		}
		if granted {
			return true
		}
	}
	return false
}

func (r *Resolver) HasAnyPermission(ctx context.Context, p *Principal, permissions []string) bool {
	for _, perm := range permissions {
		if r.HasPermission(ctx, p, perm) {
			return true
		}
	}
	return false
}

func (r *Resolver) HasAllPermissions(ctx context.Context, p *Principal, permissions []string) bool {
	if p == nil {
		return false
	}
	for _, perm := range permissions {
		if !r.HasPermission(ctx, p, perm) {
			return false
		}
	}
	return true
}

func (r *Resolver) HasRole(ctx context.Context, p *Principal, roleName string) bool {
	if p == nil || roleName == "" {
		return false
	}

	if strings.EqualFold(roleName, "admin") && strings.EqualFold(p.Role, "admin") {
		return true
	}

	for _, a := range r.effectiveAssignments(ctx, p) {
		if a.RoleName == roleName {
			return true
		}
	}

	return legacyRoleMatches(p.Role, roleName)
}

func (r *Resolver) HasAnyRole(ctx context.Context, p *Principal, roleNames []string) bool {
	for _, name := range roleNames {
		if r.HasRole(ctx, p, name) {
			return true
		}
	}
	return false
}

func (r *Resolver) IsSuperAdmin(ctx context.Context, p *Principal) bool {
	if p == nil {
		return false
	}
	return r.HasRole(ctx, p, "super_admin") ||
		r.HasRole(ctx, p, "Super Admin") ||
		NormalizeRoleName(r.CurrentRoleName(ctx, p)) == "super_admin"
}

// CurrentRoleName returns the most recently assigned effective role, else the
// legacy role string. An empty result means the principal has no role at all.
func (r *Resolver) CurrentRoleName(ctx context.Context, p *Principal) string {
	if p == nil {
		return ""
	}

	var current *RoleAssignment
	for _, a := range r.effectiveAssignments(ctx, p) {
		if current == nil || a.AssignedAt.After(current.AssignedAt) {
			current = &a
		}
	}
	if current != nil {
		return current.RoleName
	}
	return p.Role
}

func (r *Resolver) ClearPermissionCache(ctx context.Context, p *Principal) bool {
	if p == nil {
		return false
	}
	if err := r.sync.Clear(ctx, p.ID); err != nil {
		r.logger.WarnContext(ctx, "failed to clear permission cache", "admin_id", p.ID, "error", err)
		return false
	}
	return true
}

func (r *Resolver) RefreshPermissionCache(ctx context.Context, p *Principal) []string {
	if p == nil {
		return nil
	}
	perms, err := r.sync.Refresh(ctx, p.ID)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to refresh permission cache", "admin_id", p.ID, "error", err)
		return nil
	}
	return perms
}

// EffectivePermissions is the union of every source's grants that can be enumerated:
// role-sync permissions, the inline list and, for legacy admins, the allowlist.
func (r *Resolver) EffectivePermissions(ctx context.Context, p *Principal) []string {
	if p == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(perms []string) {
		for _, perm := range perms {
			if _, ok := seen[perm]; !ok {
				seen[perm] = struct{}{}
				out = append(out, perm)
			}
		}
	}

	synced, err := r.sync.Permissions(ctx, p.ID)
	if err != nil {
		r.logger.WarnContext(ctx, "role sync unavailable while listing permissions", "admin_id", p.ID, "error", err)
	}
	add(synced)
	add(p.Permissions)
	if isLegacyAdmin(p.Role) {
		add(LegacyAllowlist())
	}
	return out
}

func (r *Resolver) effectiveAssignments(ctx context.Context, p *Principal) []RoleAssignment {
	assignments, err := r.roles.AssignedRoles(ctx, p.ID)
	if err != nil {
		r.logger.DebugContext(ctx, "role lookup failed, treating as no roles", "admin_id", p.ID, "error", err)
		return nil
	}

	now := r.now()
	effective := assignments[:0:0]
	for _, a := range assignments {
		if a.Effective(now) {
			effective = append(effective, a)
		}
	}
	return effective
}

func legacyRoleMatches(legacy, roleName string) bool {
	if legacy == "" {
		return false
	}
	return legacy == roleName ||
		strings.EqualFold(legacy, roleName) ||
		NormalizeRoleName(legacy) == NormalizeRoleName(roleName)
}
