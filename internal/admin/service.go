package admin

import (
	"context"
	"log/slog"
	"slices"

	"github.com/drivelink/backoffice/internal/authz"
)

type Authorizer interface {
	CurrentRoleName(ctx context.Context, p *authz.Principal) string
	IsSuperAdmin(ctx context.Context, p *authz.Principal) bool
	EffectivePermissions(ctx context.Context, p *authz.Principal) []string
	FilteredMenuTree(ctx context.Context, p *authz.Principal) []authz.MenuItem
	ClearPermissionCache(ctx context.Context, p *authz.Principal) bool
	RefreshPermissionCache(ctx context.Context, p *authz.Principal) []string
}

type Service struct {
	authorizer Authorizer
	logger     *slog.Logger
}

func NewService(authorizer Authorizer, logger *slog.Logger) *Service {
	return &Service{authorizer: authorizer, logger: logger}
}

func (s *Service) Profile(ctx context.Context, p *authz.Principal) *Profile {
	perms := s.authorizer.EffectivePermissions(ctx, p)
	if perms == nil {
		perms = []string{}
	}
	slices.Sort(perms)

	profile := &Profile{
		ID:           p.ID,
		Email:        p.Email,
		Name:         p.Name,
		IsSuperAdmin: s.authorizer.IsSuperAdmin(ctx, p),
		Permissions:  perms,
	}
	if role := s.authorizer.CurrentRoleName(ctx, p); role != "" {
		profile.CurrentRole = &role
	}
	return profile
}

func (s *Service) Menu(ctx context.Context, p *authz.Principal) []authz.MenuItem {
	items := s.authorizer.FilteredMenuTree(ctx, p)
	if items == nil {
		items = []authz.MenuItem{}
	}
	return items
}

// RefreshPermissions drops the admin's cached permissions and recomputes them.
func (s *Service) RefreshPermissions(ctx context.Context, p *authz.Principal) RefreshResponse {
	cleared := s.authorizer.ClearPermissionCache(ctx, p)
	perms := s.authorizer.RefreshPermissionCache(ctx, p)
	if perms == nil {
		perms = []string{}
	}
	s.logger.InfoContext(ctx, "permission cache refreshed", "admin_id", p.ID, "cleared", cleared, "permissions", len(perms))
	return RefreshResponse{Cleared: cleared, Permissions: perms}
}
