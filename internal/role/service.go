package role

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/authz"
	"github.com/drivelink/backoffice/internal/core/common/validation"
	roleDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/role"
	"github.com/drivelink/backoffice/internal/core/events"
)

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// RepositoryAPI returns nil, nil for lookups that find nothing.
type RepositoryAPI interface {
	ListRoles(ctx context.Context) ([]*roleDatamodel.Role, error)
	RolePermissionNames(ctx context.Context, roleID int64) ([]string, error)
	GetRoleByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	CreateRoleWithPermissions(ctx context.Context, r *roleDatamodel.Role, permissionIDs []int64) error
	SetRoleActive(ctx context.Context, id int64, active bool) error

	ListPermissions(ctx context.Context) ([]*roleDatamodel.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*roleDatamodel.Permission, error)
	GrantPermission(ctx context.Context, roleID, permissionID int64) error
	RevokePermission(ctx context.Context, roleID, permissionID int64) (bool, error)

	AdminExists(ctx context.Context, adminID int64) (bool, error)
	AssignRole(ctx context.Context, a *roleDatamodel.AdminRole) error
	RevokeAssignment(ctx context.Context, adminID, roleID int64) (bool, error)
	AdminIDsWithRole(ctx context.Context, roleID int64) ([]int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list roles", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		perms, err := s.repo.RolePermissionNames(ctx, row.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to load role permissions", "role_id", row.ID, "error", err)
			return nil, internal.NewInternalError("failed to list roles", err)
		}
		roles = append(roles, FromDataModel(row, perms))
	}
	return roles, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list permissions", "error", err)
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	perms := make([]Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, PermissionFromDataModel(row))
	}
	return perms, nil
}

func (s *Service) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	name := authz.NormalizeRoleName(req.Name)

	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(50).Matches(roleNamePattern, internal.ErrCodeInvalidRoleName)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}
	if existing != nil {
		return nil, internal.ErrRoleExists
	}

	perms := make([]*roleDatamodel.Permission, 0, len(req.Permissions))
	for _, permName := range req.Permissions {
		perm, err := s.repo.GetPermissionByName(ctx, permName)
		if err != nil {
			return nil, internal.NewInternalError("failed to create role", err)
		}
		if perm == nil {
			return nil, internal.NewValidationFieldError("permissions", fmt.Sprintf("unknown permission %s", permName), internal.ErrCodeInvalidPermission)
		}
		perms = append(perms, perm)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Name
	}
	row := &roleDatamodel.Role{
		Name:        name,
		DisplayName: displayName,
		Description: req.Description,
		IsActive:    true,
	}
	ids := make([]int64, 0, len(perms))
	names := make([]string, 0, len(perms))
	for _, perm := range perms {
		ids = append(ids, perm.ID)
		names = append(names, perm.Name)
	}
	if err := s.repo.CreateRoleWithPermissions(ctx, row, ids); err != nil {
		s.logger.ErrorContext(ctx, "failed to create role", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.InfoContext(ctx, "role created", "role_id", row.ID, "name", name, "permissions", len(names))
	return FromDataModel(row, names), nil
}

func (s *Service) ActivateRole(ctx context.Context, id int64) (*Role, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) DeactivateRole(ctx context.Context, id int64) (*Role, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (*Role, error) {
	row, err := s.mustRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.IsActive != active {
		if err := s.repo.SetRoleActive(ctx, id, active); err != nil {
			return nil, internal.NewInternalError("failed to update role", err)
		}
		row.IsActive = active
		s.publish(ctx, events.NewRolePermissionsChangedEvent(id))
	}

	perms, err := s.repo.RolePermissionNames(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role permissions", err)
	}
	return FromDataModel(row, perms), nil
}

func (s *Service) GrantPermission(ctx context.Context, roleID int64, permission string) error {
	if _, err := s.mustRole(ctx, roleID); err != nil {
		return err
	}
	perm, err := s.mustPermission(ctx, permission)
	if err != nil {
		return err
	}
	if err := s.repo.GrantPermission(ctx, roleID, perm.ID); err != nil {
		return internal.NewInternalError("failed to grant permission", err)
	}

	s.logger.InfoContext(ctx, "permission granted", "role_id", roleID, "permission", perm.Name)
	s.publish(ctx, events.NewRolePermissionsChangedEvent(roleID))
	return nil
}

func (s *Service) RevokePermission(ctx context.Context, roleID int64, permission string) error {
	if _, err := s.mustRole(ctx, roleID); err != nil {
		return err
	}
	perm, err := s.mustPermission(ctx, permission)
	if err != nil {
		return err
	}
	changed, err := s.repo.RevokePermission(ctx, roleID, perm.ID)
	if err != nil {
		return internal.NewInternalError("failed to revoke permission", err)
	}
	if changed {
		s.logger.InfoContext(ctx, "permission revoked", "role_id", roleID, "permission", perm.Name)
		s.publish(ctx, events.NewRolePermissionsChangedEvent(roleID))
	}
	return nil
}

func (s *Service) AssignRole(ctx context.Context, adminID int64, req AssignRoleRequest) (*Assignment, error) {
	exists, err := s.repo.AdminExists(ctx, adminID)
	if err != nil {
		return nil, internal.NewInternalError("failed to assign role", err)
	}
	if !exists {
		return nil, internal.ErrAdminNotFound
	}
	if _, err := s.mustRole(ctx, req.RoleID); err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, internal.NewValidationFieldError("expires_at", "expires_at must be in the future", internal.ErrCodeValidationFailed)
	}

	row := &roleDatamodel.AdminRole{
		AdminID:    adminID,
		RoleID:     req.RoleID,
		IsActive:   true,
		AssignedAt: s.now().UTC(),
		ExpiresAt:  req.ExpiresAt,
	}
	if actor := internal.ActorIDFromContext(ctx); actor != 0 {
		row.AssignedBy = &actor
	}
	if err := s.repo.AssignRole(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to assign role", "admin_id", adminID, "role_id", req.RoleID, "error", err)
		return nil, internal.NewInternalError("failed to assign role", err)
	}

	s.logger.InfoContext(ctx, "role assigned", "admin_id", adminID, "role_id", req.RoleID)
	s.publish(ctx, events.NewRoleAssignmentChangedEvent(adminID, req.RoleID))
	return AssignmentFromDataModel(row), nil
}

func (s *Service) RevokeRole(ctx context.Context, adminID, roleID int64) error {
	revoked, err := s.repo.RevokeAssignment(ctx, adminID, roleID)
	if err != nil {
		return internal.NewInternalError("failed to revoke role", err)
	}
	if !revoked {
		return internal.ErrRoleNotFound
	}

	s.logger.InfoContext(ctx, "role revoked", "admin_id", adminID, "role_id", roleID)
	s.publish(ctx, events.NewRoleAssignmentChangedEvent(adminID, roleID))
	return nil
}

func (s *Service) mustRole(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	row, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	return row, nil
}

func (s *Service) mustPermission(ctx context.Context, name string) (*roleDatamodel.Permission, error) {
	perm, err := s.repo.GetPermissionByName(ctx, name)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return perm, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish role event", "event", event.EventType(), "error", err)
	}
}
