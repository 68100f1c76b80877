package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelink/backoffice/internal/authz"
	"github.com/jmoiron/sqlx"
)

const effectivePermissionsQuery = `
SELECT p.name, ar.expires_at
FROM admin_roles ar
JOIN roles r ON r.id = ar.role_id
JOIN role_permissions rp ON rp.role_id = r.id
JOIN permissions p ON p.id = rp.permission_id
WHERE ar.admin_id = ?
  AND ar.is_active = ?
  AND (ar.expires_at IS NULL OR ar.expires_at > ?)
  AND r.is_active = ? AND r.deleted_at IS NULL
  AND rp.is_active = ?
  AND p.is_active = ? AND p.deleted_at IS NULL
ORDER BY p.name`

const assignedRolesQuery = `
SELECT r.id AS role_id,
       r.name AS role_name,
       r.is_active AS role_active,
       ar.is_active AS active,
       ar.assigned_at,
       ar.expires_at
FROM admin_roles ar
JOIN roles r ON r.id = ar.role_id
WHERE ar.admin_id = ?
  AND r.deleted_at IS NULL
ORDER BY ar.assigned_at DESC`

type grantRow struct {
	Name      string     `db:"name"`
	ExpiresAt *time.Time `db:"expires_at"`
}

// Store reads the role/permission graph with hand-written joins.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock is used by tests that pin expiry comparisons.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// EffectivePermissions returns the distinct permission names of the admin's effective
// assignments together with the earliest expiry among the assignments that grant them.
func (s *Store) EffectivePermissions(ctx context.Context, adminID int64) (authz.EffectiveSet, error) {
	var rows []grantRow
	query := s.db.Rebind(effectivePermissionsQuery)
	if err := s.db.SelectContext(ctx, &rows, query, adminID, true, s.now(), true, true, true); err != nil {
		return authz.EffectiveSet{}, fmt.Errorf("select effective permissions: %w", err)
	}

	set := authz.EffectiveSet{Permissions: []string{}}
	for i, row := range rows {
		if i == 0 || rows[i-1].Name != row.Name {
			set.Permissions = append(set.Permissions, row.Name)
		}
		if row.ExpiresAt != nil && (set.ExpiresAt == nil || row.ExpiresAt.Before(*set.ExpiresAt)) {
			at := row.ExpiresAt.UTC()
			set.ExpiresAt = &at
		}
	}
	return set, nil
}

func (s *Store) AssignedRoles(ctx context.Context, adminID int64) ([]authz.RoleAssignment, error) {
	var assignments []authz.RoleAssignment
	query := s.db.Rebind(assignedRolesQuery)
	if err := s.db.SelectContext(ctx, &assignments, query, adminID); err != nil {
		return nil, fmt.Errorf("select role assignments: %w", err)
	}
	return assignments, nil
}
