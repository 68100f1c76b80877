package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PermissionSync resolves and caches permissions reachable through role assignments.
type PermissionSync interface {
	Permissions(ctx context.Context, adminID int64) ([]string, error)
	Clear(ctx context.Context, adminID int64) error
	Refresh(ctx context.Context, adminID int64) ([]string, error)
}

// EffectiveSet is the permission set reachable through effective role assignments.
// ExpiresAt is the earliest expiry among those assignments, nil when none expires.
type EffectiveSet struct {
	Permissions []string
	ExpiresAt   *time.Time
}

// PermissionStore reads the effective permission set from the role graph.
type PermissionStore interface {
	EffectivePermissions(ctx context.Context, adminID int64) (EffectiveSet, error)
}

// PermissionCache holds computed permission sets keyed by admin id.
// Get reports found=false on a miss; an empty set is a valid hit.
// Set never keeps an entry longer than maxTTL when maxTTL is positive.
type PermissionCache interface {
	Get(ctx context.Context, adminID int64) (perms []string, found bool, err error)
	Set(ctx context.Context, adminID int64, perms []string, maxTTL time.Duration) error
	Invalidate(ctx context.Context, adminIDs ...int64) error
}

// RoleLookup lists every role assignment of an admin, effective or not.
type RoleLookup interface {
	AssignedRoles(ctx context.Context, adminID int64) ([]RoleAssignment, error)
}

// NoRoleLookup is used where the role relationship is not available.
type NoRoleLookup struct{}

func (NoRoleLookup) AssignedRoles(context.Context, int64) ([]RoleAssignment, error) {
	return nil, nil
}

// NoPermissionSync disables the role-sync source.
type NoPermissionSync struct{}

func (NoPermissionSync) Permissions(context.Context, int64) ([]string, error) { return nil, nil }
func (NoPermissionSync) Clear(context.Context, int64) error                  { return nil }
func (NoPermissionSync) Refresh(context.Context, int64) ([]string, error)     { return []string{}, nil }

type noPermissionCache struct{}

func (noPermissionCache) Get(context.Context, int64) ([]string, bool, error) { return nil, false, nil }
func (noPermissionCache) Set(context.Context, int64, []string, time.Duration) error {
	return nil
}
func (noPermissionCache) Invalidate(context.Context, ...int64) error { return nil }

// RoleSyncService is a read-through cache in front of the role graph.
type RoleSyncService struct {
	store  PermissionStore
	cache  PermissionCache
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time

	// generations counts invalidations per admin; a load that raced one is not cached
	mu          sync.Mutex
	generations map[int64]uint64
}

func NewRoleSyncService(store PermissionStore, cache PermissionCache, logger *slog.Logger) *RoleSyncService {
	if cache == nil {
		cache = noPermissionCache{}
	}
	return &RoleSyncService{
		store:       store,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
		generations: make(map[int64]uint64),
	}
}

// WithClock is used by tests that pin assignment expiry.
func (s *RoleSyncService) WithClock(now func() time.Time) *RoleSyncService {
	s.now = now
	return s
}

func (s *RoleSyncService) Permissions(ctx context.Context, adminID int64) ([]string, error) {
	perms, found, err := s.cache.Get(ctx, adminID)
	if err != nil {
		s.logger.WarnContext(ctx, "permission cache read failed, falling back to store", "admin_id", adminID, "error", err)
	} else if found {
		return perms, nil
	}

	v, err, _ := s.group.Do(flightKey(adminID), func() (interface{}, error) {
		return s.load(ctx, adminID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *RoleSyncService) Clear(ctx context.Context, adminID int64) error {
	if err := s.cache.Invalidate(ctx, adminID); err != nil {
		return fmt.Errorf("invalidate permissions for admin %d: %w", adminID, err)
	}
	s.bump(adminID)
	s.group.Forget(flightKey(adminID))
	return nil
}

// Refresh drops the cached entry and recomputes it from the store.
func (s *RoleSyncService) Refresh(ctx context.Context, adminID int64) ([]string, error) {
	if err := s.Clear(ctx, adminID); err != nil {
		s.logger.WarnContext(ctx, "permission cache invalidation failed", "admin_id", adminID, "error", err)
	}
	return s.load(ctx, adminID)
}

// ClearMany invalidates several admins at once, e.g. every holder of a changed role.
func (s *RoleSyncService) ClearMany(ctx context.Context, adminIDs []int64) error {
	if len(adminIDs) == 0 {
		return nil
	}
	if err := s.cache.Invalidate(ctx, adminIDs...); err != nil {
		return fmt.Errorf("invalidate permissions for %d admins: %w", len(adminIDs), err)
	}
	for _, id := range adminIDs {
		s.bump(id)
		s.group.Forget(flightKey(id))
	}
	return nil
}

func (s *RoleSyncService) load(ctx context.Context, adminID int64) ([]string, error) {
	gen := s.generation(adminID)

	set, err := s.store.EffectivePermissions(ctx, adminID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load effective permissions", "admin_id", adminID, "error", err)
		return nil, fmt.Errorf("load permissions for admin %d: %w", adminID, err)
	}
	perms := set.Permissions
	if perms == nil {
		perms = []string{}
	}

	var maxTTL time.Duration
	if set.ExpiresAt != nil {
		maxTTL = set.ExpiresAt.Sub(s.now())
		if maxTTL <= 0 {
			return perms, nil
		}
	}
	if s.generation(adminID) != gen {
		s.logger.DebugContext(ctx, "permissions invalidated during load, not caching", "admin_id", adminID)
		return perms, nil
	}
	if err := s.cache.Set(ctx, adminID, perms, maxTTL); err != nil {
		s.logger.WarnContext(ctx, "permission cache write failed", "admin_id", adminID, "error", err)
	}
	return perms, nil
}

func (s *RoleSyncService) generation(adminID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[adminID]
}

func (s *RoleSyncService) bump(adminID int64) {
	s.mu.Lock()
	s.generations[adminID]++
	s.mu.Unlock()
}

func flightKey(adminID int64) string {
	return strconv.FormatInt(adminID, 10)
}
