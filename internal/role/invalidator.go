package role

import (
	"context"
	"log/slog"

	"github.com/drivelink/backoffice/internal/core/events"
)

type CacheClearer interface {
	ClearMany(ctx context.Context, adminIDs []int64) error
}

type CacheWarmer interface {
	Enqueue(ctx context.Context, adminIDs ...int64) error
}

type HolderLookup interface {
	AdminIDsWithRole(ctx context.Context, roleID int64) ([]int64, error)
}

// CacheInvalidator drops and re-warms permission caches when the role graph changes.
type CacheInvalidator struct {
	clearer CacheClearer
	warmer  CacheWarmer
	holders HolderLookup
	logger  *slog.Logger
}

// NewCacheInvalidator accepts a nil warmer; caches then refill on the next read.
func NewCacheInvalidator(clearer CacheClearer, warmer CacheWarmer, holders HolderLookup, logger *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{clearer: clearer, warmer: warmer, holders: holders, logger: logger}
}

func (c *CacheInvalidator) Register(bus events.Subscriber) {
	bus.Subscribe(events.EventTypeRoleAssignmentChanged, events.Typed(c.HandleAssignmentChanged))
	bus.Subscribe(events.EventTypeRolePermissionsChanged, events.Typed(c.HandlePermissionsChanged))
}

func (c *CacheInvalidator) HandleAssignmentChanged(ctx context.Context, e *events.RoleAssignmentChangedEvent) error {
	return c.invalidate(ctx, []int64{e.AdminID})
}

func (c *CacheInvalidator) HandlePermissionsChanged(ctx context.Context, e *events.RolePermissionsChangedEvent) error {
	ids, err := c.holders.AdminIDsWithRole(ctx, e.RoleID)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to list role holders", "role_id", e.RoleID, "error", err)
		return err
	}
	return c.invalidate(ctx, ids)
}

func (c *CacheInvalidator) invalidate(ctx context.Context, adminIDs []int64) error {
	if len(adminIDs) == 0 {
		return nil
	}
	if err := c.clearer.ClearMany(ctx, adminIDs); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear permission caches", "admins", len(adminIDs), "error", err)
		return err
	}
	if c.warmer == nil {
		return nil
	}
	if err := c.warmer.Enqueue(ctx, adminIDs...); err != nil {
		c.logger.WarnContext(ctx, "failed to queue cache warm", "admins", len(adminIDs), "error", err)
	}
	return nil
}
