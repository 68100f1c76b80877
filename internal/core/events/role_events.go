package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRoleAssignmentChanged  = "role.assignment_changed"
	EventTypeRolePermissionsChanged = "role.permissions_changed"
)

// RoleAssignmentChangedEvent affects a single admin's effective permissions.
type RoleAssignmentChangedEvent struct {
	BaseEvent
	AdminID int64 `json:"admin_id"`
	RoleID  int64 `json:"role_id"`
}

func NewRoleAssignmentChangedEvent(adminID, roleID int64) *RoleAssignmentChangedEvent {
	return &RoleAssignmentChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRoleAssignmentChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"admin_id": adminID,
				"role_id":  roleID,
			},
		},
		AdminID: adminID,
		RoleID:  roleID,
	}
}

// RolePermissionsChangedEvent affects every holder of the role.
type RolePermissionsChangedEvent struct {
	BaseEvent
	RoleID int64 `json:"role_id"`
}

func NewRolePermissionsChangedEvent(roleID int64) *RolePermissionsChangedEvent {
	return &RolePermissionsChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRolePermissionsChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"role_id": roleID,
			},
		},
		RoleID: roleID,
	}
}
