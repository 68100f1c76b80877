package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeKycStepCompleted = "kyc.step_completed"
	EventTypeKycSubmitted     = "kyc.submitted"
	EventTypeKycApproved      = "kyc.approved"
	EventTypeKycRejected      = "kyc.rejected"
	EventTypeKycReset         = "kyc.reset"
)

// KycEventTypes lists every KYC lifecycle event, in lifecycle order.
var KycEventTypes = []string{
	EventTypeKycStepCompleted,
	EventTypeKycSubmitted,
	EventTypeKycApproved,
	EventTypeKycRejected,
	EventTypeKycReset,
}

type KycEvent struct {
	BaseEvent
	DriverID   int64  `json:"driver_id"`
	ActorID    int64  `json:"actor_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Step       int    `json:"step,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func NewKycEvent(eventType string, driverID, actorID int64, fromStatus, toStatus string, step int, notes string) *KycEvent {
	return &KycEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"driver_id":   driverID,
				"actor_id":    actorID,
				"from_status": fromStatus,
				"to_status":   toStatus,
				"step":        step,
				"notes":       notes,
			},
		},
		DriverID:   driverID,
		ActorID:    actorID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Step:       step,
		Notes:      notes,
	}
}
