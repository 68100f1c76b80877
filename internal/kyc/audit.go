package kyc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/drivelink/backoffice/internal/core/events"
)

type AuditEntry struct {
	ID         int64     `json:"id"`
	DriverID   int64     `json:"driver_id"`
	Action     string    `json:"action"`
	ActorID    *int64    `json:"actor_id,omitempty"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type AuditStore interface {
	RecordAuditEntry(ctx context.Context, entry *AuditEntry) error
}

// AuditRecorder persists every KYC lifecycle event.
type AuditRecorder struct {
	store  AuditStore
	logger *slog.Logger
}

func NewAuditRecorder(store AuditStore, logger *slog.Logger) *AuditRecorder {
	return &AuditRecorder{store: store, logger: logger}
}

func (a *AuditRecorder) Register(bus events.Subscriber) {
	events.SubscribeAll(bus, events.KycEventTypes, events.Typed(a.Handle))
}

func (a *AuditRecorder) Handle(ctx context.Context, e *events.KycEvent) error {
	entry := &AuditEntry{
		DriverID:   e.DriverID,
		Action:     e.EventType(),
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Notes:      auditNotes(e),
		CreatedAt:  e.OccurredAt(),
	}
	if e.ActorID != 0 {
		actor := e.ActorID
		entry.ActorID = &actor
	}

	if err := a.store.RecordAuditEntry(ctx, entry); err != nil {
		a.logger.ErrorContext(ctx, "failed to record kyc audit entry", "driver_id", e.DriverID, "action", e.EventType(), "error", err)
		return err
	}
	return nil
}

func auditNotes(e *events.KycEvent) string {
	if e.Step > 0 {
		return fmt.Sprintf("step %d completed", e.Step)
	}
	return e.Notes
}
