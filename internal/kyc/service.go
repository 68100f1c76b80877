package kyc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/core/events"
)

type RepositoryAPI interface {
	GetDriver(ctx context.Context, driverID int64) (*Driver, error)
	// SaveProgress persists p if its Version still matches the stored row and
	// bumps p.Version on success.
	SaveProgress(ctx context.Context, p *Progress) error
	ListDocuments(ctx context.Context, driverID int64) ([]Document, error)
	ListAuditEntries(ctx context.Context, driverID int64) ([]AuditEntry, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	policy    RejectionPolicy
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, publisher EventPublisher, policy RejectionPolicy, logger *slog.Logger) *Service {
	if policy == "" {
		policy = RejectRetain
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock pins the service clock; used by tests and the CLI.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) CompleteStep(ctx context.Context, driverID int64, step int) (*Progress, error) {
	return s.mutate(ctx, driverID, events.EventTypeKycStepCompleted, step, "", func(p *Progress, now time.Time) error {
		return p.CompleteStep(step, now)
	})
}

func (s *Service) Submit(ctx context.Context, driverID int64) (*Progress, error) {
	return s.mutate(ctx, driverID, events.EventTypeKycSubmitted, 0, "", func(p *Progress, now time.Time) error {
		return p.Submit(now)
	})
}

func (s *Service) Approve(ctx context.Context, driverID, reviewerID int64) (*Progress, error) {
	return s.mutate(ctx, driverID, events.EventTypeKycApproved, 0, "", func(p *Progress, now time.Time) error {
		return p.Approve(reviewerID, now)
	})
}

func (s *Service) Reject(ctx context.Context, driverID, reviewerID int64, reason string) (*Progress, error) {
	return s.mutate(ctx, driverID, events.EventTypeKycRejected, 0, reason, func(p *Progress, now time.Time) error {
		return p.Reject(reason, reviewerID, s.policy, now)
	})
}

func (s *Service) Reset(ctx context.Context, driverID int64, reason string) (*Progress, error) {
	return s.mutate(ctx, driverID, events.EventTypeKycReset, 0, reason, func(p *Progress, _ time.Time) error {
		p.Reset(reason)
		return nil
	})
}

func (s *Service) Summary(ctx context.Context, driverID int64) (*Summary, error) {
	d, err := s.repo.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	docs, err := s.repo.ListDocuments(ctx, driverID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list driver documents", "driver_id", driverID, "error", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return NewSummary(d, docs), nil
}

func (s *Service) AuditTrail(ctx context.Context, driverID int64) ([]AuditEntry, error) {
	if _, err := s.repo.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return s.repo.ListAuditEntries(ctx, driverID)
}

func (s *Service) mutate(ctx context.Context, driverID int64, eventType string, step int, notes string, apply func(*Progress, time.Time) error) (*Progress, error) {
	d, err := s.repo.GetDriver(ctx, driverID)
	if err != nil {
		if !errors.Is(err, ErrDriverNotFound) {
			s.logger.ErrorContext(ctx, "failed to load driver", "driver_id", driverID, "error", err)
		}
		return nil, err
	}

	p := d.Progress
	from := p.Status
	if err := apply(&p, s.now()); err != nil {
		s.logger.WarnContext(ctx, "kyc transition rejected",
			"driver_id", driverID,
			"event", eventType,
			"from_status", from,
			"error", err)
		return nil, err
	}

	if err := s.repo.SaveProgress(ctx, &p); err != nil {
		if errors.Is(err, ErrConcurrentUpdate) {
			s.logger.WarnContext(ctx, "kyc update lost a race", "driver_id", driverID, "event", eventType)
		} else {
			s.logger.ErrorContext(ctx, "failed to save kyc progress", "driver_id", driverID, "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "kyc progress updated",
		"driver_id", driverID,
		"event", eventType,
		"from_status", from,
		"to_status", p.Status)

	if s.publisher != nil {
		event := events.NewKycEvent(eventType, driverID, internal.ActorIDFromContext(ctx), string(from), string(p.Status), step, notes)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish kyc event", "driver_id", driverID, "event", eventType, "error", err)
		}
	}
	return &p, nil
}
