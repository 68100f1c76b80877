package kyc_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/core/events"
	"github.com/drivelink/backoffice/internal/kyc"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type memoryRepo struct {
	mu      sync.Mutex
	drivers map[int64]*kyc.Driver
	docs    map[int64][]kyc.Document
	audit   []kyc.AuditEntry
	saveErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{drivers: map[int64]*kyc.Driver{}, docs: map[int64][]kyc.Document{}}
}

func (r *memoryRepo) add(id int64) {
	r.drivers[id] = &kyc.Driver{ID: id, Progress: kyc.NewProgress(id)}
}

func (r *memoryRepo) GetDriver(_ context.Context, id int64) (*kyc.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return nil, kyc.ErrDriverNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memoryRepo) SaveProgress(_ context.Context, p *kyc.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	d := r.drivers[p.DriverID]
	if d.Progress.Version != p.Version {
		return kyc.ErrConcurrentUpdate
	}
	p.Version++
	d.Progress = *p
	return nil
}

func (r *memoryRepo) ListDocuments(_ context.Context, id int64) ([]kyc.Document, error) {
	return r.docs[id], nil
}

func (r *memoryRepo) ListAuditEntries(_ context.Context, id int64) ([]kyc.AuditEntry, error) {
	var out []kyc.AuditEntry
	for _, e := range r.audit {
		if e.DriverID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) RecordAuditEntry(_ context.Context, e *kyc.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.audit) + 1)
	r.audit = append(r.audit, *e)
	return nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

var _ = Describe("Service", func() {
	var (
		repo      *memoryRepo
		publisher *recordingPublisher
		svc       *kyc.Service
		ctx       context.Context
		now       time.Time
	)

	BeforeEach(func() {
		repo = newMemoryRepo()
		repo.add(1)
		publisher = &recordingPublisher{}
		svc = kyc.NewService(repo, publisher, kyc.RejectRetain, quietLogger())
		now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
		svc.SetClock(func() time.Time { return now })
		ctx = internal.ContextWithActorID(context.Background(), 77)
	})

	walkToSubmitted := func() {
		for step := 1; step <= kyc.TotalSteps; step++ {
			_, err := svc.CompleteStep(ctx, 1, step)
			Expect(err).NotTo(HaveOccurred())
		}
		_, err := svc.Submit(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
	}

	It("persists each transition and bumps the version", func() {
		p, err := svc.CompleteStep(ctx, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Status).To(Equal(kyc.StatusInProgress))
		Expect(p.Version).To(Equal(int64(1)))
		Expect(repo.drivers[1].Progress.StepCompletedAt[0]).To(HaveValue(Equal(now)))
	})

	It("publishes an event carrying the acting admin", func() {
		walkToSubmitted()
		_, err := svc.Approve(ctx, 1, 77)
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.events).To(HaveLen(5))
		last := publisher.events[4].(*events.KycEvent)
		Expect(last.EventType()).To(Equal(events.EventTypeKycApproved))
		Expect(last.ActorID).To(Equal(int64(77)))
		Expect(last.FromStatus).To(Equal("submitted"))
		Expect(last.ToStatus).To(Equal("approved"))
	})

	It("does not save or publish a rejected transition", func() {
		_, err := svc.Submit(ctx, 1)
		Expect(errors.Is(err, kyc.ErrInvalidTransition)).To(BeTrue())
		Expect(repo.drivers[1].Progress.Version).To(Equal(int64(0)))
		Expect(publisher.events).To(BeEmpty())
	})

	It("reports unknown drivers", func() {
		_, err := svc.CompleteStep(ctx, 404, 1)
		Expect(err).To(MatchError(kyc.ErrDriverNotFound))
		_, err = svc.Summary(ctx, 404)
		Expect(err).To(MatchError(kyc.ErrDriverNotFound))
	})

	It("surfaces concurrent updates", func() {
		repo.saveErr = kyc.ErrConcurrentUpdate
		_, err := svc.CompleteStep(ctx, 1, 1)
		Expect(err).To(MatchError(kyc.ErrConcurrentUpdate))
		Expect(publisher.events).To(BeEmpty())
	})

	It("applies the configured rejection policy", func() {
		svc = kyc.NewService(repo, publisher, kyc.RejectReset, quietLogger())
		walkToSubmitted()
		p, err := svc.Reject(ctx, 1, 77, "document mismatch")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.CompletedStepCount()).To(Equal(0))
		Expect(p.RetryCount).To(Equal(1))
	})

	It("resets a driver", func() {
		walkToSubmitted()
		_, err := svc.Reject(ctx, 1, 77, "blurry")
		Expect(err).NotTo(HaveOccurred())

		p, err := svc.Reset(ctx, 1, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Status).To(Equal(kyc.StatusPending))
		Expect(p.RetryCount).To(Equal(1))
	})

	It("builds a summary with documents", func() {
		repo.docs[1] = []kyc.Document{{Type: kyc.DocDriverLicenseScan, UploadedAt: now}}
		s, err := svc.Summary(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.DocumentsCompletion).To(Equal(20))
		Expect(s.RequiredDocuments[kyc.DocDriverLicenseScan].Uploaded).To(BeTrue())
	})

	Describe("AuditRecorder", func() {
		It("records every lifecycle event through the bus", func() {
			bus := events.NewEventBus(quietLogger())
			kyc.NewAuditRecorder(repo, quietLogger()).Register(bus)
			svc = kyc.NewService(repo, syncPublisher{bus}, kyc.RejectRetain, quietLogger())

			walkToSubmitted()
			_, err := svc.Reject(ctx, 1, 77, "blurry")
			Expect(err).NotTo(HaveOccurred())

			trail, err := svc.AuditTrail(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail).To(HaveLen(5))
			Expect(trail[0].Action).To(Equal(events.EventTypeKycStepCompleted))
			Expect(trail[0].Notes).To(Equal("step 1 completed"))
			Expect(trail[4].Action).To(Equal(events.EventTypeKycRejected))
			Expect(trail[4].Notes).To(Equal("blurry"))
			Expect(trail[4].ActorID).To(HaveValue(Equal(int64(77))))
		})

		It("leaves the actor empty for system changes", func() {
			entry := kyc.NewAuditRecorder(repo, quietLogger())
			err := entry.Handle(context.Background(), events.NewKycEvent(events.EventTypeKycReset, 1, 0, "rejected", "pending", 0, ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.audit[0].ActorID).To(BeNil())
		})
	})
})

// syncPublisher delivers events inline so assertions see them immediately.
type syncPublisher struct{ bus *events.EventBus }

func (p syncPublisher) Publish(ctx context.Context, e events.Event) error {
	return p.bus.PublishSync(ctx, e)
}
