package role_test

import (
	"context"
	"errors"

	"github.com/drivelink/backoffice/internal/core/events"
	"github.com/drivelink/backoffice/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeClearer struct{ cleared [][]int64 }

func (f *fakeClearer) ClearMany(_ context.Context, ids []int64) error {
	f.cleared = append(f.cleared, ids)
	return nil
}

type fakeWarmer struct {
	queued []int64
	err    error
}

func (f *fakeWarmer) Enqueue(_ context.Context, ids ...int64) error {
	f.queued = append(f.queued, ids...)
	return f.err
}

type fakeHolders map[int64][]int64

func (f fakeHolders) AdminIDsWithRole(_ context.Context, roleID int64) ([]int64, error) {
	return f[roleID], nil
}

var _ = Describe("CacheInvalidator", func() {
	var (
		clearer *fakeClearer
		warmer  *fakeWarmer
		bus     *events.EventBus
		ctx     context.Context
	)

	BeforeEach(func() {
		clearer = &fakeClearer{}
		warmer = &fakeWarmer{}
		bus = events.NewEventBus(quietLogger())
		role.NewCacheInvalidator(clearer, warmer, fakeHolders{3: {10, 11}}, quietLogger()).Register(bus)
		ctx = context.Background()
	})

	It("clears and re-warms a single admin on assignment changes", func() {
		Expect(bus.PublishSync(ctx, events.NewRoleAssignmentChangedEvent(10, 3))).To(Succeed())
		Expect(clearer.cleared).To(Equal([][]int64{{10}}))
		Expect(warmer.queued).To(Equal([]int64{10}))
	})

	It("clears every holder on permission changes", func() {
		Expect(bus.PublishSync(ctx, events.NewRolePermissionsChangedEvent(3))).To(Succeed())
		Expect(clearer.cleared).To(Equal([][]int64{{10, 11}}))
		Expect(warmer.queued).To(ConsistOf(int64(10), int64(11)))
	})

	It("does nothing for a role without holders", func() {
		Expect(bus.PublishSync(ctx, events.NewRolePermissionsChangedEvent(4))).To(Succeed())
		Expect(clearer.cleared).To(BeEmpty())
	})

	It("treats a warmer failure as non fatal", func() {
		warmer.err = errors.New("closed")
		Expect(bus.PublishSync(ctx, events.NewRoleAssignmentChangedEvent(10, 3))).To(Succeed())
		Expect(clearer.cleared).To(HaveLen(1))
	})

	It("works without a warmer", func() {
		inv := role.NewCacheInvalidator(clearer, nil, fakeHolders{}, quietLogger())
		Expect(inv.HandleAssignmentChanged(ctx, events.NewRoleAssignmentChangedEvent(12, 1))).To(Succeed())
		Expect(clearer.cleared).To(Equal([][]int64{{12}}))
	})
})
