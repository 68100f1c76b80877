package authz_test

import (
	"context"
	"errors"
	"time"

	"github.com/drivelink/backoffice/internal/authz"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failingRefresher struct{}

func (failingRefresher) Refresh(context.Context, int64) ([]string, error) {
	return nil, errors.New("boom")
}

var _ = Describe("CacheWarmer", func() {
	var (
		ctx  context.Context
		sync *fakeSync
	)

	BeforeEach(func() {
		ctx = context.Background()
		sync = newFakeSync()
	})

	It("refreshes every enqueued admin before draining", func() {
		warmer := authz.NewCacheWarmer(sync, authz.WarmerConfig{MaxWorkers: 3, JobQueueSize: 4}, quietLogger())

		ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		Expect(warmer.Enqueue(ctx, ids...)).To(Succeed())
		warmer.Drain()

		Expect(sync.refreshedIDs()).To(ConsistOf(ids))
		refreshed, failed := warmer.Stats()
		Expect(refreshed).To(Equal(int64(10)))
		Expect(failed).To(BeZero())
	})

	It("processes jobs asynchronously while running", func() {
		warmer := authz.NewCacheWarmer(sync, authz.WarmerConfig{MaxWorkers: 2}, quietLogger())
		defer warmer.Shutdown()

		Expect(warmer.Enqueue(ctx, 42)).To(Succeed())
		Eventually(sync.refreshedIDs).WithTimeout(time.Second).Should(ContainElement(int64(42)))
	})

	It("counts failures", func() {
		warmer := authz.NewCacheWarmer(failingRefresher{}, authz.WarmerConfig{MaxWorkers: 1}, quietLogger())
		Expect(warmer.Enqueue(ctx, 1, 2)).To(Succeed())
		warmer.Drain()

		_, failed := warmer.Stats()
		Expect(failed).To(Equal(int64(2)))
	})

	It("rejects jobs after shutdown", func() {
		warmer := authz.NewCacheWarmer(sync, authz.WarmerConfig{}, quietLogger())
		warmer.Shutdown()
		Expect(warmer.Enqueue(ctx, 1)).To(MatchError(authz.ErrWarmerClosed))

		warmer.Drain()
	})
})
