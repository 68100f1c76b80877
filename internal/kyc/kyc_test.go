package kyc_test

import (
	"errors"
	"time"

	"github.com/drivelink/backoffice/internal/kyc"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Progress", func() {
	var (
		p   kyc.Progress
		now time.Time
	)

	BeforeEach(func() {
		p = kyc.NewProgress(42)
		now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	})

	completeAll := func() {
		for step := 1; step <= kyc.TotalSteps; step++ {
			Expect(p.CompleteStep(step, now)).To(Succeed())
		}
	}

	Describe("a fresh driver", func() {
		It("starts not started with nothing done", func() {
			Expect(p.Status).To(Equal(kyc.StatusNotStarted))
			Expect(p.ProgressPercentage()).To(Equal(0))
			Expect(p.CurrentStepLabel()).To(Equal(kyc.LabelNotStarted))
			Expect(p.CanPerformKyc()).To(BeTrue())
			Expect(p.State()).To(Equal(kyc.NotStarted{}))

			next, ok := p.NextStep()
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(kyc.LabelStep1))
		})
	})

	Describe("CompleteStep", func() {
		It("moves to in progress after the first step", func() {
			Expect(p.CompleteStep(1, now)).To(Succeed())
			Expect(p.Status).To(Equal(kyc.StatusInProgress))
			Expect(p.Step).To(Equal(1))
			Expect(p.IsStepCompleted(1)).To(BeTrue())
			Expect(*p.StepCompletedAt[0]).To(Equal(now))
			Expect(p.ProgressPercentage()).To(Equal(33))
			Expect(p.CurrentStepLabel()).To(Equal(kyc.LabelStep1))
		})

		It("reports 67 percent after two steps", func() {
			Expect(p.CompleteStep(1, now)).To(Succeed())
			Expect(p.CompleteStep(2, now)).To(Succeed())
			Expect(p.ProgressPercentage()).To(Equal(67))
			next, _ := p.NextStep()
			Expect(next).To(Equal(kyc.LabelStep3))
		})

		It("completes the KYC on the last step", func() {
			completeAll()
			Expect(p.Status).To(Equal(kyc.StatusCompleted))
			Expect(p.CompletedAt).NotTo(BeNil())
			Expect(p.ProgressPercentage()).To(Equal(100))
			Expect(p.CurrentStepLabel()).To(Equal(kyc.LabelCompleted))
			Expect(p.CanPerformKyc()).To(BeFalse())

			_, ok := p.NextStep()
			Expect(ok).To(BeFalse())
		})

		It("rejects steps out of range", func() {
			Expect(p.CompleteStep(0, now)).To(MatchError(kyc.ErrInvalidStep))
			Expect(p.CompleteStep(4, now)).To(MatchError(kyc.ErrInvalidStep))
			Expect(p.Status).To(Equal(kyc.StatusNotStarted))
		})

		It("requires steps in order", func() {
			err := p.CompleteStep(2, now)
			Expect(errors.Is(err, kyc.ErrInvalidTransition)).To(BeTrue())
			Expect(p.IsStepCompleted(2)).To(BeFalse())
		})

		It("does not complete a step twice", func() {
			Expect(p.CompleteStep(1, now)).To(Succeed())
			later := now.Add(time.Hour)
			Expect(errors.Is(p.CompleteStep(1, later), kyc.ErrInvalidTransition)).To(BeTrue())
			Expect(*p.StepCompletedAt[0]).To(Equal(now))
		})

		It("is not allowed once submitted", func() {
			completeAll()
			Expect(p.Submit(now)).To(Succeed())
			var te *kyc.TransitionError
			Expect(errors.As(p.CompleteStep(1, now), &te)).To(BeTrue())
			Expect(te.From).To(Equal(kyc.StatusSubmitted))
		})
	})

	Describe("Submit", func() {
		It("needs every step", func() {
			Expect(p.CompleteStep(1, now)).To(Succeed())
			Expect(errors.Is(p.Submit(now), kyc.ErrInvalidTransition)).To(BeTrue())
		})

		It("records the submission time", func() {
			completeAll()
			Expect(p.Submit(now)).To(Succeed())
			Expect(p.Status).To(Equal(kyc.StatusSubmitted))
			Expect(p.SubmittedAt).To(HaveValue(Equal(now)))
			Expect(p.State()).To(Equal(kyc.Submitted{At: now}))
		})
	})

	Describe("Approve", func() {
		It("verifies a submitted driver", func() {
			completeAll()
			Expect(p.Submit(now)).To(Succeed())
			Expect(p.Approve(7, now)).To(Succeed())
			Expect(p.Status).To(Equal(kyc.StatusApproved))
			Expect(p.VerificationStatus).To(Equal(kyc.VerificationVerified))
			Expect(p.ReviewedBy).To(HaveValue(Equal(int64(7))))
			Expect(p.State()).To(Equal(kyc.Approved{ReviewedBy: 7, At: now}))
		})

		It("cannot approve a driver still in progress", func() {
			Expect(p.CompleteStep(1, now)).To(Succeed())
			Expect(errors.Is(p.Approve(7, now), kyc.ErrInvalidTransition)).To(BeTrue())
		})
	})

	Describe("Reject", func() {
		BeforeEach(func() {
			completeAll()
			Expect(p.Submit(now)).To(Succeed())
		})

		It("requires a reason", func() {
			Expect(p.Reject("", 7, kyc.RejectRetain, now)).To(MatchError(kyc.ErrReasonRequired))
			Expect(p.Status).To(Equal(kyc.StatusSubmitted))
		})

		It("increments the retry count on every rejection", func() {
			Expect(p.Reject("blurry photo", 7, kyc.RejectRetain, now)).To(Succeed())
			Expect(p.Reject("still blurry", 7, kyc.RejectRetain, now)).To(Succeed())
			Expect(p.RetryCount).To(Equal(2))
			Expect(p.RejectionReason).To(HaveValue(Equal("still blurry")))
			Expect(p.VerificationStatus).To(Equal(kyc.VerificationRejected))
			Expect(p.CanPerformKyc()).To(BeTrue())
			Expect(p.State()).To(Equal(kyc.Rejected{Reason: "still blurry", RetryCount: 2}))
		})

		It("keeps steps under the retain policy so the driver can resubmit", func() {
			Expect(p.Reject("blurry photo", 7, kyc.RejectRetain, now)).To(Succeed())
			Expect(p.CompletedStepCount()).To(Equal(3))
			Expect(p.Submit(now)).To(Succeed())
		})

		It("clears steps under the reset policy", func() {
			Expect(p.Reject("wrong person", 7, kyc.RejectReset, now)).To(Succeed())
			Expect(p.CompletedStepCount()).To(Equal(0))
			Expect(p.Step).To(Equal(1))
			Expect(p.CompleteStep(1, now)).To(Succeed())
			Expect(p.Status).To(Equal(kyc.StatusInProgress))
		})
	})

	Describe("Reset", func() {
		It("returns a rejected driver to step one and keeps the retry count", func() {
			completeAll()
			Expect(p.Submit(now)).To(Succeed())
			Expect(p.Reject("expired license", 7, kyc.RejectRetain, now)).To(Succeed())

			p.Reset("")
			Expect(p.Status).To(Equal(kyc.StatusPending))
			Expect(p.Step).To(Equal(1))
			Expect(p.CompletedStepCount()).To(Equal(0))
			Expect(p.RetryCount).To(Equal(1))
			Expect(p.RejectionReason).To(HaveValue(Equal("expired license")))
			Expect(p.VerificationStatus).To(Equal(kyc.VerificationPending))
			Expect(p.CanPerformKyc()).To(BeTrue())
			Expect(p.CurrentStepLabel()).To(Equal(kyc.LabelStep1))
		})

		It("replaces the reason when one is given", func() {
			p.Reset("manual reset by ops")
			Expect(p.RejectionReason).To(HaveValue(Equal("manual reset by ops")))
		})
	})

	DescribeTable("CanPerformKyc",
		func(status kyc.Status, expected bool) {
			p.Status = status
			Expect(p.CanPerformKyc()).To(Equal(expected))
		},
		Entry("not started", kyc.StatusNotStarted, true),
		Entry("pending", kyc.StatusPending, true),
		Entry("in progress", kyc.StatusInProgress, true),
		Entry("rejected", kyc.StatusRejected, true),
		Entry("submitted", kyc.StatusSubmitted, false),
		Entry("completed", kyc.StatusCompleted, false),
		Entry("approved", kyc.StatusApproved, false),
		Entry("expired", kyc.StatusExpired, false),
		Entry("unknown status", kyc.Status("archived"), false),
	)
})
