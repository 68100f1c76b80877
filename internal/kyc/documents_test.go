package kyc_test

import (
	"time"

	"github.com/drivelink/backoffice/internal/kyc"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Documents", func() {
	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }

	Describe("RequiredDocumentsChecklist", func() {
		It("lists required and optional documents even when nothing is uploaded", func() {
			checklist := kyc.RequiredDocumentsChecklist(nil)
			Expect(checklist).To(HaveLen(4))
			Expect(checklist[kyc.DocDriverLicenseScan]).To(Equal(kyc.ChecklistEntry{Required: true}))
			Expect(checklist[kyc.DocUtilityBill]).To(Equal(kyc.ChecklistEntry{Required: false}))
			Expect(checklist).NotTo(HaveKey(kyc.DocBackgroundCheck))
		})

		It("uses the latest upload per type", func() {
			checklist := kyc.RequiredDocumentsChecklist([]kyc.Document{
				{Type: kyc.DocNationalID, VerificationStatus: "rejected", UploadedAt: day(1)},
				{Type: kyc.DocNationalID, VerificationStatus: "verified", UploadedAt: day(3)},
				{Type: kyc.DocNationalID, VerificationStatus: "pending", UploadedAt: day(2)},
			})
			entry := checklist[kyc.DocNationalID]
			Expect(entry.Uploaded).To(BeTrue())
			Expect(entry.VerificationStatus).To(Equal("verified"))
			Expect(entry.UploadedAt).To(HaveValue(Equal(day(3))))
		})
	})

	Describe("DocumentsCompletionScore", func() {
		It("counts distinct scored types", func() {
			Expect(kyc.DocumentsCompletionScore(nil)).To(Equal(0))
			Expect(kyc.DocumentsCompletionScore([]kyc.Document{
				{Type: kyc.DocNationalID, UploadedAt: day(1)},
				{Type: kyc.DocNationalID, UploadedAt: day(2)},
				{Type: kyc.DocPassportPhoto, UploadedAt: day(1)},
			})).To(Equal(40))
		})

		It("ignores unknown document types", func() {
			Expect(kyc.DocumentsCompletionScore([]kyc.Document{{Type: "selfie", UploadedAt: day(1)}})).To(Equal(0))
		})
	})

	Describe("VerificationScore", func() {
		It("weights profile, documents and progress", func() {
			p := kyc.NewProgress(1)
			Expect(kyc.VerificationScore(100, nil, &p)).To(Equal(40))

			for step := 1; step <= kyc.TotalSteps; step++ {
				Expect(p.CompleteStep(step, day(1))).To(Succeed())
			}
			docs := []kyc.Document{
				{Type: kyc.DocDriverLicenseScan, UploadedAt: day(1)},
				{Type: kyc.DocNationalID, UploadedAt: day(1)},
				{Type: kyc.DocPassportPhoto, UploadedAt: day(1)},
				{Type: kyc.DocUtilityBill, UploadedAt: day(1)},
				{Type: kyc.DocBackgroundCheck, UploadedAt: day(1)},
			}
			Expect(kyc.VerificationScore(100, docs, &p)).To(Equal(100))
		})

		It("clamps an out of range profile completion", func() {
			p := kyc.NewProgress(1)
			Expect(kyc.VerificationScore(250, nil, &p)).To(Equal(40))
			Expect(kyc.VerificationScore(-10, nil, &p)).To(Equal(0))
		})
	})

	Describe("NewSummary", func() {
		It("derives every value from the driver record", func() {
			dob := day(1)
			d := &kyc.Driver{
				ID: 9,
				Profile: kyc.Profile{
					FirstName:   "Ayu",
					LastName:    "Lestari",
					Email:       "ayu@example.com",
					Phone:       "+628111",
					DateOfBirth: &dob,
				},
				Progress: kyc.NewProgress(9),
			}
			Expect(d.Progress.CompleteStep(1, day(2))).To(Succeed())

			s := kyc.NewSummary(d, []kyc.Document{{Type: kyc.DocNationalID, UploadedAt: day(2)}})
			Expect(s.DriverID).To(Equal(int64(9)))
			Expect(s.Status).To(Equal(kyc.StatusInProgress))
			Expect(s.CurrentStep).To(Equal(kyc.LabelStep1))
			Expect(s.NextStep).To(HaveValue(Equal(kyc.LabelStep2)))
			Expect(s.StepsCompleted).To(Equal([kyc.TotalSteps]bool{true, false, false}))
			Expect(s.ProfileCompletion).To(Equal(50))
			Expect(s.DocumentsCompletion).To(Equal(20))
			// 0.4*50 + 0.35*20 + 0.25*33 = 35.25
			Expect(s.VerificationScore).To(Equal(35))
			Expect(s.RequiredDocuments[kyc.DocNationalID].Uploaded).To(BeTrue())
		})
	})
})
