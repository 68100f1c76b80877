package kyc

import (
	"math"
	"time"
)

// Profile is the part of a driver record that feeds profile completion.
type Profile struct {
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty"`
	Address               string     `json:"address"`
	LicenseNumber         string     `json:"license_number"`
	LicenseExpiry         *time.Time `json:"license_expiry,omitempty"`
	ProfilePhotoURL       string     `json:"profile_photo_url"`
	EmergencyContactPhone string     `json:"emergency_contact_phone"`
}

func (p Profile) CompletionPercentage() int {
	filled := []bool{
		p.FirstName != "",
		p.LastName != "",
		p.Email != "",
		p.Phone != "",
		p.DateOfBirth != nil,
		p.Address != "",
		p.LicenseNumber != "",
		p.LicenseExpiry != nil,
		p.ProfilePhotoURL != "",
		p.EmergencyContactPhone != "",
	}
	n := 0
	for _, ok := range filled {
		if ok {
			n++
		}
	}
	return int(math.Round(100 * float64(n) / float64(len(filled))))
}

type Driver struct {
	ID       int64
	Profile  Profile
	Progress Progress
}

// Summary bundles every derived KYC value shown on the review screen.
type Summary struct {
	DriverID            int64                           `json:"driver_id"`
	Status              Status                          `json:"status"`
	VerificationStatus  VerificationStatus              `json:"verification_status"`
	CurrentStep         StepLabel                       `json:"current_step"`
	NextStep            *StepLabel                      `json:"next_step"`
	ProgressPercentage  int                             `json:"progress_percentage"`
	CanPerformKyc       bool                            `json:"can_perform_kyc"`
	StepsCompleted      [TotalSteps]bool                `json:"steps_completed"`
	RetryCount          int                             `json:"retry_count"`
	RejectionReason     *string                         `json:"rejection_reason,omitempty"`
	SubmittedAt         *time.Time                      `json:"submitted_at,omitempty"`
	ReviewedAt          *time.Time                      `json:"reviewed_at,omitempty"`
	ReviewedBy          *int64                          `json:"reviewed_by,omitempty"`
	CompletedAt         *time.Time                      `json:"completed_at,omitempty"`
	ProfileCompletion   int                             `json:"profile_completion"`
	DocumentsCompletion int                             `json:"documents_completion"`
	VerificationScore   int                             `json:"verification_score"`
	RequiredDocuments   map[DocumentType]ChecklistEntry `json:"required_documents"`
}

func NewSummary(d *Driver, docs []Document) *Summary {
	p := &d.Progress
	s := &Summary{
		DriverID:            d.ID,
		Status:              p.Status,
		VerificationStatus:  p.VerificationStatus,
		CurrentStep:         p.CurrentStepLabel(),
		ProgressPercentage:  p.ProgressPercentage(),
		CanPerformKyc:       p.CanPerformKyc(),
		RetryCount:          p.RetryCount,
		RejectionReason:     p.RejectionReason,
		SubmittedAt:         p.SubmittedAt,
		ReviewedAt:          p.ReviewedAt,
		ReviewedBy:          p.ReviewedBy,
		CompletedAt:         p.CompletedAt,
		ProfileCompletion:   d.Profile.CompletionPercentage(),
		DocumentsCompletion: DocumentsCompletionScore(docs),
		RequiredDocuments:   RequiredDocumentsChecklist(docs),
	}
	if next, ok := p.NextStep(); ok {
		s.NextStep = &next
	}
	for i := 1; i <= TotalSteps; i++ {
		s.StepsCompleted[i-1] = p.IsStepCompleted(i)
	}
	s.VerificationScore = VerificationScore(s.ProfileCompletion, docs, p)
	return s
}
