package kyc

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ResetRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ProgressResponse struct {
	DriverID           int64              `json:"driver_id"`
	Status             Status             `json:"status"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CurrentStep        StepLabel          `json:"current_step"`
	ProgressPercentage int                `json:"progress_percentage"`
	RetryCount         int                `json:"retry_count"`
	RejectionReason    *string            `json:"rejection_reason,omitempty"`
	Version            int64              `json:"version"`
}

func NewProgressResponse(p *Progress) ProgressResponse {
	return ProgressResponse{
		DriverID:           p.DriverID,
		Status:             p.Status,
		VerificationStatus: p.VerificationStatus,
		CurrentStep:        p.CurrentStepLabel(),
		ProgressPercentage: p.ProgressPercentage(),
		RetryCount:         p.RetryCount,
		RejectionReason:    p.RejectionReason,
		Version:            p.Version,
	}
}

type AuditTrailResponse struct {
	DriverID int64        `json:"driver_id"`
	Entries  []AuditEntry `json:"entries"`
}
