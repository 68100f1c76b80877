package kyc

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusCompleted  Status = "completed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type StepLabel string

const (
	LabelNotStarted StepLabel = "not_started"
	LabelStep1      StepLabel = "step_1"
	LabelStep2      StepLabel = "step_2"
	LabelStep3      StepLabel = "step_3"
	LabelCompleted  StepLabel = "completed"
)

const TotalSteps = 3

// RejectionPolicy decides what happens to recorded steps when a reviewer rejects.
type RejectionPolicy string

const (
	// RejectRetain keeps step timestamps so the driver can resubmit.
	RejectRetain RejectionPolicy = "retain"
	// RejectReset clears the steps and sends the driver back to step 1.
	RejectReset RejectionPolicy = "reset"
)

var (
	ErrInvalidTransition = errors.New("invalid kyc transition")
	ErrInvalidStep       = errors.New("kyc step must be between 1 and 3")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrDriverNotFound    = errors.New("driver not found")
	ErrConcurrentUpdate  = errors.New("kyc record was modified concurrently")
)

// TransitionError describes a rejected state change.
type TransitionError struct {
	Op     string
	From   Status
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s kyc in status %s: %s", e.Op, e.From, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Progress is the KYC field set of one driver.
type Progress struct {
	DriverID           int64
	Status             Status
	Step               int
	StepCompletedAt    [TotalSteps]*time.Time
	RetryCount         int
	RejectionReason    *string
	SubmittedAt        *time.Time
	ReviewedAt         *time.Time
	ReviewedBy         *int64
	CompletedAt        *time.Time
	VerificationStatus VerificationStatus
	Version            int64
}

// NewProgress returns the state of a freshly registered driver.
func NewProgress(driverID int64) Progress {
	return Progress{
		DriverID:           driverID,
		Status:             StatusNotStarted,
		VerificationStatus: VerificationPending,
	}
}

// operations and the statuses they may start from
var allowedFrom = map[string][]Status{
	"complete step": {StatusNotStarted, StatusPending, StatusInProgress, StatusRejected},
	"submit":        {StatusCompleted, StatusRejected},
	"approve":       {StatusSubmitted, StatusCompleted},
	"reject":        {StatusInProgress, StatusSubmitted, StatusCompleted, StatusApproved, StatusRejected},
}

func (p *Progress) guard(op string) error {
	for _, s := range allowedFrom[op] {
		if p.Status == s {
			return nil
		}
	}
	return &TransitionError{Op: op, From: p.Status, Reason: "not allowed from this status"}
}

// CompleteStep records a finished step. Steps must be completed in order and only once.
func (p *Progress) CompleteStep(step int, now time.Time) error {
	if step < 1 || step > TotalSteps {
		return ErrInvalidStep
	}
	if err := p.guard("complete step"); err != nil {
		return err
	}
	if p.IsStepCompleted(step) {
		return &TransitionError{Op: "complete step", From: p.Status, Reason: fmt.Sprintf("step %d already completed", step)}
	}
	for prev := 1; prev < step; prev++ {
		if !p.IsStepCompleted(prev) {
			return &TransitionError{Op: "complete step", From: p.Status, Reason: fmt.Sprintf("step %d must be completed first", prev)}
		}
	}

	at := now
	p.StepCompletedAt[step-1] = &at
	p.Step = step
	if step == TotalSteps {
		p.Status = StatusCompleted
		p.CompletedAt = &at
		return nil
	}
	p.Status = StatusInProgress
	return nil
}

func (p *Progress) Submit(now time.Time) error {
	if err := p.guard("submit"); err != nil {
		return err
	}
	if p.CompletedStepCount() < TotalSteps {
		return &TransitionError{Op: "submit", From: p.Status, Reason: "all steps must be completed"}
	}
	at := now
	p.Status = StatusSubmitted
	p.SubmittedAt = &at
	return nil
}

func (p *Progress) Approve(reviewerID int64, now time.Time) error {
	if err := p.guard("approve"); err != nil {
		return err
	}
	at := now
	reviewer := reviewerID
	p.Status = StatusApproved
	p.ReviewedAt = &at
	p.ReviewedBy = &reviewer
	p.RejectionReason = nil
	p.VerificationStatus = VerificationVerified
	return nil
}

// Reject moves the driver to rejected and bumps the retry count on every call.
func (p *Progress) Reject(reason string, reviewerID int64, policy RejectionPolicy, now time.Time) error {
	if reason == "" {
		return ErrReasonRequired
	}
	if err := p.guard("reject"); err != nil {
		return err
	}
	at := now
	reviewer := reviewerID
	p.Status = StatusRejected
	p.RejectionReason = &reason
	p.ReviewedAt = &at
	p.ReviewedBy = &reviewer
	p.RetryCount++
	p.VerificationStatus = VerificationRejected

	if policy == RejectReset {
		p.clearSteps()
		p.Step = 1
	}
	return nil
}

// Reset returns the driver to step 1 / pending. It is always allowed.
// The retry count is kept; a non-empty reason replaces the rejection reason.
func (p *Progress) Reset(reason string) {
	p.clearSteps()
	p.Step = 1
	p.Status = StatusPending
	p.ReviewedAt = nil
	p.ReviewedBy = nil
	p.VerificationStatus = VerificationPending
	if reason != "" {
		p.RejectionReason = &reason
	}
}

func (p *Progress) clearSteps() {
	p.StepCompletedAt = [TotalSteps]*time.Time{}
	p.CompletedAt = nil
	p.SubmittedAt = nil
}

func (p *Progress) IsStepCompleted(step int) bool {
	if step < 1 || step > TotalSteps {
		return false
	}
	return p.StepCompletedAt[step-1] != nil
}

func (p *Progress) CompletedStepCount() int {
	n := 0
	for _, at := range p.StepCompletedAt {
		if at != nil {
			n++
		}
	}
	return n
}

func (p *Progress) CanPerformKyc() bool {
	switch p.Status {
	case StatusRejected, StatusNotStarted, StatusPending, StatusInProgress:
		return true
	default:
		return false
	}
}

func (p *Progress) ProgressPercentage() int {
	if p.Status == StatusCompleted {
		return 100
	}
	return int(math.Round(100 * float64(p.CompletedStepCount()) / TotalSteps))
}

func (p *Progress) CurrentStepLabel() StepLabel {
	if p.Step == TotalSteps && p.Status == StatusCompleted {
		return LabelCompleted
	}
	switch p.Step {
	case 1:
		return LabelStep1
	case 2:
		return LabelStep2
	case 3:
		return LabelStep3
	}
	return LabelNotStarted
}

var nextLabel = map[StepLabel]StepLabel{
	LabelNotStarted: LabelStep1,
	LabelStep1:      LabelStep2,
	LabelStep2:      LabelStep3,
	LabelStep3:      LabelCompleted,
}

// NextStep returns the successor of the current label; ok is false once completed.
func (p *Progress) NextStep() (StepLabel, bool) {
	next, ok := nextLabel[p.CurrentStepLabel()]
	return next, ok
}
