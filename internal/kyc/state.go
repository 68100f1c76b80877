package kyc

import "time"

// State is a typed view of Progress. Exactly one of the concrete types below
// is returned by Progress.State.
type State interface {
	Status() Status
}

type NotStarted struct{}

type InProgress struct {
	Step        int
	CompletedAt []time.Time
}

type Submitted struct {
	At time.Time
}

type Completed struct {
	At time.Time
}

type Approved struct {
	ReviewedBy int64
	At         time.Time
}

type Rejected struct {
	Reason     string
	RetryCount int
}

type Expired struct{}

func (NotStarted) Status() Status { return StatusNotStarted }
func (InProgress) Status() Status { return StatusInProgress }
func (Submitted) Status() Status  { return StatusSubmitted }
func (Completed) Status() Status  { return StatusCompleted }
func (Approved) Status() Status   { return StatusApproved }
func (Rejected) Status() Status   { return StatusRejected }
func (Expired) Status() Status    { return StatusExpired }

func (p *Progress) State() State {
	switch p.Status {
	case StatusInProgress:
		var done []time.Time
		for _, at := range p.StepCompletedAt {
			if at != nil {
				done = append(done, *at)
			}
		}
		return InProgress{Step: p.Step, CompletedAt: done}
	case StatusSubmitted:
		return Submitted{At: deref(p.SubmittedAt)}
	case StatusCompleted:
		return Completed{At: deref(p.CompletedAt)}
	case StatusApproved:
		var by int64
		if p.ReviewedBy != nil {
			by = *p.ReviewedBy
		}
		return Approved{ReviewedBy: by, At: deref(p.ReviewedAt)}
	case StatusRejected:
		var reason string
		if p.RejectionReason != nil {
			reason = *p.RejectionReason
		}
		return Rejected{Reason: reason, RetryCount: p.RetryCount}
	case StatusExpired:
		return Expired{}
	default:
		// pending is the reset form of not started
		return NotStarted{}
	}
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
