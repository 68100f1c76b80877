package kyc

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/core/common/validation"
	"github.com/drivelink/backoffice/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CompleteStep(ctx context.Context, driverID int64, step int) (*Progress, error)
	Submit(ctx context.Context, driverID int64) (*Progress, error)
	Approve(ctx context.Context, driverID, reviewerID int64) (*Progress, error)
	Reject(ctx context.Context, driverID, reviewerID int64, reason string) (*Progress, error)
	Reset(ctx context.Context, driverID int64, reason string) (*Progress, error)
	Summary(ctx context.Context, driverID int64) (*Summary, error)
	AuditTrail(ctx context.Context, driverID int64) ([]AuditEntry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Summary(r.Context(), driverID)
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.AuditTrail(r.Context(), driverID)
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	if entries == nil {
		entries = []AuditEntry{}
	}
	h.WriteJSON(w, http.StatusOK, AuditTrailResponse{DriverID: driverID, Entries: entries})
}

func (h *Handler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("step", "step must be a number", internal.ErrCodeInvalidStep))
		return
	}

	progress, err := h.Service.CompleteStep(r.Context(), driverID, step)
	h.writeProgress(w, progress, err)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	progress, err := h.Service.Submit(r.Context(), driverID)
	h.writeProgress(w, progress, err)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	progress, err := h.Service.Approve(r.Context(), driverID, internal.ActorIDFromContext(r.Context()))
	h.writeProgress(w, progress, err)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	var req RejectRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest))
		return
	}
	if appErr := validation.ValidateStruct(req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	progress, err := h.Service.Reject(r.Context(), driverID, internal.ActorIDFromContext(r.Context()), req.Reason)
	h.writeProgress(w, progress, err)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	var req ResetRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest))
		return
	}
	if appErr := validation.ValidateStruct(req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	progress, err := h.Service.Reset(r.Context(), driverID, req.Reason)
	h.writeProgress(w, progress, err)
}

func (h *Handler) driverID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := h.ParseIDParam(r, "id")
	if !ok {
		h.WriteAppError(w, internal.NewValidationFieldError("id", "invalid driver id", internal.ErrCodeInvalidRequest))
	}
	return id, ok
}

func (h *Handler) writeProgress(w http.ResponseWriter, p *Progress, err error) {
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, NewProgressResponse(p))
}

// ToAppError translates domain errors into their HTTP representation.
func ToAppError(err error) error {
	var transition *TransitionError
	switch {
	case errors.Is(err, ErrDriverNotFound):
		return internal.ErrDriverNotFound
	case errors.Is(err, ErrInvalidStep):
		return internal.NewValidationFieldError("step", err.Error(), internal.ErrCodeInvalidStep)
	case errors.Is(err, ErrReasonRequired):
		return internal.NewValidationFieldError("reason", err.Error(), internal.ErrCodeValidationFailed)
	case errors.As(err, &transition):
		return internal.NewConflictError(transition.Error(), internal.ErrCodeInvalidKycTransition)
	case errors.Is(err, ErrConcurrentUpdate):
		return internal.ErrKycConcurrentUpdate
	}
	return err
}
