package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/authz"
	"github.com/drivelink/backoffice/internal/transport"
	"github.com/drivelink/backoffice/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	Principals PrincipalLoader
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, principals PrincipalLoader) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Principals:  principals,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest))
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest))
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout is stateless: tokens are short lived, so it only confirms the caller holds a valid one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer token and puts the admin principal on the context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.DebugContext(r.Context(), "auth middleware: token rejected", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		principal, err := h.Principals.LoadPrincipal(r.Context(), claims.AdminID)
		if err != nil {
			if errors.Is(err, internal.ErrAdminNotFound) {
				h.Logger.WarnContext(r.Context(), "auth middleware: admin missing or inactive", "admin_id", claims.AdminID)
				h.WriteAppError(w, internal.ErrInvalidToken)
				return
			}
			h.Logger.ErrorContext(r.Context(), "auth middleware: failed to load admin", "admin_id", claims.AdminID, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := authz.WithPrincipal(r.Context(), principal)
		ctx = internal.ContextWithActorID(ctx, principal.ID)
		ctx = logger.With(ctx, "admin_id", principal.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
