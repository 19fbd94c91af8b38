package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, logger: logger}
}

// Me godoc
// @Summary Get current user
// @Description Return the authenticated user. The local record is refreshed from the token claims on each call.
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user := &domain.User{
		ID:          userCtx.UserID,
		Email:       userCtx.Email,
		DisplayName: userCtx.DisplayName,
		Roles:       userCtx.Roles,
		IsActive:    true,
	}
	if err := h.userService.Upsert(r.Context(), user); err != nil {
		h.logger.Warn("failed to upsert user record", zap.String("user_id", userCtx.UserID), zap.Error(err))
	} else {
		h.userService.RecordLogin(r.Context(), userCtx.UserID)
	}

	if stored, err := h.userService.Get(r.Context(), userCtx.UserID); err == nil {
		respondJSON(w, http.StatusOK, stored)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Tags Auth
// @Produce json
// @Success 200 {array} domain.User
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}
