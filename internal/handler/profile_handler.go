package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles the authenticated user's own record. The user row
// must exist before any ledger write because every table references it.
type ProfileHandler struct {
	userRepo domain.UserRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(userRepo domain.UserRepository) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo}
}

// RegisterProfileRequest represents the register profile request body
type RegisterProfileRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Name  *string `json:"name,omitempty"`
}

// ProfileResponse represents the user's own record
type ProfileResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// GetProfile handles GET /api/v1/me
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), ownerID)
	if err != nil {
		return renderResourceError(c, err, "Profile")
	}

	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// RegisterProfile handles POST /api/v1/me. Registering twice is a conflict.
func (h *ProfileHandler) RegisterProfile(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req RegisterProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	user, err := h.userRepo.Create(c.Request().Context(), &domain.User{
		ID:    ownerID,
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return NewConflictError(c, "Profile already registered")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to register profile")
		return renderResourceError(c, err, "Profile")
	}

	log.Info().Str("owner_id", ownerID.String()).Msg("Profile registered")
	return c.JSON(http.StatusCreated, toProfileResponse(user))
}

func toProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}
