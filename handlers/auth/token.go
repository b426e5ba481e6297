package auth

import (
	"errors"

	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken exchanges a valid refresh token for a new pair
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return response.BadRequest(c, "Invalid or expired refresh token")
	}

	// The subject may have been deleted since the token was issued
	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.BadRequest(c, "Account no longer exists")
		}
		return response.InternalServerError(c, "Failed to load account")
	}

	pair, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, pair)
}
