package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushq/event-portal-api/model"
	authutil "github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/response"
)

// VerifyEmailRequest carries the verification token from the emailed link
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail activates an account from the emailed verification token.
// The token is single use: it is blacklisted once consumed.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req VerifyEmailRequest
	// Links land here as GET with a query parameter; POST carries a JSON body
	req.Token = c.Query("token")
	if req.Token == "" {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if req.Token == "" {
		return response.BadRequest(c, "Verification token is required")
	}

	claims, err := h.jwtManager.ValidateTokenForPurpose(req.Token, authutil.PurposeVerifyEmail)
	if err != nil {
		if err == authutil.ErrExpiredToken {
			return response.BadRequest(c, "Verification link has expired. Request a new one.")
		}
		return response.BadRequest(c, "Invalid verification token")
	}

	revoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil || revoked {
		return response.BadRequest(c, "Verification link has already been used")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return response.NotFound(c, "Account not found")
	}

	if !user.Active {
		if err := h.db.Model(&user).Update("active", true).Error; err != nil {
			return response.InternalServerError(c, "Failed to activate account")
		}
	}

	if claims.ExpiresAt != nil {
		_ = h.blacklistService.RevokeToken(c.Context(), claims.ID, user.ID, claims.ExpiresAt.Time, "verification consumed")
	}

	return response.SuccessWithMessage(c, "Email verified. You can now sign in.", nil)
}

// ResendVerification issues a fresh verification email for an inactive account
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	// Do not reveal whether the address exists
	generic := "If an unverified account exists for this email, a new verification link has been sent."

	var user model.User
	if err := h.db.Where("email = ? AND active = ?", req.Email, false).First(&user).Error; err != nil {
		return response.SuccessWithMessage(c, generic, nil)
	}

	h.sendVerificationEmail(&user)

	return response.SuccessWithMessage(c, generic, nil)
}
