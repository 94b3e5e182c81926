package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/event-portal-api/model"
	authutil "github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/middleware"
	"github.com/campushq/event-portal-api/utils/response"
	"github.com/campushq/event-portal-api/utils/validation"
)

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a password reset token and emails it. The response is
// the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	generic := "If an account exists for this email, a password reset link has been sent."

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.SuccessWithMessage(c, generic, nil)
	}

	token, _, err := h.jwtManager.IssueResetToken(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		log.Printf("Failed to issue reset token for %s: %v", user.Email, err)
		return response.SuccessWithMessage(c, generic, nil)
	}

	go func(email, name string) {
		if err := h.emailService.SendPasswordResetEmail(email, token, name); err != nil {
			log.Printf("Failed to send reset email to %s: %v", email, err)
		}
	}(user.Email, user.FullName)

	return response.SuccessWithMessage(c, generic, nil)
}

// ResetPasswordRequest carries the reset token and the new password
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword sets a new password from an emailed reset token. All existing
// sessions are invalidated by bumping the token version.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Token and new password are required")
	}

	if ok, problems := validation.ValidatePassword(req.NewPassword); !ok {
		return response.ValidationError(c, map[string]string{"new_password": problems[0]})
	}

	claims, err := h.jwtManager.ValidateTokenForPurpose(req.Token, authutil.PurposePasswordReset)
	if err != nil {
		if err == authutil.ErrExpiredToken {
			return response.BadRequest(c, "Reset link has expired. Request a new one.")
		}
		return response.BadRequest(c, "Invalid reset token")
	}

	revoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil || revoked {
		return response.BadRequest(c, "Reset link has already been used")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return response.NotFound(c, "Account not found")
	}

	// A version mismatch means the password changed after this token was issued
	if user.TokenVersion != claims.TokenVersion {
		return response.BadRequest(c, "Reset link is no longer valid")
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		log.Printf("Failed to invalidate sessions for user %d: %v", user.ID, err)
	}

	if claims.ExpiresAt != nil {
		_ = h.blacklistService.RevokeToken(c.Context(), claims.ID, user.ID, claims.ExpiresAt.Time, "reset consumed")
	}

	return response.SuccessWithMessage(c, "Password has been reset. Sign in with your new password.", nil)
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword updates the password for the authenticated user and
// invalidates every other session.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Current and new password are required")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if ok, problems := validation.ValidatePassword(req.NewPassword); !ok {
		return response.ValidationError(c, map[string]string{"new_password": problems[0]})
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		log.Printf("Failed to invalidate sessions for user %d: %v", user.ID, err)
	}

	return response.SuccessWithMessage(c, "Password changed. Sign in again with your new password.", nil)
}
