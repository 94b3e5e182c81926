package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushq/event-portal-api/utils/middleware"
	"github.com/campushq/event-portal-api/utils/response"
	"github.com/campushq/event-portal-api/utils/validation"
)

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, toUserResponse(user))
}

// UpdateProfileRequest represents a profile update. Email and role are not
// editable through this endpoint.
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	BankName   *string `json:"bank_name,omitempty"`
	BankNumber *string `json:"bank_number,omitempty"`
}

// UpdateProfile updates the authenticated user's own fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		name := validation.SanitizeString(*req.FullName)
		if len(name) < 2 {
			return response.ValidationError(c, map[string]string{"full_name": "must be at least 2 characters"})
		}
		updates["full_name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = validation.SanitizeString(*req.Phone)
	}
	if req.BankName != nil {
		updates["bank_name"] = validation.SanitizeString(*req.BankName)
	}
	if req.BankNumber != nil {
		updates["bank_number"] = validation.SanitizeString(*req.BankNumber)
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(user))
}
