package event

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/event-portal-api/model"
	"github.com/campushq/event-portal-api/services/roster"
	"github.com/campushq/event-portal-api/services/storage"
	"github.com/campushq/event-portal-api/utils/middleware"
	"github.com/campushq/event-portal-api/utils/response"
)

// JoinRequest represents a self-service registration for an event role
type JoinRequest struct {
	Role string `json:"role" validate:"required"`
}

// rosterError maps roster engine errors onto HTTP responses. Duplicate join
// and capacity rejections are 400 on this self-service surface.
func rosterError(c *fiber.Ctx, err error) error {
	var capErr *roster.CapacityError
	switch {
	case errors.Is(err, roster.ErrEventNotFound):
		return response.NotFound(c, "Event not found")
	case errors.Is(err, roster.ErrInvalidRole):
		return response.BadRequest(c, "Role must be instructor or teaching_assistant")
	case errors.Is(err, roster.ErrAlreadyJoined):
		return response.BadRequest(c, "User already joined this event")
	case errors.Is(err, roster.ErrNotJoined):
		return response.BadRequest(c, "Not registered for this event")
	case errors.Is(err, roster.ErrEventNotEnded):
		return response.BadRequest(c, "Attendance can only be marked after the event has ended")
	case errors.As(err, &capErr):
		return response.BadRequest(c, capErr.Error())
	}
	return response.InternalServerError(c, "Roster operation failed")
}

// Join registers the authenticated user for an event role
func (h *EventHandler) Join(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return response.BadRequest(c, "Invalid event id")
	}

	var req JoinRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Role == "" {
		req.Role = model.EventRoleTA
	}

	if err := h.roster.Join(c.Context(), uint(eventID), userID, req.Role); err != nil {
		return rosterError(c, err)
	}

	return response.SuccessWithMessage(c, "Registered for event", fiber.Map{
		"event_id": eventID,
		"role":     req.Role,
	})
}

// Leave withdraws the authenticated user from an event. Leaving an event the
// user never joined is an error.
func (h *EventHandler) Leave(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return response.BadRequest(c, "Invalid event id")
	}

	if err := h.roster.Leave(c.Context(), uint(eventID), userID); err != nil {
		return rosterError(c, err)
	}

	return response.SuccessWithMessage(c, "Left event", nil)
}

// Attend marks the authenticated user as having attended a finished event.
// An optional check image can be attached as multipart form data.
func (h *EventHandler) Attend(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return response.BadRequest(c, "Invalid event id")
	}

	checkImageURL := ""
	if file, err := c.FormFile("check_image"); err == nil && file != nil {
		if h.storage == nil {
			return response.BadRequest(c, "Image uploads are not enabled")
		}
		if !storage.IsAllowedImage(file.Filename) {
			return response.BadRequest(c, "Check image must be a jpg, png or webp file")
		}

		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Failed to read uploaded file")
		}
		defer src.Close()

		url, err := h.storage.UploadCheckImage(c.Context(), uint(eventID), userID, file.Filename, src)
		if err != nil {
			return response.InternalServerError(c, "Failed to store check image")
		}
		checkImageURL = url
	}

	if err := h.roster.Attend(c.Context(), uint(eventID), userID, checkImageURL); err != nil {
		return rosterError(c, err)
	}

	return response.SuccessWithMessage(c, "Attendance recorded", fiber.Map{
		"event_id":        eventID,
		"check_image_url": checkImageURL,
	})
}

// RegistrationResponse pairs a roster entry with its event
type RegistrationResponse struct {
	Event         model.Event `json:"event"`
	Role          string      `json:"role"`
	Status        string      `json:"status"`
	CheckImageURL string      `json:"check_image_url,omitempty"`
}

// MyEvents lists events the authenticated user is registered for
func (h *EventHandler) MyEvents(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var entries []model.EventParticipant
	if err := h.db.
		Preload("Event").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&entries).Error; err != nil {
		return response.InternalServerError(c, "Failed to list registrations")
	}

	registrations := make([]RegistrationResponse, 0, len(entries))
	for _, entry := range entries {
		registrations = append(registrations, RegistrationResponse{
			Event:         entry.Event,
			Role:          entry.Role,
			Status:        entry.Status,
			CheckImageURL: entry.CheckImageURL,
		})
	}

	return response.Success(c, registrations)
}
