package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/event-portal-api/model"
	"github.com/campushq/event-portal-api/services/roster"
	"github.com/campushq/event-portal-api/utils/response"
)

// BulkAddRequest represents the request body for adding users to an event role
type BulkAddRequest struct {
	Role    string `json:"role" validate:"required"`
	UserIDs []uint `json:"user_ids" validate:"required,min=1"`
}

func parseEventID(c *fiber.Ctx) (uint, error) {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || eventID < 1 {
		return 0, response.BadRequest(c, "Invalid event ID")
	}
	return uint(eventID), nil
}

// rosterError maps roster engine errors onto HTTP responses
func rosterError(c *fiber.Ctx, err error) error {
	var capErr *roster.CapacityError
	switch {
	case errors.Is(err, roster.ErrEventNotFound):
		return response.NotFound(c, "Event not found")
	case errors.Is(err, roster.ErrInvalidRole):
		return response.BadRequest(c, "Role must be instructor or teaching_assistant")
	case errors.Is(err, roster.ErrAlreadyJoined):
		return response.Conflict(c, "User is already registered for this event")
	case errors.As(err, &capErr):
		return response.Conflict(c, capErr.Error())
	}
	return response.InternalServerError(c, "Roster operation failed")
}

// GetRoster returns an event's participants grouped by role with counts
// GET /admin/events/:id/participants
func GetRoster(c *fiber.Ctx, rosterService *roster.Service) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	eventRoster, rErr := rosterService.GetRoster(c.Context(), eventID)
	if rErr != nil {
		return rosterError(c, rErr)
	}

	return response.Success(c, eventRoster)
}

// BulkAddParticipants adds a batch of users to an event role. The batch is
// atomic: if the prospective role total would exceed the cap, no user is added.
// POST /admin/events/:id/participants
func BulkAddParticipants(c *fiber.Ctx, rosterService *roster.Service) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	var req BulkAddRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.UserIDs) == 0 {
		return response.BadRequest(c, "user_ids must not be empty")
	}
	if !model.IsValidEventRole(req.Role) {
		return response.BadRequest(c, "Role must be instructor or teaching_assistant")
	}

	if err := rosterService.BulkAdd(c.Context(), eventID, req.Role, req.UserIDs); err != nil {
		return rosterError(c, err)
	}

	eventRoster, rErr := rosterService.GetRoster(c.Context(), eventID)
	if rErr != nil {
		return rosterError(c, rErr)
	}

	return response.SuccessWithMessage(c, "Participants added", eventRoster)
}

// RemoveParticipant removes a user from an event roster and returns the
// refreshed roster. Removing a user who is not on the roster succeeds without
// effect.
// DELETE /admin/events/:id/participants/:userId
func RemoveParticipant(c *fiber.Ctx, rosterService *roster.Service) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	userID, uErr := strconv.ParseUint(c.Params("userId"), 10, 32)
	if uErr != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := rosterService.Remove(c.Context(), eventID, uint(userID)); err != nil {
		return rosterError(c, err)
	}

	eventRoster, rErr := rosterService.GetRoster(c.Context(), eventID)
	if rErr != nil {
		return rosterError(c, rErr)
	}

	return response.SuccessWithMessage(c, "Participant removed", eventRoster)
}

// ListCandidates returns users eligible to be added to an event, excluding
// those already on the roster, with search and fixed-size pagination.
// role_to_add names the role the add dialog is targeting and is echoed back
// for the form to post with.
// GET /admin/events/:id/candidates?role_to_add&q&page
func ListCandidates(c *fiber.Ctx, rosterService *roster.Service) error {
	eventID, err := parseEventID(c)
	if err != nil {
		return err
	}

	roleToAdd := c.Query("role_to_add")
	if roleToAdd != "" && !model.IsValidEventRole(roleToAdd) {
		return response.BadRequest(c, "role_to_add must be instructor or teaching_assistant")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	search := c.Query("q")
	if search == "" {
		search = c.Query("search")
	}

	candidates, cErr := rosterService.ListCandidates(c.Context(), eventID, search, page)
	if cErr != nil {
		return rosterError(c, cErr)
	}

	return response.Success(c, fiber.Map{
		"role_to_add": roleToAdd,
		"candidates":  candidates,
	})
}
