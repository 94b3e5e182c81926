package event

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/model"
	"github.com/campushq/event-portal-api/services/roster"
	"github.com/campushq/event-portal-api/services/storage"
	"github.com/campushq/event-portal-api/utils/response"
	"github.com/campushq/event-portal-api/utils/validation"
)

// EventHandler handles event CRUD and participation requests
type EventHandler struct {
	db        *gorm.DB
	roster    *roster.Service
	storage   *storage.Client
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(db *gorm.DB, rosterService *roster.Service, storageClient *storage.Client) *EventHandler {
	return &EventHandler{
		db:        db,
		roster:    rosterService,
		storage:   storageClient,
		validator: validation.NewValidator(),
	}
}

// CreateEventRequest represents an event creation request
type CreateEventRequest struct {
	Name             string `json:"name" validate:"required,min=2"`
	DayStart         string `json:"day_start" validate:"required"` // YYYY-MM-DD
	FromTime         int    `json:"from_time"`
	ToTime           int    `json:"to_time"`
	NumberOfStudents int    `json:"number_of_students"`
	MaxInstructors   int    `json:"max_instructors" validate:"min=0"`
	MaxTAs           int    `json:"max_teaching_assistants" validate:"min=0"`
	Status           string `json:"status,omitempty"`
	SchoolName       string `json:"school_name,omitempty"`
}

// parseDay parses a YYYY-MM-DD day string
func parseDay(s string) (datatypes.Date, error) {
	day, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(day), nil
}

// validateWindow checks the HHMM clock window of an event
func validateWindow(fromTime, toTime int) map[string]string {
	problems := map[string]string{}
	if !model.IsValidClockTime(fromTime) {
		problems["from_time"] = "must be a valid HHMM clock time"
	}
	if !model.IsValidClockTime(toTime) {
		problems["to_time"] = "must be a valid HHMM clock time"
	}
	if len(problems) == 0 && toTime <= fromTime {
		problems["to_time"] = "must be after from_time"
	}
	return problems
}

// Create creates a new event. Admin only. The aggregate participant cap is
// derived from the two role caps.
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	day, err := parseDay(req.DayStart)
	if err != nil {
		return response.ValidationError(c, map[string]string{"day_start": "must be a date in YYYY-MM-DD format"})
	}

	if problems := validateWindow(req.FromTime, req.ToTime); len(problems) > 0 {
		return response.ValidationError(c, problems)
	}

	status := req.Status
	if status == "" {
		status = model.EventStatusUpcoming
	}
	if !model.IsValidEventStatus(status) {
		return response.ValidationError(c, map[string]string{"status": "must be upcoming, ongoing or finished"})
	}

	event := model.Event{
		Name:             req.Name,
		DayStart:         day,
		FromTime:         req.FromTime,
		ToTime:           req.ToTime,
		NumberOfStudents: req.NumberOfStudents,
		MaxInstructors:   req.MaxInstructors,
		MaxTAs:           req.MaxTAs,
		MaxParticipants:  req.MaxInstructors + req.MaxTAs,
		Status:           status,
		SchoolName:       validation.SanitizeString(req.SchoolName),
	}
	if err := h.db.Create(&event).Error; err != nil {
		return response.InternalServerError(c, "Failed to create event")
	}

	return response.Created(c, event)
}

// List returns events, newest day first, with optional status filter and
// pagination.
func (h *EventHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.Event{})
	if status := c.Query("status"); status != "" {
		if !model.IsValidEventStatus(status) {
			return response.BadRequest(c, "Unknown event status")
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count events")
	}

	var events []model.Event
	if err := query.
		Order("day_start DESC, from_time DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error; err != nil {
		return response.InternalServerError(c, "Failed to list events")
	}

	return response.Paginated(c, events, response.CalculatePagination(page, limit, total))
}

// Get returns a single event with its roster grouped by role
func (h *EventHandler) Get(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return response.BadRequest(c, "Invalid event id")
	}

	var event model.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to load event")
	}

	eventRoster, err := h.roster.GetRoster(c.Context(), event.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load roster")
	}

	return response.Success(c, fiber.Map{
		"event":  event,
		"roster": eventRoster,
	})
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Name             *string `json:"name,omitempty"`
	DayStart         *string `json:"day_start,omitempty"`
	FromTime         *int    `json:"from_time,omitempty"`
	ToTime           *int    `json:"to_time,omitempty"`
	NumberOfStudents *int    `json:"number_of_students,omitempty"`
	MaxInstructors   *int    `json:"max_instructors,omitempty"`
	MaxTAs           *int    `json:"max_teaching_assistants,omitempty"`
	Status           *string `json:"status,omitempty"`
	SchoolName       *string `json:"school_name,omitempty"`
}

// Update applies a partial update to an event. Admin only. Lowering a role
// cap below the current role count is allowed; the cap then only blocks new
// additions.
func (h *EventHandler) Update(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return response.BadRequest(c, "Invalid event id")
	}

	var event model.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to load event")
	}

	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name != nil {
		name := validation.SanitizeString(*req.Name)
		if len(name) < 2 {
			return response.ValidationError(c, map[string]string{"name": "must be at least 2 characters"})
		}
		event.Name = name
	}
	if req.DayStart != nil {
		day, err := parseDay(*req.DayStart)
		if err != nil {
			return response.ValidationError(c, map[string]string{"day_start": "must be a date in YYYY-MM-DD format"})
		}
		event.DayStart = day
	}
	if req.FromTime != nil {
		event.FromTime = *req.FromTime
	}
	if req.ToTime != nil {
		event.ToTime = *req.ToTime
	}
	if problems := validateWindow(event.FromTime, event.ToTime); len(problems) > 0 {
		return response.ValidationError(c, problems)
	}
	if req.NumberOfStudents != nil {
		event.NumberOfStudents = *req.NumberOfStudents
	}
	if req.MaxInstructors != nil {
		if *req.MaxInstructors < 0 {
			return response.ValidationError(c, map[string]string{"max_instructors": "must not be negative"})
		}
		event.MaxInstructors = *req.MaxInstructors
	}
	if req.MaxTAs != nil {
		if *req.MaxTAs < 0 {
			return response.ValidationError(c, map[string]string{"max_teaching_assistants": "must not be negative"})
		}
		event.MaxTAs = *req.MaxTAs
	}
	event.MaxParticipants = event.MaxInstructors + event.MaxTAs
	if req.Status != nil {
		if !model.IsValidEventStatus(*req.Status) {
			return response.ValidationError(c, map[string]string{"status": "must be upcoming, ongoing or finished"})
		}
		event.Status = *req.Status
	}
	if req.SchoolName != nil {
		event.SchoolName = validation.SanitizeString(*req.SchoolName)
	}

	if err := h.db.Save(&event).Error; err != nil {
		return response.InternalServerError(c, "Failed to update event")
	}

	return response.Success(c, event)
}

// Delete soft deletes an event. Admin only.
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return response.BadRequest(c, "Invalid event id")
	}

	result := h.db.Delete(&model.Event{}, eventID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete event")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Event not found")
	}

	return response.SuccessWithMessage(c, "Event deleted", nil)
}
