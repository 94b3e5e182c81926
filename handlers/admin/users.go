package admin

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/database"
	"github.com/campushq/event-portal-api/model"
	authutil "github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/middleware"
	"github.com/campushq/event-portal-api/utils/response"
	"github.com/campushq/event-portal-api/utils/validation"
)

// ListUsersRequest represents the query parameters for listing users
type ListUsersRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Role   string `query:"role"`
	Search string `query:"search"`
}

// CreateUserRequest represents the request body for an admin-created account
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Email      string `json:"email,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
	Active     *bool  `json:"active,omitempty"`
	BankName   string `json:"bank_name,omitempty"`
	BankNumber string `json:"bank_number,omitempty"`
}

// DefaultPassword is assigned to admin-created accounts when no password is
// given. Users are expected to change it through the password reset flow.
const DefaultPassword = "changeme123"

func getDB(c *fiber.Ctx, store database.Storage) (*gorm.DB, error) {
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return nil, response.InternalServerError(c, "Database connection error")
	}
	return db, nil
}

// ListUsers retrieves all users with pagination and filters
// GET /admin/users
func ListUsers(c *fiber.Ctx, store database.Storage) error {
	db, err := getDB(c, store)
	if err != nil {
		return err
	}

	var req ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := db.Model(&model.User{})

	if req.Role != "" {
		if !model.IsValidUserRole(req.Role) {
			return response.BadRequest(c, "Unknown user role")
		}
		query = query.Where("role = ?", req.Role)
	}

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	var users []model.User
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Order("created_at DESC").Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, response.CalculatePagination(req.Page, req.Limit, total))
}

// GetUser retrieves a specific user by ID with their event registrations
// GET /admin/users/:id
func GetUser(c *fiber.Ctx, store database.Storage) error {
	db, err := getDB(c, store)
	if err != nil {
		return err
	}

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	var stats struct {
		TotalRegistrations int64 `json:"total_registrations"`
		TotalAttended      int64 `json:"total_attended"`
	}
	db.Model(&model.EventParticipant{}).Where("user_id = ?", userID).Count(&stats.TotalRegistrations)
	db.Model(&model.EventParticipant{}).Where("user_id = ? AND status = ?", userID, model.ParticipationAttended).Count(&stats.TotalAttended)

	return response.SuccessWithMessage(c, "User retrieved successfully", fiber.Map{
		"user":  user,
		"stats": stats,
	})
}

// CreateUser creates an account directly, already active, skipping email
// verification. POST /admin/users
func CreateUser(c *fiber.Ctx, store database.Storage) error {
	db, err := getDB(c, store)
	if err != nil {
		return err
	}

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = validation.SanitizeString(req.Email)
	req.FullName = validation.SanitizeString(req.FullName)
	if req.Email == "" || req.FullName == "" {
		return response.BadRequest(c, "Email and full name are required")
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.IsValidUserRole(role) {
		return response.BadRequest(c, "Unknown user role")
	}

	password := req.Password
	if password == "" {
		password = DefaultPassword
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	var existing model.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         role,
		Active:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.Created(c, user)
}

// UpdateUser updates a user's information
// PUT /admin/users/:id
func UpdateUser(c *fiber.Ctx, store database.Storage) error {
	db, err := getDB(c, store)
	if err != nil {
		return err
	}

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	updates := make(map[string]interface{})

	if req.FullName != "" {
		updates["full_name"] = validation.SanitizeString(req.FullName)
	}
	if req.Email != "" {
		var existingUser model.User
		if err := db.Where("email = ? AND id != ?", req.Email, userID).First(&existingUser).Error; err == nil {
			return response.BadRequest(c, "Email already in use")
		}
		updates["email"] = validation.SanitizeString(req.Email)
	}
	if req.Role != "" {
		if !model.IsValidUserRole(req.Role) {
			return response.BadRequest(c, "Unknown user role")
		}
		updates["role"] = req.Role
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.BankName != "" {
		updates["bank_name"] = req.BankName
	}
	if req.BankNumber != "" {
		updates["bank_number"] = req.BankNumber
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	db.First(&user, userID)

	return response.SuccessWithMessage(c, "User updated successfully", fiber.Map{
		"user": user,
	})
}

// DeleteUser soft deletes a user and invalidates their sessions
// DELETE /admin/users/:id
func DeleteUser(c *fiber.Ctx, store database.Storage) error {
	db, err := getDB(c, store)
	if err != nil {
		return err
	}

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	// Admins cannot delete themselves
	if callerID, ok := middleware.GetUserID(c); ok && callerID == uint(userID) {
		return response.BadRequest(c, "Cannot delete your own account")
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if err := authutil.NewBlacklistService(db).RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate user sessions")
	}

	if err := db.Delete(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
