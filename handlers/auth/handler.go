package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/model"
	"github.com/campushq/event-portal-api/services/email"
	authutil "github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/middleware"
	"github.com/campushq/event-portal-api/utils/response"
	"github.com/campushq/event-portal-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	emailService         *email.Service
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, emailService *email.Service) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		emailService:         emailService,
		validator:            validation.NewValidator(),
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone,omitempty"`
	Active     bool      `json:"active"`
	Role       string    `json:"role"`
	BankName   string    `json:"bank_name,omitempty"`
	BankNumber string    `json:"bank_number,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Active:     u.Active,
		Role:       u.Role,
		BankName:   u.BankName,
		BankNumber: u.BankNumber,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// SignupRequest represents a user registration request
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone,omitempty"`
}

// Signup registers a new account. The account stays inactive until the email
// address is verified.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = validation.SanitizeString(req.Email)
	req.FullName = validation.SanitizeString(req.FullName)

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if ok, problems := validation.ValidatePassword(req.Password); !ok {
		return response.ValidationError(c, map[string]string{"password": problems[0]})
	}

	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         model.RoleUser,
		Active:       false,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return response.Conflict(c, "An account with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create account")
	}

	h.sendVerificationEmail(&user)

	return response.Created(c, fiber.Map{
		"user":    toUserResponse(&user),
		"message": "Account created. Check your email to verify your address.",
	})
}

// sendVerificationEmail issues a verification token and mails it without
// blocking the request.
func (h *AuthHandler) sendVerificationEmail(user *model.User) {
	token, _, err := h.jwtManager.IssueVerificationToken(user.ID, user.Email)
	if err != nil {
		log.Printf("Failed to issue verification token for %s: %v", user.Email, err)
		return
	}

	go func(email, name string) {
		if err := h.emailService.SendVerificationEmail(email, token, name); err != nil {
			log.Printf("Failed to send verification email to %s: %v", email, err)
		}
	}(user.Email, user.FullName)
}
