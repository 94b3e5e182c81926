package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/model"
	authutil "github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/middleware"
	"github.com/campushq/event-portal-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Login handles user login. The very first sign-in against an empty user
// table creates that account as an active admin, so a fresh deployment can
// be bootstrapped without out-of-band setup.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()

	var user model.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bootstrapped, bootErr := h.bootstrapFirstAdmin(c, req, &user)
		if bootErr != nil {
			return bootErr
		}
		if !bootstrapped {
			if h.bruteForceProtection != nil {
				h.bruteForceProtection.RecordFailedAttempt(c, ip)
			}
			return response.Unauthorized(c, "Invalid email or password")
		}
	} else if err != nil {
		return response.InternalServerError(c, "Failed to look up account")
	} else {
		if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
			if h.bruteForceProtection != nil {
				h.bruteForceProtection.RecordFailedAttempt(c, ip)
			}
			return response.Unauthorized(c, "Invalid email or password")
		}
	}

	if !user.Active {
		return response.BadRequest(c, "Account is not active. Check your email for the verification link.")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	accessToken, _, err := h.jwtManager.IssueSessionToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	// Browser page callers carry the session in a cookie
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    accessToken,
		Expires:  time.Now().Add(authutil.SessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return response.Success(c, LoginResponse{
		User:        toUserResponse(&user),
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(authutil.SessionTTL.Seconds()),
	})
}

// bootstrapFirstAdmin creates the caller as an active admin when the user
// table is empty. Concurrent first sign-ins race on the email unique index;
// the loser falls back to the normal invalid-credentials path.
func (h *AuthHandler) bootstrapFirstAdmin(c *fiber.Ctx, req LoginRequest, out *model.User) (bool, error) {
	var count int64
	if err := h.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return false, response.InternalServerError(c, "Failed to look up account")
	}
	if count > 0 {
		return false, nil
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return false, response.BadRequest(c, "Password must be at least 8 characters long")
	}

	admin := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := h.db.Create(&admin).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, response.InternalServerError(c, "Failed to create account")
	}

	*out = admin
	return true, nil
}

// Logout revokes the current session token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	userID, _ := middleware.GetUserID(c)

	claims, _ := middleware.GetClaims(c)
	expiresAt := time.Now().Add(authutil.SessionTTL)
	if claims != nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.blacklistService.RevokeToken(c.Context(), jti, userID, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to log out")
	}

	c.ClearCookie(middleware.SessionCookieName)

	return response.SuccessWithMessage(c, "Logged out", nil)
}
