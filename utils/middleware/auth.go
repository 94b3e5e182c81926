package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/model"
	"github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/response"
)

// SessionCookieName is the cookie browser page callers carry the session
// token in.
const SessionCookieName = "access_token"

// AuthMiddleware resolves the caller's identity from a bearer credential.
// Two resolution paths exist: Required rejects API callers with 401,
// RequiredWeb redirects browser page callers to the sign-in page.
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// authenticate validates a session token end to end: signature, purpose,
// blacklist, user existence, token version and account activation. On failure
// it returns a client-safe message.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx, tokenString string) (*model.User, *auth.Claims, string) {
	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, nil, "Token has expired"
		}
		return nil, nil, "Invalid token"
	}

	if claims.Purpose != auth.PurposeSession {
		return nil, nil, "Invalid token type"
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil || isRevoked {
		return nil, nil, "Token has been revoked"
	}

	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		return nil, nil, "User not found"
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, "Token has been invalidated"
	}

	if !user.Active {
		return nil, nil, "Account is not active"
	}

	return &user, claims, ""
}

// storeLocals stashes the resolved identity for downstream handlers
func storeLocals(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
	c.Locals("token_jti", claims.ID)
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Required is middleware that requires a valid session token in the
// Authorization header. Unauthenticated API callers get 401.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		user, claims, failure := m.authenticate(c, tokenString)
		if failure != "" {
			return response.Unauthorized(c, failure)
		}

		storeLocals(c, user, claims)
		return c.Next()
	}
}

// RequiredWeb resolves the session from the access_token cookie and redirects
// unauthenticated browser callers to the sign-in page instead of returning
// JSON.
func (m *AuthMiddleware) RequiredWeb(signinURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookieName)
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		if tokenString == "" {
			return c.Redirect(signinURL, fiber.StatusFound)
		}

		user, claims, failure := m.authenticate(c, tokenString)
		if failure != "" {
			return c.Redirect(signinURL, fiber.StatusFound)
		}

		storeLocals(c, user, claims)
		return c.Next()
	}
}

// RequireAdmin is middleware that requires an authenticated admin. A valid
// non-admin session gets 403, distinct from the 401 unauthenticated case.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		user, claims, failure := m.authenticate(c, tokenString)
		if failure != "" {
			return response.Unauthorized(c, failure)
		}

		if !user.IsAdmin() {
			return response.Forbidden(c, "Admin access required")
		}

		storeLocals(c, user, claims)
		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts the full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
