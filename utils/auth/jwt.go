package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrWrongPurpose  = errors.New("token purpose mismatch")
)

// Token purposes. Every token carries exactly one purpose and is rejected
// anywhere a different purpose is expected, so a leaked verification link can
// never double as a session credential.
const (
	PurposeSession       = "session"
	PurposeVerifyEmail   = "verify_email"
	PurposePasswordReset = "password_reset"
)

// Default TTLs per purpose.
const (
	SessionTTL     = 24 * time.Hour
	VerifyEmailTTL = 30 * time.Minute
	ResetTTL       = 30 * time.Minute
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// Claims represents JWT claims
type Claims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Purpose      string `json:"purpose"`
	TokenVersion int    `json:"token_version"` // For invalidating all tokens
	jwt.RegisteredClaims
}

// JWTManager handles JWT token operations
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

// IssueToken generates a signed token for the given purpose and TTL, returning
// the token and its JTI.
func (j *JWTManager) IssueToken(userID uint, email, role, purpose string, tokenVersion int, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		UserID:       userID,
		Email:        email,
		Role:         role,
		Purpose:      purpose,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(j.config.Secret))
	return signedToken, jti, err
}

// IssueSessionToken generates a login session token.
func (j *JWTManager) IssueSessionToken(userID uint, email, role string, tokenVersion int) (string, string, error) {
	return j.IssueToken(userID, email, role, PurposeSession, tokenVersion, SessionTTL)
}

// IssueVerificationToken generates a short-lived email verification token.
func (j *JWTManager) IssueVerificationToken(userID uint, email string) (string, string, error) {
	return j.IssueToken(userID, email, "", PurposeVerifyEmail, 0, VerifyEmailTTL)
}

// IssueResetToken generates a short-lived password reset token.
func (j *JWTManager) IssueResetToken(userID uint, email string, tokenVersion int) (string, string, error) {
	return j.IssueToken(userID, email, "", PurposePasswordReset, tokenVersion, ResetTTL)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(j.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// ValidateTokenForPurpose validates a token and requires the given purpose.
func (j *JWTManager) ValidateTokenForPurpose(tokenString, purpose string) (*Claims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// GetTokenExpiry returns the expiry time of a token without validating it
func (j *JWTManager) GetTokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return time.Time{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidClaims
	}

	return claims.ExpiresAt.Time, nil
}
