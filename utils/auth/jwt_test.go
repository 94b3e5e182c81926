package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: testSecret,
		Issuer: "event-portal-test",
	})
}

func TestIssueSessionToken(t *testing.T) {
	m := newTestManager()

	token, jti, err := m.IssueSessionToken(42, "user@example.com", "user", 3)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueSessionToken() returned empty token")
	}
	if jti == "" {
		t.Fatal("IssueSessionToken() returned empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q, want user@example.com", claims.Email)
	}
	if claims.Purpose != PurposeSession {
		t.Errorf("Purpose = %q, want %q", claims.Purpose, PurposeSession)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	m := newTestManager()

	// A token whose 30 minute lifetime already elapsed must validate as
	// expired, not decode to a subject.
	token, _, err := m.IssueToken(1, "late@example.com", "user", PurposeSession, 0, -31*time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	_, err = m.ValidateToken(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateToken_Tampered(t *testing.T) {
	m := newTestManager()

	token, _, err := m.IssueSessionToken(1, "a@example.com", "user", 0)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := m.ValidateToken(tampered); err == nil {
		t.Error("ValidateToken() accepted a tampered token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewJWTManager(JWTConfig{Secret: "another-secret-key-of-enough-length", Issuer: "x"})

	token, _, err := m.IssueSessionToken(1, "a@example.com", "user", 0)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenForPurpose(t *testing.T) {
	m := newTestManager()

	tests := []struct {
		name    string
		issue   func() (string, string, error)
		purpose string
		wantErr error
	}{
		{
			name:    "session token for session",
			issue:   func() (string, string, error) { return m.IssueSessionToken(1, "a@x.com", "user", 0) },
			purpose: PurposeSession,
			wantErr: nil,
		},
		{
			name:    "verification token cannot authenticate",
			issue:   func() (string, string, error) { return m.IssueVerificationToken(1, "a@x.com") },
			purpose: PurposeSession,
			wantErr: ErrWrongPurpose,
		},
		{
			name:    "reset token cannot verify email",
			issue:   func() (string, string, error) { return m.IssueResetToken(1, "a@x.com", 0) },
			purpose: PurposeVerifyEmail,
			wantErr: ErrWrongPurpose,
		},
		{
			name:    "reset token for reset",
			issue:   func() (string, string, error) { return m.IssueResetToken(1, "a@x.com", 0) },
			purpose: PurposePasswordReset,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := tt.issue()
			if err != nil {
				t.Fatalf("issue error = %v", err)
			}
			_, err = m.ValidateTokenForPurpose(token, tt.purpose)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTokenForPurpose() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := newTestManager()

	before := time.Now().Add(VerifyEmailTTL)
	token, _, err := m.IssueVerificationToken(7, "v@example.com")
	if err != nil {
		t.Fatalf("IssueVerificationToken() error = %v", err)
	}
	after := time.Now().Add(VerifyEmailTTL)

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry() error = %v", err)
	}
	if expiry.Before(before.Add(-time.Second)) || expiry.After(after.Add(time.Second)) {
		t.Errorf("expiry %v outside expected 30 minute window", expiry)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if strings.Contains(hash, "Secret123") {
		t.Error("hash contains the plaintext password")
	}

	if err := VerifyPassword(hash, "Secret123"); err != nil {
		t.Errorf("VerifyPassword() with correct password error = %v", err)
	}
	if err := VerifyPassword(hash, "WrongPass1"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("VerifyPassword() with wrong password error = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short1"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("HashPassword() error = %v, want ErrPasswordTooShort", err)
	}
}
