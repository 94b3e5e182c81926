package validation

import (
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"valid mixed", "Secret123", true},
		{"too short", "Ab1", false},
		{"no digit", "Passwordonly", false},
		{"no letter", "1234567890", false},
		{"exactly eight with both", "abcdefg1", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, errs := ValidatePassword(tt.password)
			if ok != tt.wantOK {
				t.Errorf("ValidatePassword(%q) = %v (%v), want %v", tt.password, ok, errs, tt.wantOK)
			}
			if !ok && len(errs) == 0 {
				t.Error("failed validation must report at least one reason")
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	type signup struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	v := NewValidator()

	if err := v.ValidateStruct(signup{Email: "a@x.com", Password: "Secret123"}); err != nil {
		t.Errorf("valid struct failed: %v", err)
	}

	err := v.ValidateStruct(signup{Email: "not-an-email", Password: "short"})
	if err == nil {
		t.Fatal("invalid struct passed validation")
	}

	fields := FormatValidationErrors(err)
	if fields["email"] == "" {
		t.Error("expected an email field error")
	}
	if fields["password"] == "" {
		t.Error("expected a password field error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00 "); got != "hello" {
		t.Errorf("SanitizeString() = %q, want %q", got, "hello")
	}
}
