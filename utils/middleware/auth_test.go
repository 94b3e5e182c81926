package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/event-portal-api/utils/auth"
)

func testAuthMiddleware() *AuthMiddleware {
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: "test-secret-for-middleware",
		Issuer: "test",
	})
	return NewAuthMiddleware(jwtManager, nil)
}

// API callers get a JSON 401 when unauthenticated
func TestRequiredRejectsWithJSON401(t *testing.T) {
	m := testAuthMiddleware()

	app := fiber.New()
	app.Get("/secure", m.Required(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token"},
		{name: "garbage token", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/secure", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
			if loc := resp.Header.Get("Location"); loc != "" {
				t.Errorf("API path must not redirect, got Location %q", loc)
			}
		})
	}
}

// Browser page callers are redirected to the sign-in page instead
func TestRequiredWebRedirectsToSignin(t *testing.T) {
	m := testAuthMiddleware()
	const signinURL = "http://localhost:3000/signin"

	app := fiber.New()
	app.Get("/portal/events", m.RequiredWeb(signinURL), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	tests := []struct {
		name   string
		cookie string
	}{
		{name: "no cookie"},
		{name: "garbage cookie", cookie: "not-a-jwt"},
		{name: "bearer-prefixed garbage", cookie: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/portal/events", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusFound {
				t.Errorf("status = %d, want 302", resp.StatusCode)
			}
			if loc := resp.Header.Get("Location"); loc != signinURL {
				t.Errorf("Location = %q, want %q", loc, signinURL)
			}
		})
	}
}
