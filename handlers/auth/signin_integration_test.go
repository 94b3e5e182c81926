package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campushq/event-portal-api/model"
	authutil "github.com/campushq/event-portal-api/utils/auth"
)

// setupSigninTest connects to the test database, empties the user table and
// mounts the sign-in route. Skipped when no database is configured.
func setupSigninTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	host := os.Getenv("DB_HOST")
	if host == "" {
		t.Skip("DB_HOST not set, skipping sign-in integration tests")
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("DB_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host,
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		port,
		sslMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.EventParticipant{}, &model.JWTTokenBlacklist{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	// The bootstrap path only applies to a globally empty user table
	db.Exec("DELETE FROM users")

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret-for-signin",
		Issuer: "test",
	})
	handler := NewAuthHandler(db, jwtManager, nil, nil)

	app := fiber.New()
	app.Post("/signin", handler.Login)

	return app, db
}

func postSignin(t *testing.T, app *fiber.App, email, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestFirstSigninBootstrapsAdmin(t *testing.T) {
	app, db := setupSigninTest(t)

	// First sign-in ever provisions an active admin with the submitted
	// credentials and returns a token.
	resp := postSignin(t, app, "a@x.com", "Secret123")
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bootstrap sign-in status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Error("bootstrap sign-in returned no access token")
	}
	if envelope.Data.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", envelope.Data.TokenType)
	}

	var admin model.User
	if err := db.Where("email = ?", "a@x.com").First(&admin).Error; err != nil {
		t.Fatalf("bootstrap admin not created: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("bootstrap role = %q, want admin", admin.Role)
	}
	if !admin.Active {
		t.Error("bootstrap admin is not active")
	}

	// Same email with a different password is a normal failed login now
	resp2 := postSignin(t, app, "a@x.com", "WrongPassword1")
	defer resp2.Body.Close()
	if resp2.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("wrong-password status = %d, want 401", resp2.StatusCode)
	}

	// Bootstrap is one shot: once any user exists, an unknown email fails
	// instead of provisioning another admin.
	resp3 := postSignin(t, app, "b@x.com", "Another123")
	defer resp3.Body.Close()
	if resp3.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("second-bootstrap status = %d, want 401", resp3.StatusCode)
	}
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("user count = %d, want 1 (bootstrap must not repeat)", count)
	}

	// The bootstrapped credentials keep working
	resp4 := postSignin(t, app, "a@x.com", "Secret123")
	defer resp4.Body.Close()
	if resp4.StatusCode != fiber.StatusOK {
		t.Errorf("repeat sign-in status = %d, want 200", resp4.StatusCode)
	}
}
