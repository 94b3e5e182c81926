package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campushq/event-portal-api/model"
	"github.com/campushq/event-portal-api/services/roster"
)

// setupRosterAdminTest connects to the test database and mounts the admin
// roster routes without the auth middleware. Skipped when no database is
// configured.
func setupRosterAdminTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	host := os.Getenv("DB_HOST")
	if host == "" {
		t.Skip("DB_HOST not set, skipping admin roster integration tests")
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

	if err := db.AutoMigrate(&model.User{}, &model.Event{}, &model.EventParticipant{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	db.Exec("DELETE FROM event_participants")
	db.Unscoped().Where("email LIKE ?", "admin-roster-%").Delete(&model.User{})
	db.Unscoped().Where("name LIKE ?", "admin-roster-%").Delete(&model.Event{})

	rosterService := roster.NewService(db)

	app := fiber.New()
	app.Get("/admin/events/:id/participants", func(c *fiber.Ctx) error {
		return GetRoster(c, rosterService)
	})
	app.Post("/admin/events/:id/participants", func(c *fiber.Ctx) error {
		return BulkAddParticipants(c, rosterService)
	})
	app.Delete("/admin/events/:id/participants/:userId", func(c *fiber.Ctx) error {
		return RemoveParticipant(c, rosterService)
	})
	app.Get("/admin/events/:id/candidates", func(c *fiber.Ctx) error {
		return ListCandidates(c, rosterService)
	})

	return app, db
}

func makeUser(t *testing.T, db *gorm.DB, suffix string) *model.User {
	t.Helper()
	user := model.User{
		Email:        fmt.Sprintf("admin-roster-%s@example.com", suffix),
		PasswordHash: "x",
		FullName:     "admin-roster-" + suffix,
		Active:       true,
		Role:         model.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func makeEvent(t *testing.T, db *gorm.DB, name string, maxInstructors, maxTAs int) *model.Event {
	t.Helper()
	event := model.Event{
		Name:            "admin-roster-" + name,
		DayStart:        datatypes.Date(time.Now().AddDate(0, 0, 1)),
		FromTime:        900,
		ToTime:          1100,
		MaxInstructors:  maxInstructors,
		MaxTAs:          maxTAs,
		MaxParticipants: maxInstructors + maxTAs,
		Status:          model.EventStatusUpcoming,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return &event
}

// rosterPayload is the roster fragment shape shared by the admin responses
type rosterPayload struct {
	Instructors        []model.EventParticipant `json:"instructors"`
	TeachingAssistants []model.EventParticipant `json:"teaching_assistants"`
	InstructorCount    int                      `json:"instructor_count"`
	TACount            int                      `json:"ta_count"`
}

func decodeRoster(t *testing.T, resp *http.Response) rosterPayload {
	t.Helper()
	var envelope struct {
		Success bool          `json:"success"`
		Data    rosterPayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode roster response: %v", err)
	}
	return envelope.Data
}

func TestBulkAddAndRemoveReturnRefreshedRoster(t *testing.T) {
	app, db := setupRosterAdminTest(t)

	event := makeEvent(t, db, "refresh", 3, 3)
	u1 := makeUser(t, db, "refresh1")
	u2 := makeUser(t, db, "refresh2")

	body, _ := json.Marshal(BulkAddRequest{
		Role:    model.EventRoleInstructor,
		UserIDs: []uint{u1.ID, u2.ID},
	})
	req := httptest.NewRequest("POST", fmt.Sprintf("/admin/events/%d/participants", event.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("bulk add request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bulk add status = %d, want 200", resp.StatusCode)
	}

	added := decodeRoster(t, resp)
	if added.InstructorCount != 2 {
		t.Errorf("bulk add roster instructor_count = %d, want 2", added.InstructorCount)
	}

	// Remove returns the roster without the removed entry
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/admin/events/%d/participants/%d", event.ID, u1.ID), nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("remove request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("remove status = %d, want 200", resp.StatusCode)
	}

	afterRemove := decodeRoster(t, resp)
	if afterRemove.InstructorCount != 1 {
		t.Errorf("remove roster instructor_count = %d, want 1", afterRemove.InstructorCount)
	}

	// Removing an absent entry still succeeds and still returns the roster
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/admin/events/%d/participants/%d", event.ID, u1.ID), nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("repeat remove request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("repeat remove status = %d, want 200", resp.StatusCode)
	}
}

func TestListCandidatesQueryParams(t *testing.T) {
	app, db := setupRosterAdminTest(t)

	event := makeEvent(t, db, "cand", 2, 2)
	member := makeUser(t, db, "cand-member")
	outsider := makeUser(t, db, "cand-outsider")

	svc := roster.NewService(db)
	if err := svc.Join(context.Background(), event.ID, member.ID, model.EventRoleTA); err != nil {
		t.Fatalf("seed Join() error = %v", err)
	}

	// q filters, role_to_add is echoed back
	url := fmt.Sprintf("/admin/events/%d/candidates?role_to_add=instructor&q=cand-outsider", event.ID)
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("candidates request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("candidates status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			RoleToAdd  string `json:"role_to_add"`
			Candidates struct {
				Users []model.User `json:"users"`
				Total int64        `json:"total"`
			} `json:"candidates"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode candidates response: %v", err)
	}

	if envelope.Data.RoleToAdd != model.EventRoleInstructor {
		t.Errorf("role_to_add = %q, want instructor", envelope.Data.RoleToAdd)
	}
	if envelope.Data.Candidates.Total != 1 {
		t.Errorf("candidates total = %d, want 1", envelope.Data.Candidates.Total)
	}
	if len(envelope.Data.Candidates.Users) != 1 || envelope.Data.Candidates.Users[0].ID != outsider.ID {
		t.Errorf("candidates = %v, want only the non-member user", envelope.Data.Candidates.Users)
	}

	// An unknown role_to_add is rejected
	url = fmt.Sprintf("/admin/events/%d/candidates?role_to_add=spectator", event.ID)
	resp, err = app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("bad role request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad role_to_add status = %d, want 400", resp.StatusCode)
	}
}
