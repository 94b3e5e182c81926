// Package roster implements the participant-capacity and role-assignment
// engine: who may join an event, how per-role caps are enforced, attendance
// marking tied to the event end time, and the admin roster flows.
package roster

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campushq/event-portal-api/model"
)

// CandidatePageSize is the fixed page size for the candidate picker
const CandidatePageSize = 10

// Service is the roster engine. Every mutating operation runs in one
// transaction; capacity counts take a row lock on the event so two joins
// racing for the last slot serialize instead of both passing the check.
type Service struct {
	db *gorm.DB
}

// NewService creates a roster service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// isUniqueViolation reports whether err is a Postgres duplicate-key error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// lockEvent loads the event inside tx with a FOR UPDATE row lock
func lockEvent(tx *gorm.DB, eventID uint) (*model.Event, error) {
	var event model.Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// Join registers a user for an event in the given role. The aggregate
// participant cap is checked against a locked snapshot; the composite primary
// key backstops the duplicate check under concurrency.
func (s *Service) Join(ctx context.Context, eventID, userID uint, role string) error {
	if !model.IsValidEventRole(role) {
		return ErrInvalidRole
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&model.EventParticipant{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyJoined
		}

		var total int64
		if err := tx.Model(&model.EventParticipant{}).
			Where("event_id = ?", eventID).
			Count(&total).Error; err != nil {
			return err
		}
		if event.MaxParticipants > 0 && int(total) >= event.MaxParticipants {
			return &CapacityError{Current: int(total), Adding: 1, Limit: event.MaxParticipants}
		}

		entry := model.EventParticipant{
			EventID: eventID,
			UserID:  userID,
			Role:    role,
			Status:  model.ParticipationRegistered,
		}
		return tx.Create(&entry).Error
	})

	if isUniqueViolation(err) {
		return ErrAlreadyJoined
	}
	return err
}

// Leave removes the caller's roster entry. A second leave fails with
// ErrNotJoined; this path is not idempotent, unlike admin Remove.
func (s *Service) Leave(ctx context.Context, eventID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockEvent(tx, eventID); err != nil {
			return err
		}

		result := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&model.EventParticipant{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotJoined
		}
		return nil
	})
}

// Attend marks the caller's roster entry as attended. Allowed only at or
// after the event's computed end instant; attended is terminal, and repeating
// the call once attended is accepted as a no-op rewrite of the same state.
// checkImageURL, when non-empty, is recorded as attendance evidence.
func (s *Service) Attend(ctx context.Context, eventID, userID uint, checkImageURL string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		var entry model.EventParticipant
		err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotJoined
			}
			return err
		}

		if !event.HasEnded(time.Now()) {
			return ErrEventNotEnded
		}

		updates := map[string]interface{}{"status": model.ParticipationAttended}
		if checkImageURL != "" {
			updates["check_image_url"] = checkImageURL
		}
		return tx.Model(&entry).Updates(updates).Error
	})
}

// BulkAdd inserts one registered roster entry per user in the given role.
// The whole batch is checked against the prospective total and applied
// atomically: a capacity rejection or any insert failure leaves zero rows.
func (s *Service) BulkAdd(ctx context.Context, eventID uint, role string, userIDs []uint) error {
	if !model.IsValidEventRole(role) {
		return ErrInvalidRole
	}
	if len(userIDs) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		var current int64
		if err := tx.Model(&model.EventParticipant{}).
			Where("event_id = ? AND role = ?", eventID, role).
			Count(&current).Error; err != nil {
			return err
		}

		// A zero cap means the role is unlimited, a documented leniency.
		if capErr := checkBulkCapacity(role, int(current), len(userIDs), event.RoleCap(role)); capErr != nil {
			return capErr
		}

		entries := make([]model.EventParticipant, 0, len(userIDs))
		for _, uid := range userIDs {
			entries = append(entries, model.EventParticipant{
				EventID: eventID,
				UserID:  uid,
				Role:    role,
				Status:  model.ParticipationRegistered,
			})
		}
		return tx.Create(&entries).Error
	})

	if isUniqueViolation(err) {
		return ErrAlreadyJoined
	}
	return err
}

// checkBulkCapacity applies the prospective-total rule: current + adding must
// not exceed the limit. A zero limit disables the check.
func checkBulkCapacity(role string, current, adding, limit int) *CapacityError {
	if limit > 0 && current+adding > limit {
		return &CapacityError{Role: role, Current: current, Adding: adding, Limit: limit}
	}
	return nil
}

// Remove deletes a roster entry unconditionally. Unlike Leave it is
// idempotent: removing an absent entry is not an error.
func (s *Service) Remove(ctx context.Context, eventID, userID uint) error {
	return s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&model.EventParticipant{}).Error
}

// Roster holds an event's participants grouped by role, with the counts and
// caps the management UI renders.
type Roster struct {
	Event              *model.Event             `json:"event"`
	Instructors        []model.EventParticipant `json:"instructors"`
	TeachingAssistants []model.EventParticipant `json:"teaching_assistants"`
	InstructorCount    int                      `json:"instructor_count"`
	TACount            int                      `json:"ta_count"`
}

// GetRoster loads the grouped roster for an event
func (s *Service) GetRoster(ctx context.Context, eventID uint) (*Roster, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	var entries []model.EventParticipant
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("joined_at").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	r := &Roster{Event: &event}
	for _, entry := range entries {
		switch entry.Role {
		case model.EventRoleInstructor:
			r.Instructors = append(r.Instructors, entry)
		case model.EventRoleTA:
			r.TeachingAssistants = append(r.TeachingAssistants, entry)
		}
	}
	r.InstructorCount = len(r.Instructors)
	r.TACount = len(r.TeachingAssistants)
	return r, nil
}

// CandidatePage is one page of users eligible to be added to an event
type CandidatePage struct {
	Users      []model.User `json:"users"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
}

// ListCandidates returns users not already linked to the event, excluding
// soft-deleted accounts, optionally filtered by a case-insensitive substring
// match on name or email, with a fixed page size.
func (s *Service) ListCandidates(ctx context.Context, eventID uint, search string, page int) (*CandidatePage, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if page < 1 {
		page = 1
	}

	joined := s.db.Model(&model.EventParticipant{}).
		Select("user_id").
		Where("event_id = ?", eventID)

	query := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id NOT IN (?)", joined)

	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []model.User
	offset := (page - 1) * CandidatePageSize
	if err := query.Order("id").Offset(offset).Limit(CandidatePageSize).Find(&users).Error; err != nil {
		return nil, err
	}

	totalPages := int(total+CandidatePageSize-1) / CandidatePageSize

	return &CandidatePage{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// RoleCount returns the current number of entries for a role on an event
func (s *Service) RoleCount(ctx context.Context, eventID uint, role string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.EventParticipant{}).
		Where("event_id = ? AND role = ?", eventID, role).
		Count(&count).Error
	return count, err
}
