package model

import "time"

// Roles a participant can hold within an event. A user holds at most one role
// per event, enforced by the composite primary key.
const (
	EventRoleInstructor = "instructor"
	EventRoleTA         = "teaching_assistant"
)

// Participation statuses. Attended is terminal.
const (
	ParticipationRegistered = "registered"
	ParticipationAttended   = "attended"
)

// IsValidEventRole reports whether role is one of the two event roles.
func IsValidEventRole(role string) bool {
	return role == EventRoleInstructor || role == EventRoleTA
}

// EventParticipant is a roster entry linking a user to an event. The
// (event_id, user_id) composite key doubles as the database-level guard
// against duplicate joins racing past the application checks.
type EventParticipant struct {
	EventID       uint      `gorm:"primaryKey" json:"event_id"`
	UserID        uint      `gorm:"primaryKey" json:"user_id"`
	Role          string    `gorm:"type:varchar(30);not null;default:'teaching_assistant'" json:"role"`
	Status        string    `gorm:"type:varchar(20);not null;default:'registered'" json:"status"`
	CheckImageURL string    `gorm:"type:text" json:"check_image_url,omitempty"` // attendance evidence, object-storage URL
	JoinedAt      time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Event Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for EventParticipant
func (EventParticipant) TableName() string {
	return "event_participants"
}

// HasAttended reports whether the entry has reached the terminal attended state
func (p *EventParticipant) HasAttended() bool {
	return p.Status == ParticipationAttended
}
