package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event lifecycle statuses. The status is set at creation and by admin edits;
// nothing in the portal advances it automatically.
const (
	EventStatusUpcoming = "upcoming"
	EventStatusOngoing  = "ongoing"
	EventStatusFinished = "finished"
)

// IsValidEventStatus reports whether status is one of the known lifecycle states.
func IsValidEventStatus(status string) bool {
	switch status {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusFinished:
		return true
	}
	return false
}

// Event represents a scheduled event with per-role participant caps
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	DayStart  datatypes.Date `gorm:"not null" json:"day_start"`
	// FromTime and ToTime are clock times encoded as HHMM integers,
	// e.g. 830 for 08:30. ToTime must be strictly after FromTime.
	FromTime         int    `gorm:"not null" json:"from_time"`
	ToTime           int    `gorm:"not null" json:"to_time"`
	NumberOfStudents int    `gorm:"default:0" json:"number_of_students"` // expected attendees, informational
	MaxInstructors   int    `gorm:"default:0" json:"max_instructors"`
	MaxTAs           int    `gorm:"default:0" json:"max_teaching_assistants"`
	MaxParticipants  int    `gorm:"default:0" json:"max_participants"` // aggregate cap, kept in sync with the role caps
	Status           string `gorm:"type:varchar(20);default:'upcoming'" json:"status"`
	SchoolName       string `json:"school_name,omitempty"`

	Participants []EventParticipant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "events"
}

// IsValidClockTime reports whether t is a valid HHMM encoding (minutes < 60,
// within a single day).
func IsValidClockTime(t int) bool {
	return t >= 0 && t <= 2359 && t%100 < 60
}

// EndTime combines the event day with ToTime into the wall-clock instant the
// event ends. Attendance may only be marked at or after this instant.
func (e *Event) EndTime() time.Time {
	day := time.Time(e.DayStart)
	return time.Date(day.Year(), day.Month(), day.Day(), e.ToTime/100, e.ToTime%100, 0, 0, time.Local)
}

// HasEnded reports whether the event end instant has passed at the given time.
func (e *Event) HasEnded(now time.Time) bool {
	return !now.Before(e.EndTime())
}

// RoleCap returns the configured cap for an event role. A cap of zero means
// the role is effectively unlimited.
func (e *Event) RoleCap(role string) int {
	switch role {
	case EventRoleInstructor:
		return e.MaxInstructors
	case EventRoleTA:
		return e.MaxTAs
	}
	return 0
}
