package model

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestIsValidClockTime(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want bool
	}{
		{"midnight", 0, true},
		{"morning", 830, true},
		{"last minute of day", 2359, true},
		{"minutes overflow", 875, false},
		{"negative", -1, false},
		{"past end of day", 2400, false},
		{"noon", 1200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidClockTime(tt.in); got != tt.want {
				t.Errorf("IsValidClockTime(%d) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEventEndTime(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	event := Event{
		DayStart: datatypes.Date(day),
		FromTime: 800,
		ToTime:   1630,
	}

	got := event.EndTime()
	want := time.Date(2026, 3, 14, 16, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("EndTime() = %v, want %v", got, want)
	}
}

func TestEventHasEnded(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	event := Event{DayStart: datatypes.Date(day), FromTime: 900, ToTime: 1100}
	end := time.Date(2026, 3, 14, 11, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one minute before end", end.Add(-time.Minute), false},
		{"exactly at end", end, true},
		{"one minute after end", end.Add(time.Minute), true},
		{"previous day", end.AddDate(0, 0, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := event.HasEnded(tt.now); got != tt.want {
				t.Errorf("HasEnded(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestEventRoleCap(t *testing.T) {
	event := Event{MaxInstructors: 2, MaxTAs: 5}

	if got := event.RoleCap(EventRoleInstructor); got != 2 {
		t.Errorf("RoleCap(instructor) = %d, want 2", got)
	}
	if got := event.RoleCap(EventRoleTA); got != 5 {
		t.Errorf("RoleCap(teaching_assistant) = %d, want 5", got)
	}
	if got := event.RoleCap("janitor"); got != 0 {
		t.Errorf("RoleCap(unknown) = %d, want 0", got)
	}
}

func TestIsValidEventRole(t *testing.T) {
	if !IsValidEventRole(EventRoleInstructor) || !IsValidEventRole(EventRoleTA) {
		t.Error("expected both event roles to be valid")
	}
	if IsValidEventRole("participant") || IsValidEventRole("") {
		t.Error("unknown roles must not validate")
	}
}

func TestIsValidEventStatus(t *testing.T) {
	for _, s := range []string{EventStatusUpcoming, EventStatusOngoing, EventStatusFinished} {
		if !IsValidEventStatus(s) {
			t.Errorf("expected %q to be a valid status", s)
		}
	}
	if IsValidEventStatus("cancelled") {
		t.Error("unknown status must not validate")
	}
}
