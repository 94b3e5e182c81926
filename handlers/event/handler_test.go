package event

import (
	"testing"
	"time"
)

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		name       string
		fromTime   int
		toTime     int
		wantFields []string
	}{
		{"valid morning window", 800, 1000, nil},
		{"valid single minute", 959, 1000, nil},
		{"end equals start", 900, 900, []string{"to_time"}},
		{"end before start", 1400, 900, []string{"to_time"}},
		{"bad minutes in from", 875, 1000, []string{"from_time"}},
		{"bad minutes in to", 800, 1099, []string{"to_time"}},
		{"hour out of range", 800, 2400, []string{"to_time"}},
		{"negative from", -100, 1000, []string{"from_time"}},
		{"both invalid", 2575, 9999, []string{"from_time", "to_time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := validateWindow(tt.fromTime, tt.toTime)
			if len(problems) != len(tt.wantFields) {
				t.Fatalf("validateWindow(%d, %d) = %v, want problems on %v",
					tt.fromTime, tt.toTime, problems, tt.wantFields)
			}
			for _, field := range tt.wantFields {
				if _, ok := problems[field]; !ok {
					t.Errorf("validateWindow(%d, %d) missing problem for %q: %v",
						tt.fromTime, tt.toTime, field, problems)
				}
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-15")
	if err != nil {
		t.Fatalf("parseDay() error = %v", err)
	}
	got := time.Time(day)
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("parseDay() = %v, want 2026-03-15", got)
	}

	for _, bad := range []string{"", "15-03-2026", "2026/03/15", "2026-13-01", "not a date"} {
		if _, err := parseDay(bad); err == nil {
			t.Errorf("parseDay(%q) expected error", bad)
		}
	}
}
