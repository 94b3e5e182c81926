package roster

import (
	"strings"
	"testing"

	"github.com/campushq/event-portal-api/model"
)

func TestCheckBulkCapacity(t *testing.T) {
	tests := []struct {
		name    string
		current int
		adding  int
		limit   int
		wantErr bool
	}{
		{"fits exactly", 1, 1, 2, false},
		{"one over", 1, 2, 2, true},
		{"zero limit is unlimited", 50, 100, 0, false},
		{"empty roster well under", 0, 3, 10, false},
		{"full roster rejects any add", 2, 1, 2, true},
		{"adding nothing never overflows", 2, 0, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkBulkCapacity(model.EventRoleInstructor, tt.current, tt.adding, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkBulkCapacity(%d, %d, %d) error = %v, wantErr %v",
					tt.current, tt.adding, tt.limit, err, tt.wantErr)
			}
		})
	}
}

func TestCapacityErrorMessage(t *testing.T) {
	// The admin UI displays the prospective total against the limit,
	// e.g. "current 1 + 2 = 3 > 2".
	err := &CapacityError{Role: model.EventRoleInstructor, Current: 1, Adding: 2, Limit: 2}

	msg := err.Error()
	for _, fragment := range []string{"instructor", "1 + 2 = 3 > 2"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("CapacityError message %q missing %q", msg, fragment)
		}
	}

	if got := err.Overflow(); got != 1 {
		t.Errorf("Overflow() = %d, want 1", got)
	}
}

func TestCapacityErrorAggregateMessage(t *testing.T) {
	err := &CapacityError{Current: 10, Adding: 1, Limit: 10}
	if !strings.Contains(err.Error(), "maximum number of participants") {
		t.Errorf("aggregate message = %q", err.Error())
	}
}
