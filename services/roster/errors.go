package roster

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidRole   = errors.New("role must be instructor or teaching_assistant")
	ErrAlreadyJoined = errors.New("user already joined this event")
	ErrNotJoined     = errors.New("user has not joined this event")
	ErrEventNotEnded = errors.New("event has not ended yet")
)

// CapacityError reports a rejected insertion with the numbers the admin UI
// displays: the prospective total versus the configured limit.
type CapacityError struct {
	Role    string // empty for the aggregate participant cap
	Current int
	Adding  int
	Limit   int
}

func (e *CapacityError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("event has reached maximum number of participants (%d)", e.Limit)
	}
	return fmt.Sprintf("%s capacity exceeded: current %d + %d = %d > %d",
		e.Role, e.Current, e.Adding, e.Current+e.Adding, e.Limit)
}

// Overflow returns how many slots the rejected insertion was over the limit
func (e *CapacityError) Overflow() int {
	return e.Current + e.Adding - e.Limit
}
