package booking

import (
	"fmt"

	"eventra/models"
)

// Error codes for reservation and lifecycle failures.
const (
	CodeOutsideAvailability = "OutsideAvailability"
	CodeSlotConflict        = "SlotConflict"
	CodeInvalidTransition   = "InvalidTransition"
	CodeInvalidWindow       = "InvalidWindow"
)

// BookingError carries the failure code plus, for slot conflicts, the
// committed interval the request collided with so callers can suggest
// alternatives.
type BookingError struct {
	Code     string
	Message  string
	Conflict *models.OpenInterval
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConflict reports whether the error belongs to the conflict category
// ("pick another time") rather than caller validation.
func (e *BookingError) IsConflict() bool {
	return e.Code == CodeSlotConflict || e.Code == CodeOutsideAvailability
}
