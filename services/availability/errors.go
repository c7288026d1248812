package availability

import "fmt"

// Error codes for availability writes. Validation codes mean the caller sent
// a malformed pattern; conflict codes mean the state already disagrees.
const (
	CodeInvalidTimeRange     = "InvalidTimeRange"
	CodeInvalidSlotOrdering  = "InvalidSlotOrdering"
	CodeDuplicateSpecialDate = "DuplicateSpecialDate"
)

// AvailabilityError carries the code and the offending field.
type AvailabilityError struct {
	Code     string
	Field    string
	Message  string
	Conflict bool
}

func (e *AvailabilityError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newValidationError(code, field, msg string) error {
	return &AvailabilityError{Code: code, Field: field, Message: msg}
}
