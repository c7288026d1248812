package review

import "fmt"

// Error codes for review submission and mutation.
const (
	CodeInvalidRating   = "InvalidRating"
	CodeMissingTarget   = "MissingTarget"
	CodeDuplicateReview = "DuplicateReview"
	CodeForbidden       = "Forbidden"
)

// ReviewError carries the failure code and the offending field.
type ReviewError struct {
	Code     string
	Field    string
	Message  string
	Conflict bool
}

func (e *ReviewError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
