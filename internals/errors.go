package internals

import "errors"

// ErrNotFound marks a mutation that referenced a trip or event that does
// not exist (or does not belong to the trip). The whole mutation is rolled
// back when it occurs inside a batch.
var ErrNotFound = errors.New("not found")

// ValidationError marks a malformed payload. Nothing is applied when it is
// returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
