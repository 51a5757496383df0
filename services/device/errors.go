package device

import (
	"errors"
	"fmt"
)

// ValidationError rejects a write before any network call when a required
// identifier is missing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field for device registration: %s", e.Field)
}

// IsValidationError reports whether err is a pre-write validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
