package meter

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when a realtime message is not valid JSON.
var ErrMalformedPayload = errors.New("malformed payload")

// ValidationError reports a realtime message that is valid JSON but does not
// carry the expected fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid payload: %s", e.Reason)
	}
	return fmt.Sprintf("invalid payload: %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
