package flibusta

import (
	"errors"
	"fmt"
)

// TransportError is returned when a request fails, either because the site
// could not be reached or because it responded with a non-success status.
type TransportError struct {
	URL        string
	StatusCode int   // Zero if no response was received
	Err        error // Underlying error, if any
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("could not fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if the error was caused by a failed request.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
