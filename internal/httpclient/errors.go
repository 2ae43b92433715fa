package httpclient

import "fmt"

// RetryError is returned when the retry budget is exhausted.
type RetryError struct {
	StatusCode int
	Attempts   int
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("HTTP %d after %d attempts", e.StatusCode, e.Attempts)
}
