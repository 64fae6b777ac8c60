package upstream

import "fmt"

// Error is the normalized form of a failed platform API call. Status is zero
// for transport-level failures. The wrapped cause, when present, is one of the
// domain sentinel errors so callers can branch with errors.Is.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream: %s", e.Message)
	}
	return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}
