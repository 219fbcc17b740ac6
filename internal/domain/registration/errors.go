package registration

import "fmt"

// The failure kinds surfaced by this package. Handlers map each kind to
// one stable HTTP status; message text names the offending resource and
// never echoes storage internals.

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateError reports a resource, registration, or waitlist entry
// that already exists.
type DuplicateError struct {
	Resource string
	Message  string
}

func (e *DuplicateError) Error() string { return e.Message }

// NotFoundError reports a referenced user, event, or registration that
// does not exist.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string { return e.Message }

// CapacityError reports a register attempt against a full event with no
// waitlist.
type CapacityError struct {
	EventID string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Event %s is full and has no waitlist", e.EventID)
}

// RegistrationError wraps an unexpected storage failure on the
// registration path.
type RegistrationError struct {
	Op  string
	Err error
}

func (e *RegistrationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *RegistrationError) Unwrap() error { return e.Err }
