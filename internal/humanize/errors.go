package humanize

import "fmt"

// PreconditionError reports invalid input or options passed to the engine.
// The engine never recovers from it; callers decide whether to fall back.
type PreconditionError struct {
	Field   string
	Message string
	Cause   error
}

func (e *PreconditionError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("humanize precondition failed: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("humanize precondition failed: %s", msg)
}

func (e *PreconditionError) Unwrap() error {
	return e.Cause
}
