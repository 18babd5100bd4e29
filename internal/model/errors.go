package model

import "fmt"

// ValidationError reports a lead that is missing a required field. It is a
// data error: callers must not retry it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid lead: %s: %s", e.Field, e.Reason)
}
