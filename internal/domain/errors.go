package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no entity matches the requested id.
var ErrNotFound = errors.New("not found")

// InvalidValueError reports an input outside the legal domain of a value
// object or enum-like field (malformed email, negative amount, unknown
// status). The invalid state is never committed.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}

	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// RuleError reports a structurally valid input rejected by a lifecycle or
// cross-field rule (illegal status transition, converting an unqualified
// lead). Current and Attempted give the caller enough context to explain
// the rejection.
type RuleError struct {
	Op        string
	Current   string
	Attempted string
	Reason    string
}

func (e *RuleError) Error() string {
	msg := e.Op
	if e.Current != "" {
		msg += fmt.Sprintf(": current state %q", e.Current)
	}

	if e.Attempted != "" {
		msg += fmt.Sprintf(", attempted %q", e.Attempted)
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

// IsInvalidValue reports whether err is an InvalidValueError.
func IsInvalidValue(err error) bool {
	var ive *InvalidValueError
	return errors.As(err, &ive)
}

// IsRuleViolation reports whether err is a RuleError.
func IsRuleViolation(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
