package extract

import (
	"errors"
	"fmt"
)

// FailureKind distinguishes why a message produced no listing.
type FailureKind int

const (
	// StructuralMismatch means the expected field layout was not found
	// or a required field was empty.
	StructuralMismatch FailureKind = iota + 1

	// NumericConversion means the layout matched but the mileage text
	// is not a plain non-negative number.
	NumericConversion
)

func (k FailureKind) String() string {
	switch k {
	case StructuralMismatch:
		return "structural mismatch"
	case NumericConversion:
		return "numeric conversion"
	default:
		return "unknown failure"
	}
}

// ParseError reports a per-message extraction failure.
type ParseError struct {
	Kind FailureKind

	// Template names the body grammar that was tried ("plain", "html").
	Template string

	// Field is the offending field, when one can be named.
	Field string

	// Value is the raw text that failed numeric conversion.
	Value string

	Message string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s (%s)", e.Kind, e.Template)
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func structuralError(template, field, message string) *ParseError {
	return &ParseError{
		Kind:     StructuralMismatch,
		Template: template,
		Field:    field,
		Message:  message,
	}
}

// IsStructural reports whether err (or any error in its chain) is a
// structural ParseError.
func IsStructural(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == StructuralMismatch
}

// IsNumericConversion reports whether err (or any error in its chain) is
// a numeric-conversion ParseError.
func IsNumericConversion(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == NumericConversion
}
