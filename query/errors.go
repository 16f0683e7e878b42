package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vegasq/askdata/schema"
)

// ErrorKind classifies a diagnostic.
type ErrorKind int

const (
	// NoMatch means the text matched no intent, or a matched intent is
	// missing a required parameter.
	NoMatch ErrorKind = iota
	// UnresolvedColumn means a column token did not resolve to exactly one
	// column.
	UnresolvedColumn
	// TypeMismatch means an operation or predicate was applied to a column
	// of an incompatible semantic type.
	TypeMismatch
	// CapabilityUnavailable means the requested method is not available.
	CapabilityUnavailable
	// ConstraintViolation means a parameter is out of range.
	ConstraintViolation
)

func (k ErrorKind) String() string {
	switch k {
	case NoMatch:
		return "NoMatch"
	case UnresolvedColumn:
		return "UnresolvedColumn"
	case TypeMismatch:
		return "TypeMismatch"
	case CapabilityUnavailable:
		return "CapabilityUnavailable"
	case ConstraintViolation:
		return "ConstraintViolation"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a typed diagnostic from matching or validation. It carries
// enough detail for the user to fix the question.
type Error struct {
	Kind   ErrorKind
	Detail string
	// Token is the offending piece of the question, if any.
	Token string
	// Column is the column involved, if any.
	Column string
	// Expected describes what would have been accepted.
	Expected string
	// Alternatives lists close valid options: column names or example
	// phrasings.
	Alternatives []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Detail)
	if e.Expected != "" {
		b.WriteString(" (expected ")
		b.WriteString(e.Expected)
		b.WriteString(")")
	}
	if len(e.Alternatives) > 0 {
		b.WriteString("; did you mean: ")
		b.WriteString(strings.Join(e.Alternatives, ", "))
	}
	return b.String()
}

// Is matches errors of the same kind, so errors.Is(err, &Error{Kind: NoMatch})
// works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Detail == ""
}

// ErrNoMatch creates a NoMatch diagnostic with a formatted detail.
func ErrNoMatch(format string, args ...interface{}) *Error {
	return &Error{Kind: NoMatch, Detail: fmt.Sprintf(format, args...)}
}

// ErrTypeMismatch creates a TypeMismatch diagnostic for column.
func ErrTypeMismatch(column, expected, format string, args ...interface{}) *Error {
	return &Error{Kind: TypeMismatch, Column: column, Expected: expected, Detail: fmt.Sprintf(format, args...)}
}

// ErrConstraint creates a ConstraintViolation diagnostic with a formatted
// detail.
func ErrConstraint(format string, args ...interface{}) *Error {
	return &Error{Kind: ConstraintViolation, Detail: fmt.Sprintf(format, args...)}
}

// ErrCapability creates a CapabilityUnavailable diagnostic with a formatted
// detail.
func ErrCapability(format string, args ...interface{}) *Error {
	return &Error{Kind: CapabilityUnavailable, Detail: fmt.Sprintf(format, args...)}
}

// ErrUnresolved creates an UnresolvedColumn diagnostic for token.
func ErrUnresolved(token string, alternatives []string) *Error {
	return &Error{
		Kind:         UnresolvedColumn,
		Token:        token,
		Detail:       fmt.Sprintf("column %q not found", token),
		Alternatives: alternatives,
	}
}

// fromResolveError converts a resolver failure into a diagnostic.
func fromResolveError(err error) error {
	var rerr *schema.ResolveError
	if !errors.As(err, &rerr) {
		return err
	}
	qerr := ErrUnresolved(rerr.Token, rerr.Suggestions())
	if rerr.IsAmbiguous() {
		qerr.Detail = fmt.Sprintf("column %q is ambiguous", rerr.Token)
	}
	return qerr
}

// KindOf returns the diagnostic kind of err and whether err is a
// diagnostic at all.
func KindOf(err error) (ErrorKind, bool) {
	var qerr *Error
	if errors.As(err, &qerr) {
		return qerr.Kind, true
	}
	return 0, false
}
