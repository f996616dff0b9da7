package app

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrNotFound classifies errors for rows that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden classifies errors for rows the caller does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid classifies input validation failures.
	ErrInvalid = errors.New("invalid input")
	// ErrFailed classifies unexpected storage faults.
	ErrFailed = errors.New("operation failed")
)

// Error is a business-rule failure carrying the message shown to API callers.
// Kind is one of the sentinel errors above; Cause, if set, is never shown.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// Message returns the caller-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func notFound(noun string) error {
	return &Error{Kind: ErrNotFound, Message: capitalize(noun) + " not found"}
}

// forbidden builds the ownership error, e.g. "You can't edit a measure need
// that you dont't own". The spelling matches what existing clients match on.
func forbidden(verb, noun string) error {
	return &Error{Kind: ErrForbidden, Message: "You can't " + verb + " " + noun + " that you dont't own"}
}

func invalid(msg string) error {
	return &Error{Kind: ErrInvalid, Message: msg}
}

func failed(msg string, cause error) error {
	return &Error{Kind: ErrFailed, Message: msg, Cause: cause}
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func plural(noun string) string {
	if strings.HasSuffix(noun, "s") {
		return noun
	}
	return noun + "s"
}
