package allocation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nexran/nexran/internal/domain/slice"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	ErrInvalid       = errors.New("invalid request")
)

// Error is a northbound failure: a kind for status mapping plus the messages
// shown to the caller.
type Error struct {
	Kind     error
	Messages []string
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return e.Kind.Error()
	}
	return strings.Join(e.Messages, "; ")
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Messages: []string{fmt.Sprintf(format, args...)}}
}

func notFound(resource, name string) *Error {
	return newError(ErrNotFound, "%s %q not found", resource, name)
}

func invalid(err error) *Error {
	var verr *slice.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: ErrInvalid, Messages: append([]string(nil), verr.Problems...)}
	}
	return &Error{Kind: ErrInvalid, Messages: []string{err.Error()}}
}
