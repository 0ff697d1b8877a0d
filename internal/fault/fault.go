package fault

import "errors"

// Error kinds. Match them with errors.Is.
var (
	// TypeMismatch means the caller passed a value of the wrong shape
	// (non-integer EAN, locale that is not an int, string or Locale).
	TypeMismatch = errors.New("type mismatch")

	// InvalidArgument means the value had the right shape but is not one of
	// the accepted choices.
	InvalidArgument = errors.New("invalid argument")

	// InvalidEANInput means the deposit service rejected the EAN. Callers
	// usually treat it as "not found".
	InvalidEANInput = errors.New("invalid EAN input")

	// ServiceProtocol means the service page or response no longer has the
	// expected shape.
	ServiceProtocol = errors.New("service protocol error")
)

// Error carries one of the kinds above together with a user-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// New returns an Error of the given kind with message as its text.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error of the given kind that also wraps cause.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind sentinel carried by err, or nil when err is not
// (and does not wrap) an *Error.
func KindOf(err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return nil
}
