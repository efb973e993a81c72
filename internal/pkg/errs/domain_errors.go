package errs

import "errors"

// Error taxonomy shared by the command and query sides.
var (
	ErrReservationNotFound = New("reservation not found")
	ErrForbidden           = New("forbidden")
	ErrInvalidState        = New("invalid state")
	ErrInvalidTransition   = New("invalid transition")
	ErrMissingInput        = New("missing input")
	ErrValidation          = New("validation failed")
	ErrUpstreamFailure     = New("upstream failure")
)

// KindError is a specific sentinel that also matches one taxonomy kind.
type KindError struct {
	kind error
	msg  string
}

func NewKind(kind error, msg string) *KindError {
	return &KindError{kind: kind, msg: msg}
}

func (e *KindError) Error() string {
	return e.msg
}

func (e *KindError) Is(target error) bool {
	return target == e.kind
}

func (e *KindError) Kind() error {
	return e.kind
}

// PublicMessage returns the message of the most specific sentinel in err's chain,
// falling back to the taxonomy kind's message.
func PublicMessage(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	for _, kind := range []error{
		ErrReservationNotFound, ErrForbidden, ErrInvalidState, ErrInvalidTransition,
		ErrMissingInput, ErrValidation, ErrUpstreamFailure,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ""
}
