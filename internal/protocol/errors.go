package protocol

import "fmt"

// UnrecognizedKind names the discriminant that failed to decode.
type UnrecognizedKind string

const (
	UnrecognizedMessage    UnrecognizedKind = "message type"
	UnrecognizedStatusType UnrecognizedKind = "status sub-type"
)

// UnrecognizedError reports an inbound buffer the codec does not understand.
// It is non-fatal: the session logs it and keeps listening.
type UnrecognizedError struct {
	Kind  UnrecognizedKind
	Value byte
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("unrecognized %s 0x%02x", e.Kind, e.Value)
}

// Is allows errors.Is to match any UnrecognizedError, or one with the same
// Kind when the target specifies it.
func (e *UnrecognizedError) Is(target error) bool {
	t, ok := target.(*UnrecognizedError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// ErrUnrecognized matches any UnrecognizedError via errors.Is.
var ErrUnrecognized = &UnrecognizedError{}

// TruncatedError reports a notification buffer too short for its declared
// message type.
type TruncatedError struct {
	Kind UnrecognizedKind
	Len  int
	Min  int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated %s buffer: %d bytes, need at least %d", e.Kind, e.Len, e.Min)
}
