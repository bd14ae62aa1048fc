// Package errs defines the sentinel errors raised by the codec and the
// stable-kind wrapper used to attach positional detail to them.
package errs

import "errors"

// Sentinel errors. Callers should compare against these with errors.Is,
// not against the wrapped DecodeError directly.
var (
	// ErrMalformedHeader is returned when a header byte does not match
	// any of the length/type schemes in section 4.1 of the format.
	ErrMalformedHeader = errors.New("vcodec: malformed header byte")

	// ErrUnknownSequenceType is returned when a homogeneous sequence
	// header names a type code with no registered decoder.
	ErrUnknownSequenceType = errors.New("vcodec: illegal datatype in array")

	// ErrUserTypeNotRegistered is returned when the default decoder's
	// class name has no matching registry.Constructor.
	ErrUserTypeNotRegistered = errors.New("vcodec: user-defined type not registered")

	// ErrUserTypeConstruction is returned when a registered constructor
	// fails to build a value from its lexical payload.
	ErrUserTypeConstruction = errors.New("vcodec: user-defined type construction failed")

	// ErrTruncatedRead is returned by pagestore.Reader implementations
	// (including SliceReader) when a read runs past the available data.
	ErrTruncatedRead = errors.New("vcodec: truncated read")

	// ErrInvalidUserDefinedPayload is returned when the default decoder
	// cannot split a "class_name payload" string on its first space.
	ErrInvalidUserDefinedPayload = errors.New("vcodec: invalid user-defined literal")

	// ErrRegistryHashCollision is the error registry.Register panics with
	// when two distinct class names hash to the same registry key.
	ErrRegistryHashCollision = errors.New("vcodec: registry hash collision")
)

// Kind identifies which of the three documented failure classes a
// DecodeError belongs to, independent of locale-specific message text.
type Kind uint8

const (
	// KindMalformedHeader is failure kind 1: an undispatchable header byte.
	KindMalformedHeader Kind = iota
	// KindUnknownType is failure kind 2: an unknown type code inside a
	// homogeneous sequence header.
	KindUnknownType
	// KindUserType is failure kind 3: user-defined instantiation failure.
	KindUserType
)

func (k Kind) String() string {
	switch k {
	case KindMalformedHeader:
		return "malformed_header"
	case KindUnknownType:
		return "unknown_type"
	case KindUserType:
		return "user_type"
	default:
		return "unknown"
	}
}

// DecodeError carries a stable Kind tag alongside the wrapped sentinel,
// so callers can branch on Kind without parsing message text while still
// using errors.Is/errors.As against the sentinel.
type DecodeError struct {
	Kind Kind
	Pos  int64
	err  error
}

// NewDecodeError builds a DecodeError wrapping err, tagged with kind and
// the byte position at which the failure was detected.
func NewDecodeError(kind Kind, pos int64, err error) *DecodeError {
	return &DecodeError{Kind: kind, Pos: pos, err: err}
}

func (e *DecodeError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the wrapped sentinel for errors.Is/errors.As.
func (e *DecodeError) Unwrap() error {
	return e.err
}
