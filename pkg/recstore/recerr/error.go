package recerr

import (
	"errors"
	"fmt"
	"io"
)

// Kind sentinels. Every error produced by the storage engine wraps exactly
// one of them, so callers can branch with errors.Is.
var (
	// ErrHeader marks malformed database header bytes or an unknown level.
	ErrHeader = errors.New("unexpected header")
	// ErrBuffer marks a stream exhausted before a required field was read.
	ErrBuffer = errors.New("unexpected end of data")
	// ErrSubHeader marks an unrecognized sub-record marker or framing.
	ErrSubHeader = errors.New("unexpected sub header")
	// ErrBorrow marks a reference whose target is missing from the index.
	ErrBorrow = errors.New("invalid borrow")
	// ErrCorruption marks a compression envelope that cannot be decoded.
	ErrCorruption = errors.New("invalid format")
	// ErrUnsupported marks an unimplemented or disallowed configuration.
	ErrUnsupported = errors.New("unsupported")
)

var kindNames = map[error]string{
	ErrHeader:      "HeaderError",
	ErrBuffer:      "BufferError",
	ErrSubHeader:   "SubHeaderError",
	ErrBorrow:      "BorrowError",
	ErrCorruption:  "CorruptionError",
	ErrUnsupported: "UnsupportedError",
}

// Error is a storage engine failure. It is unrecoverable for the operation
// in progress.
type Error struct {
	kind  error
	op    string
	msg   string
	cause error
}

// Kind returns the kind sentinel of the error.
func (e *Error) Kind() error { return e.kind }

// Name returns the kind name, e.g. "BorrowError".
func (e *Error) Name() string { return kindNames[e.kind] }

// Op returns the operation the error originated in.
func (e *Error) Op() string { return e.op }

// Message returns the human-readable message.
func (e *Error) Message() string { return e.msg }

// Error renders the error as `<Kind> [<origin>] : <message> (in <operation>)`.
func (e *Error) Error() string {
	s := fmt.Sprintf("%s [%s] : %s (in %s)", e.Name(), e.kind, e.msg, e.op)
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

// Unwrap returns the kind sentinel and the underlying cause, if any.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind error, op string, cause error, format string, args ...any) error {
	return &Error{
		kind:  kind,
		op:    op,
		msg:   fmt.Sprintf(format, args...),
		cause: cause,
	}
}

// Header returns a HeaderError for operation op.
func Header(op, format string, args ...any) error {
	return newError(ErrHeader, op, nil, format, args...)
}

// Buffer returns a BufferError for operation op.
func Buffer(op, format string, args ...any) error {
	return newError(ErrBuffer, op, nil, format, args...)
}

// SubHeader returns a SubHeaderError for operation op.
func SubHeader(op, format string, args ...any) error {
	return newError(ErrSubHeader, op, nil, format, args...)
}

// Borrow returns a BorrowError for operation op.
func Borrow(op, format string, args ...any) error {
	return newError(ErrBorrow, op, nil, format, args...)
}

// Corruption returns a CorruptionError for operation op wrapping cause.
func Corruption(op string, cause error, format string, args ...any) error {
	return newError(ErrCorruption, op, cause, format, args...)
}

// Unsupported returns an UnsupportedError for operation op.
func Unsupported(op, format string, args ...any) error {
	return newError(ErrUnsupported, op, nil, format, args...)
}

// Wrap converts an I/O error met while reading a required field into a
// BufferError when the stream ended early and returns other errors as is.
// CorruptionError is never converted, even if caused by unexpected EOF.
func Wrap(op string, err error, field string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCorruption) {
		return err
	}
	if isEOF(err) {
		return newError(ErrBuffer, op, nil, "stream ended while reading %s", field)
	}
	return fmt.Errorf("read %s: %w", field, err)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
