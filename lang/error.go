package lang

import (
	"errors"
	"log/slog"
)

var (
	ErrMaxDepthExceeded  = NewError("maximum resolution depth exceeded")
	ErrScopeReleased     = NewError("scope used after release")
	ErrRegistryConsumed  = NewError("placeholder registry already expanded")
	ErrCallable          = NewError("callable value failed")
	ErrInvalidFormat     = NewError("invalid format specifier")
	ErrInvalidLocale     = NewError("invalid locale")
	ErrInvalidExpression = NewError("invalid expression")
	ErrWriteOutput       = NewError("failed to write output")
)

// Error is an error carrying structured attributes for logging.
//
// Errors are created as package-level sentinels with [NewError] and refined
// with [Error.Wrap] and [Error.With], which return new values. Every error
// derived from a sentinel matches it under [errors.Is].
type Error struct {
	msg   string
	kind  *Error // sentinel this error derives from; nil for a sentinel
	cause error
	attrs []slog.Attr
}

// NewError returns a new sentinel.
func NewError(msg string) *Error { return &Error{msg: msg} }

// WrapError returns the first *Error in the chain of err, or an anonymous
// *Error wrapping err if there is none.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{cause: err}
}

func (e *Error) sentinel() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

func (e *Error) derive() *Error {
	return &Error{msg: e.msg, kind: e.sentinel(), cause: e.cause, attrs: e.attrs}
}

func (e *Error) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether e and target derive from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.msg != "" && e.sentinel() == t.sentinel()
}

// Wrap returns an error derived from e with cause err.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.cause = err

	return d
}

// With returns an error derived from e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...)

	return d
}

// Attrs returns the attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// LogValue groups the message, cause, and attributes of e.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}
