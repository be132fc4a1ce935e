package program

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind classifies program failures.
type ErrorKind string

const (
	// KindValidation marks input of the wrong shape: missing conference or
	// program, unknown format, bad day or timezone.
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	// KindAsset marks a logo or other external asset that could not be
	// loaded. Renderers log it and draw a fallback.
	KindAsset ErrorKind = "asset"
	// KindRender marks a failure while producing document bytes.
	KindRender   ErrorKind = "render"
	KindTimeout  ErrorKind = "timeout"
	KindCanceled ErrorKind = "canceled"
	KindInternal ErrorKind = "internal"
	KindNotImpl  ErrorKind = "not_implemented"
)

// ProgramError wraps errors with a kind.
type ProgramError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ProgramError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ProgramError) Unwrap() error {
	return e.Err
}

// NewError creates a new program error.
func NewError(kind ErrorKind, msg string, err error) *ProgramError {
	return &ProgramError{Kind: kind, Msg: msg, Err: err}
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var programErr *ProgramError
	if errors.As(err, &programErr) && programErr.Msg != "" {
		msg = programErr.Msg
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindAsset:
		return errorslib.New(msg, errorslib.CategoryExternal).WithTextCode("asset_unavailable")
	case KindRender:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("render_failed")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its program error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var programErr *ProgramError
	if errors.As(err, &programErr) {
		return programErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}
