// Package errs defines the error taxonomy shared by every kernel in dfkernel.
package errs

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
)

// Kind is one of the failure categories fixed by the kernel contract.
// Kernels never panic across their public boundary; they report one of
// these instead.
type Kind string

const (
	InvalidArgument  Kind = "InvalidArgument"
	TypeMismatch     Kind = "TypeMismatch"
	TypeNotSupported Kind = "TypeNotSupported"
	OutOfRange       Kind = "OutOfRange"
	OutputTooLarge   Kind = "OutputTooLarge"
	AllocationFailure Kind = "AllocationFailure"
	CapacityExceeded Kind = "CapacityExceeded"
	InternalError    Kind = "InternalError"
)

// Loc is the source location of the check that failed.
type Loc struct {
	File string
	Line int
}

// Error is the concrete error type returned by every exported kernel.
// It is self-contained: kind, message, and the location of the failed
// check, with no external log written on its behalf.
type Error struct {
	Kind    Kind
	Message string
	Loc     Loc
}

func (e *Error) Error() string {
	if e.Loc.File == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s:%d)", e.Kind, e.Message, e.Loc.File, e.Loc.Line)
}

// New builds an Error, capturing the caller's frame as the source location.
func New(kind Kind, format string, args ...interface{}) *Error {
	_, file, line, ok := runtime.Caller(1)
	loc := Loc{}
	if ok {
		loc = Loc{File: file, Line: line}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Loc: loc}
}

// Allocation builds an AllocationFailure with a human-readable size in the
// message, e.g. "column buffer: failed to allocate 64 MB".
func Allocation(nbytes int64, format string, args ...interface{}) *Error {
	_, file, line, ok := runtime.Caller(1)
	loc := Loc{}
	if ok {
		loc = Loc{File: file, Line: line}
	}
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    AllocationFailure,
		Message: fmt.Sprintf("%s: failed to allocate %s", msg, humanize.Bytes(uint64(nbytes))),
		Loc:     loc,
	}
}

// Is reports whether err is a dfkernel error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
