package vm

import (
	"errors"
	"fmt"
)

// errBranchTaken is returned by the non-delayed BT/BF exec functions to
// tell the step loop that PC has already been set to the branch target —
// the loop's normal IncrementPC must be skipped for this instruction.
var errBranchTaken = errors.New("branch taken")

// ErrorKind categorizes CORE failures into a small taxonomy, so callers
// can branch on Kind without string matching.
type ErrorKind int

const (
	ErrIntegrity ErrorKind = iota
	ErrFailedAlloc
	ErrOverflow
	ErrAddress
	ErrTlbMiss
	ErrTlbProtection
	ErrInvalidParam
	ErrUnrecognizedPattern
	ErrExternalIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIntegrity:
		return "integrity"
	case ErrFailedAlloc:
		return "failed-alloc"
	case ErrOverflow:
		return "overflow"
	case ErrAddress:
		return "address-error"
	case ErrTlbMiss:
		return "tlb-miss"
	case ErrTlbProtection:
		return "tlb-protection"
	case ErrInvalidParam:
		return "invalid-param"
	case ErrUnrecognizedPattern:
		return "unrecognized-pattern"
	case ErrExternalIO:
		return "external-io-failure"
	default:
		return "unknown"
	}
}

// CoreError is the CORE's uniform error type. Memory, cache, and interpreter
// failures all surface as a CoreError so the interpreter's step loop can
// convert them into an architectural exception without caring which
// collaborator raised it — the caller never needs to know whether a
// failure was raised by the cache or by the external collaborator.
type CoreError struct {
	Kind    ErrorKind
	Message string
	Wrapped error
}

func (e *CoreError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Wrapped
}

// NewError builds a CoreError with no wrapped cause.
func NewError(kind ErrorKind, format string, args ...interface{}) *CoreError {
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an existing error with a CORE error kind and context. If
// err is already a *CoreError it passes through unchanged, never
// double-wrapping.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *CoreError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CoreError); ok {
		return ce
	}
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// AddressError reports an unaligned access or a forbidden area access.
func AddressError(addr uint32, width int, reason string) *CoreError {
	return NewError(ErrAddress, "address 0x%08X width %d: %s", addr, width, reason)
}

// InvalidParam reports an out-of-range API argument.
func InvalidParam(format string, args ...interface{}) *CoreError {
	return NewError(ErrInvalidParam, format, args...)
}
