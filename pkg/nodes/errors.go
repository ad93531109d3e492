package nodes

import "errors"

var (
	// ErrInvalidInput is returned when an input value cannot be used.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDivisionByZero is returned by IntMath for divide and modulo by zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownOperation is returned by IntMath for unsupported operations.
	ErrUnknownOperation = errors.New("unknown operation")
)
