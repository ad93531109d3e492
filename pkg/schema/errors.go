package schema

import (
	"errors"
	"fmt"

	"github.com/aretw0/weave/pkg/socket"
)

// ValidationError reports one socket whose wiring was rejected.
type ValidationError struct {
	Node     string      // Node id, filled in by the host
	Socket   string      // Input name
	Declared socket.Type // What the node accepts
	Actual   socket.Type // What is wired in
	Reason   string      // Set when the failure is not a type mismatch
}

func (e *ValidationError) Error() string {
	prefix := fmt.Sprintf("socket %q", e.Socket)
	if e.Node != "" {
		prefix = fmt.Sprintf("node %q: %s", e.Node, prefix)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Reason)
	}
	return fmt.Sprintf("%s: invalid type %s (expected %s)", prefix, e.Actual, e.Declared)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// Join returns nil for no errors, the error itself for one, and an
// AggregateError otherwise. Nested aggregates are flattened.
func Join(errs ...error) error {
	var flat []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if nested := ValidationErrors(err); nested != nil {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &AggregateError{Errors: flat}
}
