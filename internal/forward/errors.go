package forward

import "fmt"

// MethodError reports a method outside the supported set. Maps to 405 at the
// boundary.
type MethodError struct {
	Method string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("method %s not supported", e.Method)
}

// TimeoutError reports an outbound call exceeding the configured timeout.
// Maps to 504 at the boundary.
type TimeoutError struct {
	URL   string
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend timeout calling %s: %v", e.URL, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// UnreachableError reports a transport-level failure (connection refused, DNS
// failure, reset). Maps to 502 at the boundary, carrying the cause.
type UnreachableError struct {
	URL   string
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("backend error calling %s: %v", e.URL, e.Cause)
}

func (e *UnreachableError) Unwrap() error { return e.Cause }
