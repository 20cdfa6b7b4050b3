package xr

import (
	"errors"
	"fmt"
)

// ErrProtocol matches every ResultError. A protocol failure means the
// session is assumed unusable; the HMD layer does not retry it.
var ErrProtocol = errors.New("xr: runtime call failed")

// Result is a runtime return code. Negative values are failures.
type Result int32

const (
	ResultSuccess                Result = 0
	ResultErrorValidationFailure Result = -1
	ResultErrorRuntimeFailure    Result = -2
	ResultErrorHandleInvalid     Result = -12
	ResultErrorSessionLost       Result = -17
	ResultErrorSizeInsufficient  Result = -11
	ResultErrorTimeInvalid       Result = -30
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "XR_SUCCESS"
	case ResultErrorValidationFailure:
		return "XR_ERROR_VALIDATION_FAILURE"
	case ResultErrorRuntimeFailure:
		return "XR_ERROR_RUNTIME_FAILURE"
	case ResultErrorHandleInvalid:
		return "XR_ERROR_HANDLE_INVALID"
	case ResultErrorSessionLost:
		return "XR_ERROR_SESSION_LOST"
	case ResultErrorSizeInsufficient:
		return "XR_ERROR_SIZE_INSUFFICIENT"
	case ResultErrorTimeInvalid:
		return "XR_ERROR_TIME_INVALID"
	default:
		return fmt.Sprintf("XR_RESULT(%d)", int32(r))
	}
}

// Failed reports whether r is an error code.
func (r Result) Failed() bool { return r < 0 }

// Err wraps a failed result for the named runtime call. It returns nil for
// success codes.
func (r Result) Err(op string) error {
	if !r.Failed() {
		return nil
	}
	return &ResultError{Op: op, Result: r}
}

// ResultError is a failed runtime call.
type ResultError struct {
	Op     string
	Result Result
}

// Error implements the error interface.
func (e *ResultError) Error() string {
	return fmt.Sprintf("xr: %s failed: %s", e.Op, e.Result)
}

// Is makes errors.Is(err, ErrProtocol) true for every ResultError.
func (e *ResultError) Is(target error) bool {
	return target == ErrProtocol
}
