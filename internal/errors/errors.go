// Package errors defines the pipeline-level error types of go-carbon-dex.
//
// Layout decoding failures are *layout.DecodeError values. Everything around
// them (datasources, the pipeline, processors, configuration) reports a
// CarbonError, and FromDecodeError lifts a decode failure into one when it
// has to cross that boundary.
package errors

import (
	"errors"
	"fmt"

	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// Error codes for the carbon-dex framework.
const (
	ErrCodeDatasource                = "DATASOURCE_ERROR"
	ErrCodePipeline                  = "PIPELINE_ERROR"
	ErrCodeProcessor                 = "PROCESSOR_ERROR"
	ErrCodeAccountDecode             = "ACCOUNT_DECODE_ERROR"
	ErrCodeConfig                    = "CONFIG_ERROR"
	ErrCodeRPC                       = "RPC_ERROR"
	ErrCodeInvalidInput              = "INVALID_INPUT"
	ErrCodeMissingUpdateType         = "MISSING_UPDATE_TYPE"
	ErrCodeFailedToConsumeDatasource = "FAILED_TO_CONSUME_DATASOURCE"
	ErrCodeCustom                    = "CUSTOM"
	ErrCodeContextCanceled           = "CONTEXT_CANCELED"
	ErrCodeChannelClosed             = "CHANNEL_CLOSED"
)

// CarbonError represents an error in the carbon-dex framework.
type CarbonError struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *CarbonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *CarbonError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target.
func (e *CarbonError) Is(target error) bool {
	t, ok := target.(*CarbonError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error.
func (e *CarbonError) WithCause(cause error) *CarbonError {
	e.Cause = cause
	return e
}

// WithDetails adds details to the error.
func (e *CarbonError) WithDetails(details map[string]any) *CarbonError {
	e.Details = details
	return e
}

// NewError creates a new CarbonError.
func NewError(code, message string) *CarbonError {
	return &CarbonError{
		Code:    code,
		Message: message,
	}
}

// Pre-defined errors for common error cases.
var (
	// ErrMissingUpdateType is returned when a datasource emits an update no pipe accepts.
	ErrMissingUpdateType = NewError(ErrCodeMissingUpdateType, "missing update type in datasource")

	// ErrAccountDecode matches any error produced by FromDecodeError.
	ErrAccountDecode = NewError(ErrCodeAccountDecode, "account decode failed")

	// ErrContextCanceled is returned when the context is canceled.
	ErrContextCanceled = NewError(ErrCodeContextCanceled, "context canceled")

	// ErrChannelClosed is returned when a channel is closed unexpectedly.
	ErrChannelClosed = NewError(ErrCodeChannelClosed, "channel closed")
)

// Datasource creates an error for a failing datasource.
func Datasource(name string, cause error) *CarbonError {
	return NewError(ErrCodeDatasource, fmt.Sprintf("datasource %s failed", name)).WithCause(cause)
}

// Pipeline creates an error for a pipeline failure.
func Pipeline(message string, cause error) *CarbonError {
	return NewError(ErrCodePipeline, message).WithCause(cause)
}

// Processor creates an error for a failing processor.
func Processor(what string, cause error) *CarbonError {
	return NewError(ErrCodeProcessor, fmt.Sprintf("failed to process %s", what)).WithCause(cause)
}

// Config creates an error for invalid or unreadable configuration.
func Config(message string, cause error) *CarbonError {
	return NewError(ErrCodeConfig, message).WithCause(cause)
}

// RPC creates an error for a failed RPC call.
func RPC(method string, cause error) *CarbonError {
	return NewError(ErrCodeRPC, fmt.Sprintf("rpc %s failed", method)).WithCause(cause)
}

// InvalidInput creates an error for malformed user input.
func InvalidInput(format string, args ...any) *CarbonError {
	return NewError(ErrCodeInvalidInput, fmt.Sprintf(format, args...))
}

// FailedToConsumeDatasource creates an error for datasource consumption failure.
func FailedToConsumeDatasource(reason string) *CarbonError {
	return NewError(ErrCodeFailedToConsumeDatasource, fmt.Sprintf("failed to consume datasource: %s", reason))
}

// Custom creates a custom error with the given message.
func Custom(message string) *CarbonError {
	return NewError(ErrCodeCustom, message)
}

// FromDecodeError wraps a layout decode failure as an ACCOUNT_DECODE_ERROR.
// The decode error stays reachable through errors.As. Errors that are not
// decode failures are wrapped without details.
func FromDecodeError(err error) *CarbonError {
	if err == nil {
		return nil
	}

	ce := NewError(ErrCodeAccountDecode, "account decode failed").WithCause(err)

	var de *layout.DecodeError
	if !errors.As(err, &de) {
		return ce
	}

	details := map[string]any{
		"kind":   string(de.Kind),
		"actual": de.Actual,
	}
	switch de.Kind {
	case layout.KindLengthMismatch:
		details["schema"] = de.Schema.String()
		details["expected"] = de.Expected
		details["at_least"] = de.AtLeast
	case layout.KindTruncatedField:
		details["schema"] = de.Schema.String()
		details["offset"] = de.Offset
		details["width"] = de.Width
	case layout.KindUnknownShape:
		details["owner"] = de.Owner.String()
	}
	return ce.WithDetails(details)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
