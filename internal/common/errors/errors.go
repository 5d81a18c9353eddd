package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeReportParseFailed  ErrorCode = "REPORT_PARSE_FAILED"
	ErrCodeReportInvalid      ErrorCode = "REPORT_VALIDATION_FAILED"
	ErrCodeEmptyScanResult    ErrorCode = "EMPTY_SCAN_RESULT"
	ErrCodeScanFailed         ErrorCode = "SCAN_FAILED"
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendTimeout     ErrorCode = "BACKEND_TIMEOUT"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeStorageFailed      ErrorCode = "STORAGE_FAILED"
	ErrCodeEnvelopeMismatch   ErrorCode = "ENVELOPE_USER_MISMATCH"
	ErrCodeEnvelopeNotFound   ErrorCode = "ENVELOPE_NOT_FOUND"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// KnownCodes lists every code a worker may throw.
func KnownCodes() []ErrorCode {
	return []ErrorCode{
		ErrCodeInvalidInput, ErrCodeReportParseFailed, ErrCodeReportInvalid,
		ErrCodeEmptyScanResult, ErrCodeScanFailed, ErrCodeBackendUnavailable,
		ErrCodeBackendTimeout, ErrCodeUnauthorized, ErrCodeStorageFailed,
		ErrCodeEnvelopeMismatch, ErrCodeEnvelopeNotFound, ErrCodeInternal,
	}
}

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError is the shape thrown back to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewReportParseFailedError carries the JSON decoder message so it can be
// shown to whoever pasted the report.
func NewReportParseFailedError(err error) *StandardError {
	return newError(ErrCodeReportParseFailed, "Report JSON could not be parsed", err.Error(), false)
}

func NewReportInvalidError(details string) *StandardError {
	return newError(ErrCodeReportInvalid, "Report failed dashboard validation", details, false)
}

func NewEmptyScanResultError() *StandardError {
	return newError(ErrCodeEmptyScanResult, "Scan produced no text to analyse", "", false)
}

// NewScanFailedError wraps a non-2xx or ok:false backend reply.
func NewScanFailedError(status int, detail string) *StandardError {
	e := newError(ErrCodeScanFailed, "Scan request failed", detail, status >= 500)
	e.Metadata = map[string]interface{}{"status": status}
	return e
}

func NewBackendUnavailableError(err error) *StandardError {
	return newError(ErrCodeBackendUnavailable, "Backend unreachable", err.Error(), true)
}

func NewBackendTimeoutError(err error) *StandardError {
	return newError(ErrCodeBackendTimeout, "Backend request timed out", err.Error(), true)
}

func NewUnauthorizedError(detail string) *StandardError {
	return newError(ErrCodeUnauthorized, "Not authorised", detail, false)
}

func NewStorageFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeStorageFailed, "Storage operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewEnvelopeMismatchError(envelopeUser, activeUser string) *StandardError {
	return newError(ErrCodeEnvelopeMismatch, "Stored envelope belongs to another user",
		fmt.Sprintf("envelope user: %q, active user: %q", envelopeUser, activeUser), false)
}

func NewEnvelopeNotFoundError(userID string) *StandardError {
	return newError(ErrCodeEnvelopeNotFound, "No stored envelope", fmt.Sprintf("userId: %q", userID), false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:       "INVALID_INPUT",
	ErrCodeReportParseFailed:  "REPORT_PARSE_FAILED",
	ErrCodeReportInvalid:      "REPORT_VALIDATION_FAILED",
	ErrCodeEmptyScanResult:    "EMPTY_SCAN_RESULT",
	ErrCodeScanFailed:         "SCAN_FAILED",
	ErrCodeBackendUnavailable: "BACKEND_UNAVAILABLE",
	ErrCodeBackendTimeout:     "BACKEND_TIMEOUT",
	ErrCodeUnauthorized:       "UNAUTHORIZED",
	ErrCodeStorageFailed:      "STORAGE_FAILED",
	ErrCodeEnvelopeMismatch:   "ENVELOPE_USER_MISMATCH",
	ErrCodeEnvelopeNotFound:   "ENVELOPE_NOT_FOUND",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageFailed, ErrCodeBackendUnavailable:
		return 3
	case ErrCodeBackendTimeout:
		return 2
	case ErrCodeScanFailed:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "REPORT") || strings.Contains(codeStr, "INPUT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SCAN") || strings.HasPrefix(codeStr, "BACKEND"):
		return "BACKEND"
	case strings.Contains(codeStr, "STORAGE") || strings.HasPrefix(codeStr, "ENVELOPE"):
		return "STORAGE"
	case codeStr == string(ErrCodeUnauthorized):
		return "AUTH"
	default:
		return "OTHER"
	}
}
