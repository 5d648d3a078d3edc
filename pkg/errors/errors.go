package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Rule definition errors, raised while a workflow is loaded
	ErrDefinition ErrorCode = "DEFINITION"
	ErrPattern    ErrorCode = "PATTERN"

	// Resolution errors, raised while a rule is matched or expanded
	ErrWildcardResolution ErrorCode = "WILDCARD_RESOLUTION"
	ErrInputFunction      ErrorCode = "INPUT_FUNCTION"
	ErrResourceType       ErrorCode = "RESOURCE_TYPE"
	ErrInvalidFile        ErrorCode = "INVALID_FILE"
	ErrNoMatch            ErrorCode = "NO_MATCH"
	ErrAmbiguous          ErrorCode = "AMBIGUOUS"
)

// Detail keys shared by the rule engine
const (
	DetailRule      = "rule"
	DetailWildcards = "wildcards"
	DetailMissing   = "missing"
	DetailFile      = "snakefile"
	DetailLine      = "lineno"
	DetailPath      = "path"
)

// RuleError represents a structured error with code and details
type RuleError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RuleError) Error() string {
	msg := e.Message
	if file, ok := e.Details[DetailFile].(string); ok && file != "" {
		if line, ok := e.Details[DetailLine].(int); ok && line > 0 {
			msg = fmt.Sprintf("%s (%s:%d)", msg, file, line)
		} else {
			msg = fmt.Sprintf("%s (%s)", msg, file)
		}
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuleError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RuleError) Is(target error) bool {
	var targetErr *RuleError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RuleError with the given code and message
func New(code ErrorCode, message string) *RuleError {
	return &RuleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RuleError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RuleError {
	return &RuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RuleError
func Wrap(err error, code ErrorCode, message string) *RuleError {
	if err == nil {
		return nil
	}
	return &RuleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RuleError {
	if err == nil {
		return nil
	}
	return &RuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RuleError) WithDetail(key string, value interface{}) *RuleError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RuleError) WithDetails(details map[string]interface{}) *RuleError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithLocation records the definition file and line the error refers to.
// Empty files and non-positive lines are ignored.
func (e *RuleError) WithLocation(file string, line int) *RuleError {
	if file != "" {
		e.WithDetail(DetailFile, file)
	}
	if line > 0 {
		e.WithDetail(DetailLine, line)
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RuleError
func GetErrorCode(err error) ErrorCode {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RuleError
func GetErrorDetails(err error) map[string]interface{} {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.Details
	}
	return nil
}

// FormatBinding renders a wildcard binding as "a=1, b=2" with sorted keys,
// for messages that must be stable across runs.
func FormatBinding(binding map[string]string) string {
	keys := make([]string, 0, len(binding))
	for k := range binding {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+binding[k])
	}
	return strings.Join(parts, ", ")
}
