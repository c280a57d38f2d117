package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryDocument      ErrorCategory = "document"
	CategoryDispatch      ErrorCategory = "dispatch"
	CategoryLayout        ErrorCategory = "layout"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeWriteFailed    ErrorCode = "write_failed"

	// Document errors
	CodeNotExtractable ErrorCode = "not_extractable"
	CodePageUnreadable ErrorCode = "page_unreadable"

	// Dispatch errors
	CodeNoMatchingFormat ErrorCode = "no_matching_format"
	CodeAmbiguousFormat  ErrorCode = "ambiguous_format"
	CodeInvalidPeriod    ErrorCode = "invalid_period"

	// Layout errors
	CodeLookaheadAnomaly   ErrorCode = "lookahead_anomaly"
	CodeMissingMerchantRow ErrorCode = "missing_merchant_row"

	// Parse errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeOutOfRange   ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ExtractorError is the base error type for all application errors
type ExtractorError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ExtractorError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ExtractorError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ExtractorError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation, CategoryLayout:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryDocument, CategoryDispatch:
		return 5
	case CategoryInternal:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ExtractorError) WithContext(key string, value interface{}) *ExtractorError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ExtractorError) WithSuggestion(suggestion string) *ExtractorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ExtractorError
func New(category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	return &ExtractorError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ExtractorError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err == nil {
		return nil
	}

	return &ExtractorError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newOrWrap(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file could not be read as a PDF document: %s", path)
		suggestion = "verify the file is a complete, unencrypted PDF statement"
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write output: %s", path)
		suggestion = "check that the output location is writable"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return newOrWrap(err, CategoryFile, code, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// DocumentError creates an error for a document the layout engine refuses to process
func DocumentError(code ErrorCode, file string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeNotExtractable:
		message = fmt.Sprintf("document not extractable: %s", file)
		suggestion = "the document's permissions forbid text extraction; download an unrestricted copy"
	case CodePageUnreadable:
		message = fmt.Sprintf("page content could not be decoded: %s", file)
		suggestion = "the document may be scanned or use unsupported font encodings"
	default:
		message = fmt.Sprintf("document error: %s", file)
		suggestion = "check the document and try again"
	}

	return newOrWrap(err, CategoryDocument, code, message).
		WithSuggestion(suggestion).
		WithContext("file", file)
}

// DispatchError creates an error for a file name that selects no single statement format
func DispatchError(code ErrorCode, file string, candidates []string) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeNoMatchingFormat:
		message = fmt.Sprintf("no statement format matches file name: %s", file)
		suggestion = "rename the file to one of the known templates (see 'extractor formats')"
	case CodeAmbiguousFormat:
		message = fmt.Sprintf("file name %s matches more than one statement format: %s",
			file, strings.Join(candidates, ", "))
		suggestion = "rename the file so that exactly one format template matches"
	case CodeInvalidPeriod:
		message = fmt.Sprintf("statement period in file name could not be parsed: %s", file)
		suggestion = "check the date portion of the file name"
	default:
		message = fmt.Sprintf("format selection failed for file: %s", file)
		suggestion = "check the file name against the known templates"
	}

	result := New(CategoryDispatch, code, message).
		WithSuggestion(suggestion).
		WithContext("file", file)
	if len(candidates) > 0 {
		result.WithContext("candidates", candidates)
	}
	return result
}

// LayoutError creates an error for a row whose surrounding layout cannot be trusted
func LayoutError(code ErrorCode, key float64, gap float64) *ExtractorError {
	var message string

	switch code {
	case CodeLookaheadAnomaly:
		message = fmt.Sprintf("merchant row too far from transaction row at %.2f (gap %.2f)", key, gap)
	case CodeMissingMerchantRow:
		message = fmt.Sprintf("no merchant row follows transaction row at %.2f", key)
	default:
		message = fmt.Sprintf("layout anomaly at %.2f", key)
	}

	return New(CategoryLayout, code, message).
		WithSuggestion("the row was skipped; adjust lookahead-threshold if the statement layout is looser").
		WithContext("row_key", key).
		WithContext("gap", gap)
}

// ParseError creates a parsing-related error for a labeled row value
func ParseError(code ErrorCode, label string, value string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in %s fragment: '%s'", label, value)
		suggestion = "amounts must be decimal numbers with two fractional digits (e.g. '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in %s fragment: '%s'", label, value)
		suggestion = "dates must be MM/DD or MM/DD/YY and name a real calendar day"
	default:
		message = fmt.Sprintf("parse error in %s fragment: '%s'", label, value)
		suggestion = "check the statement text at this row"
	}

	return newOrWrap(err, CategoryParse, code, message).
		WithSuggestion(suggestion).
		WithContext("label", label).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return newOrWrap(err, CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	return newOrWrap(err, CategoryConfiguration, code, message).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ExtractorError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	return newOrWrap(err, CategoryInternal, code, message).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*ExtractorError     `json:"-"`
	SampleErrors []*ExtractorError     `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*ExtractorError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if len(errs) == 0 {
		summary.Errors = []*ExtractorError{}
		return summary
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}
	sort.Strings(categories)

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	return es.ByCategory[category] > 0
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	return es.ByCode[code] > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// AsExtractorError extracts an ExtractorError from an error chain
func AsExtractorError(err error) (*ExtractorError, bool) {
	var extractorErr *ExtractorError
	if errors.As(err, &extractorErr) {
		return extractorErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code ErrorCode) bool {
	extractorErr, ok := AsExtractorError(err)
	return ok && extractorErr.Code == code
}

// WrapIfNeeded wraps an error if it's not already an ExtractorError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err == nil {
		return nil
	}

	if extractorErr, ok := AsExtractorError(err); ok {
		return extractorErr
	}

	return Wrap(err, category, code, message)
}
