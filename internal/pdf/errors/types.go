package errors

import (
	"fmt"
)

// PDFError describes why a single indirect object was left out of extraction.
// Values are collected, never returned up the pipeline.
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Offset      int64     `json:"offset,omitempty"`
	ObjectNum   int       `json:"object_num,omitempty"`
	Recoverable bool      `json:"recoverable"`
	FilePath    string    `json:"file_path,omitempty"`

	cause error
}

// ErrorType represents the categories of container-level problems
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeMalformedObject
	ErrorTypeInvalidFilter
	ErrorTypeInvalidStream
	ErrorTypeNotApplicable
	ErrorTypeReadFailure
	ErrorTypeWriteFailure
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), e.Message, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeMalformedObject:
		return "MALFORMED_OBJECT"
	case ErrorTypeInvalidFilter:
		return "INVALID_FILTER"
	case ErrorTypeInvalidStream:
		return "INVALID_STREAM"
	case ErrorTypeNotApplicable:
		return "NOT_APPLICABLE"
	case ErrorTypeReadFailure:
		return "READ_FAILURE"
	case ErrorTypeWriteFailure:
		return "WRITE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeNotApplicable, ErrorTypeInvalidFilter:
		// Fonts, images and cover sheets are expected in every file.
		return SeverityInfo
	case ErrorTypeMalformedObject, ErrorTypeInvalidStream:
		return SeverityWarning
	case ErrorTypeReadFailure, ErrorTypeWriteFailure:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether extraction can continue past this error type
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeMalformedObject, ErrorTypeInvalidFilter, ErrorTypeInvalidStream, ErrorTypeNotApplicable:
		return true
	default:
		return false
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
	}
}

// NewObjectError creates a PDFError bound to an indirect object and its byte offset
func NewObjectError(errorType ErrorType, message string, offset int64, objNum int) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Offset:      offset,
		ObjectNum:   objNum,
		Recoverable: errorType.IsRecoverable(),
	}
}

// WrapError wraps a standard error as a PDFError, keeping it for errors.Is
func WrapError(errorType ErrorType, err error) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     err.Error(),
		Recoverable: errorType.IsRecoverable(),
		cause:       err,
	}
}

// Unwrap returns the wrapped error, if any
func (e *PDFError) Unwrap() error {
	return e.cause
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// ErrorCollection accumulates the objects skipped during one extraction
type ErrorCollection struct {
	Errors   []*PDFError `json:"errors"`
	Warnings []*PDFError `json:"warnings"`
	Skipped  []*PDFError `json:"skipped"`
	FilePath string      `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*PDFError, 0),
		Warnings: make([]*PDFError, 0),
		Skipped:  make([]*PDFError, 0),
		FilePath: filePath,
	}
}

// Add files an error into the bucket matching its severity. A nil
// collection discards everything.
func (ec *ErrorCollection) Add(err *PDFError) {
	if ec == nil || err == nil {
		return
	}
	if err.FilePath == "" && ec.FilePath != "" {
		err.FilePath = ec.FilePath
	}

	switch err.GetSeverity() {
	case SeverityInfo:
		ec.Skipped = append(ec.Skipped, err)
	case SeverityWarning:
		ec.Warnings = append(ec.Warnings, err)
	default:
		ec.Errors = append(ec.Errors, err)
	}
}

// All returns every collected error in severity order
func (ec *ErrorCollection) All() []*PDFError {
	all := make([]*PDFError, 0, len(ec.Errors)+len(ec.Warnings)+len(ec.Skipped))
	all = append(all, ec.Errors...)
	all = append(all, ec.Warnings...)
	return append(all, ec.Skipped...)
}

// CountByType tallies collected errors per type
func (ec *ErrorCollection) CountByType() map[ErrorType]int {
	counts := make(map[ErrorType]int)
	for _, err := range ec.All() {
		counts[err.Type]++
	}
	return counts
}

// Count returns the number of errors, warnings and informational skips
func (ec *ErrorCollection) Count() (errors, warnings, skipped int) {
	return len(ec.Errors), len(ec.Warnings), len(ec.Skipped)
}

// Summary returns a text summary of all collected entries
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount, skippedCount := ec.Count()
	if errorCount == 0 && warningCount == 0 && skippedCount == 0 {
		return "No objects skipped"
	}

	return fmt.Sprintf("Skipped %d object(s): %d error(s), %d warning(s), %d not applicable",
		errorCount+warningCount+skippedCount, errorCount, warningCount, skippedCount)
}
