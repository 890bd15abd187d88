package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// UpgradeError is implemented by every error the engine and its collaborators
// raise. The CLI reporter renders errors through this interface.
type UpgradeError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]any
	Suggestions() []string
	Unwrap() error
}

// ErrorCode classifies an UpgradeError
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// raised by Transform
	SyntaxErrorCode
	DuplicateFieldErrorCode
	UnsupportedConstructErrorCode

	// raised around Transform
	FileSystemErrorCode
	ConfigurationErrorCode
)

var codeNames = map[ErrorCode]string{
	SyntaxErrorCode:               "SyntaxError",
	DuplicateFieldErrorCode:       "DuplicateFieldError",
	UnsupportedConstructErrorCode: "UnsupportedConstructError",
	FileSystemErrorCode:           "FileSystemError",
	ConfigurationErrorCode:        "ConfigurationError",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UnknownError"
}

// SourceLocation points into a PHP source file. Line and Column are 1-based;
// zero means unknown.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether the location names no file
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError carries the data shared by all error kinds. Kinds embed it and
// add their own fields.
type BaseError struct {
	Code    ErrorCode
	Message string
	Loc     SourceLocation
	Cause   error
	Fields  map[string]any
	Hints   []string
}

// Error renders "<location>: <message>: <cause>", omitting unknown parts.
func (e *BaseError) Error() string {
	var b strings.Builder
	if !e.Loc.IsEmpty() {
		b.WriteString(e.Loc.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.Loc }
func (e *BaseError) Suggestions() []string    { return e.Hints }
func (e *BaseError) Unwrap() error            { return e.Cause }

// Context returns the key/value details attached with WithContext. The map
// is never nil.
func (e *BaseError) Context() map[string]any {
	if e.Fields == nil {
		return map[string]any{}
	}
	return e.Fields
}

func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// WithSuggestion appends a hint shown under "Suggestions" by the reporter
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates an error of the given code caused by cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{Code: code, Message: message, Cause: cause}
}

// Is and As forward to the standard library so callers importing this
// package under the name errors keep the usual helpers.
func Is(err, target error) bool     { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }

// MultipleErrors collects the failures of a keep-going run
type MultipleErrors struct {
	Errors []error
}

func (e *MultipleErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "multiple errors (%d total):", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

// Unwrap exposes every collected error to errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	return e.Errors
}

// Add appends err; nil is ignored.
func (e *MultipleErrors) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *MultipleErrors) IsEmpty() bool { return len(e.Errors) == 0 }
func (e *MultipleErrors) Count() int    { return len(e.Errors) }

// HasCode reports whether any collected error carries code
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if CodeOf(err) == code {
			return true
		}
	}
	return false
}

// ErrOrNil returns e as an error, or nil when e is nil or empty.
func (e *MultipleErrors) ErrOrNil() error {
	if e == nil || e.IsEmpty() {
		return nil
	}
	return e
}
