package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SyntaxError reports source text the php parser could not accept.
// It is the engine's ParseError: no partial tree is ever produced alongside it.
type SyntaxError struct {
	*BaseError
	Token string // the offending token text, if known
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// NewSyntaxErrorAt creates a syntax error positioned at loc
func NewSyntaxErrorAt(loc SourceLocation, token, message string) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}
	err := &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
	}
	err.WithLocation(loc)
	return err
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// DuplicateFieldError reports a class whose property names collide when compared
// case-insensitively.
type DuplicateFieldError struct {
	*BaseError
	Class  string   // namespaced class name
	Fields []string // lower-cased names declared more than once
}

// NewDuplicateFieldError creates a duplicate field error for class
func NewDuplicateFieldError(class string, fields []string) *DuplicateFieldError {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)

	message := fmt.Sprintf("class '%s' declares duplicate property names (case-insensitive): %s",
		class, strings.Join(sorted, ", "))

	err := &DuplicateFieldError{
		BaseError: New(DuplicateFieldErrorCode, message),
		Class:     class,
		Fields:    sorted,
	}
	err.WithContext("class", class)
	err.WithSuggestion("Rename or remove one of the colliding properties before upgrading")
	return err
}

// WithLocation adds location information to the error
func (e *DuplicateFieldError) WithLocation(loc SourceLocation) *DuplicateFieldError {
	e.BaseError.WithLocation(loc)
	return e
}

// UnsupportedConstructError reports an attribute argument whose value has a shape the
// rule set cannot interpret where it needs one.
type UnsupportedConstructError struct {
	*BaseError
	Attribute string // attribute name as written
	Argument  string // argument name
	Found     string // description of the value that was found
}

// NewUnsupportedConstructError creates an unsupported construct error
func NewUnsupportedConstructError(attribute, argument, found string) *UnsupportedConstructError {
	message := fmt.Sprintf("attribute '%s' argument '%s' must be a literal or class constant, found %s",
		attribute, argument, found)

	err := &UnsupportedConstructError{
		BaseError: New(UnsupportedConstructErrorCode, message),
		Attribute: attribute,
		Argument:  argument,
		Found:     found,
	}
	err.WithSuggestion(fmt.Sprintf("Rewrite '%s' as a plain string literal and run the upgrade again", argument))
	return err
}

// WithLocation adds location information to the error
func (e *UnsupportedConstructError) WithLocation(loc SourceLocation) *UnsupportedConstructError {
	e.BaseError.WithLocation(loc)
	return e
}

// CodeOf returns the ErrorCode carried by err, looking through wrapping.
func CodeOf(err error) ErrorCode {
	var ue UpgradeError
	if As(err, &ue) {
		return ue.ErrorCode()
	}
	return UnknownErrorCode
}
