package doc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes document errors.
type ErrorCode string

const (
	// ErrCodeParse indicates malformed input text.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeConflict indicates an intermediate path segment resolves to a non-mapping value.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeDuplicateKey indicates the final segment exists and overwrite is not permitted.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// ErrCodeInvalidPath indicates an empty or unparseable path.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodeSerialization indicates a model invariant was violated while writing output.
	ErrCodeSerialization ErrorCode = "SERIALIZATION_ERROR"

	// ErrCodeDepthExceeded indicates nesting deeper than the configured maximum.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"
)

// Class separates caller-correctable errors from the rest.
type Class string

const (
	// ClassValidation errors are tied to a specific input field and can be fixed by the caller.
	ClassValidation Class = "validation"
	// ClassUnexpected errors signal malformed input or a bug.
	ClassUnexpected Class = "unexpected"
)

// Error is the typed error returned by every engine operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path holds the path segments involved, if any.
	Path []string

	// Offset, Line and Column locate a parse error in the input (1-based line/column).
	Offset int
	Line   int
	Column int

	// Expected describes what the parser was looking for.
	Expected string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code == ErrCodeParse:
		return fmt.Sprintf("%s: %s at line %d, column %d (offset %d)", e.Code, e.Message, e.Line, e.Column, e.Offset)
	case len(e.Path) > 0:
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Class returns the routing class of the error.
func (e *Error) Class() Class {
	switch e.Code {
	case ErrCodeConflict, ErrCodeDuplicateKey, ErrCodeInvalidPath:
		return ClassValidation
	default:
		return ClassUnexpected
	}
}

// Classify returns the class of any error. Errors that are not *Error are unexpected.
func Classify(err error) Class {
	var de *Error
	if errors.As(err, &de) {
		return de.Class()
	}
	return ClassUnexpected
}

// CodeOf returns the error code of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsParseError returns true if err is a parse error. Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool { return hasCode(err, ErrCodeParse) }

// IsConflict returns true if err is a path conflict error.
func IsConflict(err error) bool { return hasCode(err, ErrCodeConflict) }

// IsDuplicateKey returns true if err is a duplicate key error.
func IsDuplicateKey(err error) bool { return hasCode(err, ErrCodeDuplicateKey) }

// IsInvalidPath returns true if err is an invalid path error.
func IsInvalidPath(err error) bool { return hasCode(err, ErrCodeInvalidPath) }

// IsSerializationError returns true if err is a serialization error.
func IsSerializationError(err error) bool { return hasCode(err, ErrCodeSerialization) }

// IsDepthExceeded returns true if err is a nesting depth error.
func IsDepthExceeded(err error) bool { return hasCode(err, ErrCodeDepthExceeded) }

// NewParseError creates an Error for malformed input at the given position.
func NewParseError(offset, line, column int, expected, message string) *Error {
	return &Error{
		Code:     ErrCodeParse,
		Message:  message,
		Offset:   offset,
		Line:     line,
		Column:   column,
		Expected: expected,
	}
}

// NewConflictError creates an Error for a path segment that is not a mapping.
func NewConflictError(path []string, key string) *Error {
	return &Error{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("%q is a value, not an object; cannot nest under it", key),
		Path:    path,
	}
}

// NewDuplicateKeyError creates an Error for an existing final key.
func NewDuplicateKeyError(path []string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateKey,
		Message: "key already exists",
		Path:    path,
	}
}

// NewInvalidPathError creates an Error for an empty or malformed path.
func NewInvalidPathError(message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidPath,
		Message: message,
	}
}

// NewSerializationError creates an Error for a violated invariant during output.
func NewSerializationError(message string) *Error {
	return &Error{
		Code:    ErrCodeSerialization,
		Message: message,
	}
}

// NewDepthExceededError creates an Error for nesting beyond max.
func NewDepthExceededError(max int) *Error {
	return &Error{
		Code:    ErrCodeDepthExceeded,
		Message: fmt.Sprintf("nesting exceeds maximum depth %d", max),
	}
}
