// Package errors provides structured error types for railmacro.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - Source positions for grammar diagnostics
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - GRAMMAR_SYNTAX: Macro pattern text that cannot be parsed
//   - INTERNAL_*: Unexpected internal errors and invariant violations
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLabel, "label cannot contain %q", "]")
//	if errors.Is(err, errors.ErrCodeInvalidLabel) {
//	    // Handle validation error
//	}
//
//	// Positioned grammar errors
//	err := errors.Syntax(src, offset, "`=>`", "`;`")
//	var se *errors.SyntaxError
//	if stderrors.As(err, &se) {
//	    fmt.Println(se.Line, se.Col)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLabel  Code = "INVALID_LABEL"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Grammar errors
	ErrCodeGrammarSyntax Code = "GRAMMAR_SYNTAX"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternalConsistency Code = "INTERNAL_CONSISTENCY"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// SyntaxError locates a grammar syntax failure in the macro source.
type SyntaxError struct {
	Offset   int    // Byte offset of the offending token
	Line     int    // 1-based line of Offset
	Col      int    // 1-based column (in runes) of Offset
	Expected string // Description of what the parser wanted
	Found    string // Description of what it got
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d col %d (offset %d): expected %s, found %s",
		e.Line, e.Col, e.Offset, e.Expected, e.Found)
}

// Syntax builds a GRAMMAR_SYNTAX error for the byte offset in src.
func Syntax(src string, offset int, expected, found string) *Error {
	line, col := LineCol(src, offset)
	se := &SyntaxError{
		Offset:   offset,
		Line:     line,
		Col:      col,
		Expected: expected,
		Found:    found,
	}
	return &Error{
		Code:    ErrCodeGrammarSyntax,
		Message: "invalid macro grammar",
		Cause:   se,
	}
}

// Internal builds an INTERNAL_CONSISTENCY error. These signal defects, not
// bad input.
func Internal(format string, args ...any) *Error {
	return New(ErrCodeInternalConsistency, format, args...)
}

// Rebase moves a syntax error reported against a fragment of src to its
// position in src, where the fragment starts at byte base. Other errors are
// returned unchanged.
func Rebase(err error, src string, base int) error {
	var se *SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	return Syntax(src, se.Offset+base, se.Expected, se.Found)
}
