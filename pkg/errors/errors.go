// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling with rich context for Loom.
// Every failure surfaced by the chain engine carries an ErrorCode so callers
// can tell which layer failed and whether a retry makes sense.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Loom errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeConfiguration indicates an invalid chain, template, or pipeline
	// configuration (unknown branch key, unbound placeholder, empty step list).
	// Never retryable.
	CodeConfiguration ErrorCode = "CONFIG_ERROR"

	// CodeGuardrailBlocked indicates a guardrail rejected input or output.
	// An expected, named outcome; never retried.
	CodeGuardrailBlocked ErrorCode = "GUARDRAIL_BLOCKED"

	// CodeBackend indicates the model backend could not produce a result.
	// Classified as transient and eligible for executor retry.
	CodeBackend ErrorCode = "BACKEND_ERROR"

	// CodeMemoryError indicates a memory system error.
	CodeMemoryError ErrorCode = "MEMORY_ERROR"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeContextLost indicates the context was cancelled mid-operation.
	CodeContextLost ErrorCode = "CONTEXT_LOST"
)

// LoomError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type LoomError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *LoomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *LoomError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *LoomError) MarshalJSON() ([]byte, error) {
	type Alias LoomError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new LoomError with the given code, message, and cause.
// Backend errors start out recoverable; everything else does not.
func New(code ErrorCode, msg string, cause error) *LoomError {
	return &LoomError{
		Code:        code,
		Message:     msg,
		Err:         cause,
		Context:     make(map[string]interface{}),
		Attributes:  make(map[string]string),
		Recoverable: code == CodeBackend,
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *LoomError) WithContext(key string, value interface{}) *LoomError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *LoomError) WithAttribute(key, value string) *LoomError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *LoomError) WithRecoverable(recoverable bool) *LoomError {
	e.Recoverable = recoverable
	return e
}

// AsLoomError attempts to convert an error to a LoomError.
// Returns the error as LoomError if it is one, or wraps it otherwise.
func AsLoomError(err error) *LoomError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LoomError); ok {
		return le
	}
	return New(CodeInternal, "wrapped error", err)
}

// IsCode reports whether err is a LoomError with the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	le, ok := err.(*LoomError)
	return ok && le.Code == code
}

// IsRecoverable reports whether err should be treated as transient.
// Non-Loom errors are not retried; the chain engine wraps everything
// it propagates.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if le, ok := err.(*LoomError); ok {
		return le.Recoverable
	}
	return false
}
