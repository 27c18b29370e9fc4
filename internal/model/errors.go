package model

import (
	"fmt"
	"strings"
)

// FormatError reports structural validation failures: the raw value has the
// wrong shape for the property type (not a string, not a string list, ...).
// It never reflects the definition's configuration.
type FormatError struct {
	Messages []string
}

func (e *FormatError) Error() string {
	return "invalid value format: " + strings.Join(e.Messages, "; ")
}

// NewFormatError builds a FormatError from one or more messages.
func NewFormatError(messages ...string) *FormatError {
	return &FormatError{Messages: messages}
}

// BusinessRuleError reports values that are well-formed but violate the
// property definition's configuration: unknown select option, over the
// length or selection limit, duplicates, missing required value.
type BusinessRuleError struct {
	Messages []string
}

func (e *BusinessRuleError) Error() string {
	return "value violates property rules: " + strings.Join(e.Messages, "; ")
}

// NewBusinessRuleError builds a BusinessRuleError from one or more messages.
func NewBusinessRuleError(messages ...string) *BusinessRuleError {
	return &BusinessRuleError{Messages: messages}
}

// UnsupportedPropertyTypeError reports a property type with no registered
// processor. This is a caller or data bug, not a user-correctable input
// problem.
type UnsupportedPropertyTypeError struct {
	Type PropertyType
}

func (e *UnsupportedPropertyTypeError) Error() string {
	return fmt.Sprintf("unsupported property type %q", e.Type)
}

// UnsupportedOperationError reports an operation kind a property type does
// not support (e.g. add on a scalar).
type UnsupportedOperationError struct {
	Type PropertyType
	Op   OpKind
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q is not supported for %s properties", e.Op, e.Type)
}

// UnsupportedOperatorError reports a filter operator a property type does
// not support. Filters fail loudly rather than silently matching everything.
type UnsupportedOperatorError struct {
	Type PropertyType
	Op   Operator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not supported for %s properties", e.Op, e.Type)
}

// NotFoundError reports a missing issue or property definition.
type NotFoundError struct {
	Kind string // "issue" or "property"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AllocationExhaustedError reports that the sequence allocator lost the
// optimistic-concurrency race on every attempt. Transient; callers may
// retry the whole request.
type AllocationExhaustedError struct {
	Entity   string
	Attempts int
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("sequence allocation for %q exhausted after %d attempts", e.Entity, e.Attempts)
}

// StorageError wraps a failure from the underlying store, tagged with the
// operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UserMessages extracts display-ready messages from a validation error.
// Non-validation errors yield their single Error() string.
func UserMessages(err error) []string {
	switch e := err.(type) {
	case *FormatError:
		return e.Messages
	case *BusinessRuleError:
		return e.Messages
	default:
		return []string{err.Error()}
	}
}
