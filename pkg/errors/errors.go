package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError is returned when input violates a required or format constraint
// (missing name, oversize field, reserved or immutable label, name already taken).
type ValidationError struct {
	messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{messages: messages}
}

func (e *ValidationError) Error() string {
	if len(e.messages) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.messages, "; ")
}

func (e *ValidationError) Messages() []string {
	return e.messages
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// DuplicateReferenceError is returned when a membership call repeats an identifier
// or adds a membership that already exists.
type DuplicateReferenceError struct {
	kind string
	refs []string
}

func NewDuplicateReferenceError(kind string, refs ...string) *DuplicateReferenceError {
	return &DuplicateReferenceError{kind: kind, refs: refs}
}

func (e *DuplicateReferenceError) Error() string {
	if len(e.refs) == 0 {
		return fmt.Sprintf("duplicate %s reference", e.kind)
	}
	return fmt.Sprintf("duplicate %s reference: %s", e.kind, strings.Join(e.refs, ", "))
}

func (e *DuplicateReferenceError) Kind() string {
	return e.kind
}

func IsDuplicateReferenceError(err error) bool {
	var e *DuplicateReferenceError
	return errors.As(err, &e)
}

// CompositionRuleViolationError is returned when content is associated with a view
// whose composite flag forbids it.
type CompositionRuleViolationError struct {
	msg string
}

func NewCompositionRuleViolationError(msg string) *CompositionRuleViolationError {
	return &CompositionRuleViolationError{msg: msg}
}

func (e *CompositionRuleViolationError) Error() string {
	return "composition rule violation: " + e.msg
}

func IsCompositionRuleViolationError(err error) bool {
	var e *CompositionRuleViolationError
	return errors.As(err, &e)
}

type UnauthorizedError struct {
	msg string
}

func NewUnauthorizedError(msg string) *UnauthorizedError {
	return &UnauthorizedError{msg: msg}
}

func (e *UnauthorizedError) Error() string {
	if e.msg == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.msg
}

func IsUnauthorizedError(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	kind string
	id   string
}

func NewResourceNotFoundError(kind string, id any) *ResourceNotFoundError {
	return &ResourceNotFoundError{kind: kind, id: fmt.Sprint(id)}
}

func (e *ResourceNotFoundError) Error() string {
	if e.id == "" {
		return fmt.Sprintf("%s not found", e.kind)
	}
	return fmt.Sprintf("%s %s not found", e.kind, e.id)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// TimedOutError reports that an observer gave up waiting. The remote operation
// may still complete after it is returned.
type TimedOutError struct {
	operation string
	elapsed   time.Duration
	lastState string
}

func NewTimedOutError(operation string, elapsed time.Duration, lastState string) *TimedOutError {
	return &TimedOutError{operation: operation, elapsed: elapsed, lastState: lastState}
}

func (e *TimedOutError) Error() string {
	msg := fmt.Sprintf("%s: no terminal state observed after %s", e.operation, e.elapsed)
	if e.lastState != "" {
		msg += fmt.Sprintf(" (last observed: %s)", e.lastState)
	}
	return msg
}

func IsTimedOutError(err error) bool {
	var e *TimedOutError
	return errors.As(err, &e)
}

// OperationFailedError reports that a remote operation reached a terminal failure state.
type OperationFailedError struct {
	operation string
	lastState string
}

func NewOperationFailedError(operation, lastState string) *OperationFailedError {
	return &OperationFailedError{operation: operation, lastState: lastState}
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("%s failed (last observed: %s)", e.operation, e.lastState)
}

func IsOperationFailedError(err error) bool {
	var e *OperationFailedError
	return errors.As(err, &e)
}
