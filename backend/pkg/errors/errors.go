package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConnection represents failures reaching or authenticating to the store
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeQuery represents queries the store rejected or failed to execute
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeRuntime represents adapter-internal encode/decode failures
	ErrorTypeRuntime ErrorType = "runtime"
	// ErrorTypeSerialization represents JSON encode/decode failures at the boundary
	ErrorTypeSerialization ErrorType = "serialization"
	// ErrorTypeValidation represents domain validation failures
	ErrorTypeValidation ErrorType = "validation"
)

// MemoryError is the error type returned by the repository and graph adapter.
// Cause holds the underlying error when one exists; Value holds the offending
// native value for runtime decode/encode failures.
type MemoryError struct {
	Type    ErrorType
	Message string
	Value   any
	Cause   error
}

// Error implements the error interface
func (e *MemoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *MemoryError) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates an error for a failed connection attempt
func NewConnectionError(message string, cause error) *MemoryError {
	return &MemoryError{Type: ErrorTypeConnection, Message: message, Cause: cause}
}

// NewQueryError creates an error for a query the backend rejected
func NewQueryError(message string, cause error) *MemoryError {
	return &MemoryError{Type: ErrorTypeQuery, Message: message, Cause: cause}
}

// NewRuntimeError creates an adapter-internal error
func NewRuntimeError(message string, cause error) *MemoryError {
	return &MemoryError{Type: ErrorTypeRuntime, Message: message, Cause: cause}
}

// NewDecodeError creates a runtime error carrying the native value that
// could not be converted
func NewDecodeError(message string, value any, cause error) *MemoryError {
	return &MemoryError{Type: ErrorTypeRuntime, Message: message, Value: value, Cause: cause}
}

// NewSerializationError creates an error for a boundary encode/decode failure
func NewSerializationError(message string, cause error) *MemoryError {
	return &MemoryError{Type: ErrorTypeSerialization, Message: message, Cause: cause}
}

// ValidationKind identifies a single validation rule violation
type ValidationKind string

const (
	KindEmptyEntityName           ValidationKind = "empty_entity_name"
	KindNoLabels                  ValidationKind = "no_labels"
	KindInvalidRelationshipFormat ValidationKind = "invalid_relationship_format"
	KindUnknownRelationship       ValidationKind = "unknown_relationship"
	KindUnknownLabel              ValidationKind = "unknown_label"
	KindInvalidDepth              ValidationKind = "invalid_depth"
	KindConflictingOperations     ValidationKind = "conflicting_operations"
)

// ValidationIssue is one violation of a validation rule. Subject carries the
// offending name, label, field or depth depending on the kind.
type ValidationIssue struct {
	Kind    ValidationKind
	Subject string
}

func (i ValidationIssue) Error() string {
	switch i.Kind {
	case KindEmptyEntityName:
		return "entity name cannot be empty"
	case KindNoLabels:
		return fmt.Sprintf("entity %q must have at least one label", i.Subject)
	case KindInvalidRelationshipFormat:
		return fmt.Sprintf("relationship type %q is not in snake_case format", i.Subject)
	case KindUnknownRelationship:
		return fmt.Sprintf("relationship type %q is not allowed", i.Subject)
	case KindUnknownLabel:
		return fmt.Sprintf("label %q is not allowed", i.Subject)
	case KindInvalidDepth:
		return fmt.Sprintf("traversal depth %s is out of range (1-5)", i.Subject)
	case KindConflictingOperations:
		return fmt.Sprintf("conflicting operations for %s", i.Subject)
	default:
		return string(i.Kind)
	}
}

// EmptyEntityName reports an empty entity name
func EmptyEntityName() ValidationIssue {
	return ValidationIssue{Kind: KindEmptyEntityName}
}

// NoLabels reports an entity left without labels after defaults are applied
func NoLabels(name string) ValidationIssue {
	return ValidationIssue{Kind: KindNoLabels, Subject: name}
}

// InvalidRelationshipFormat reports a relationship type that is not snake_case
func InvalidRelationshipFormat(name string) ValidationIssue {
	return ValidationIssue{Kind: KindInvalidRelationshipFormat, Subject: name}
}

// UnknownRelationship reports a relationship type outside the allow-list
func UnknownRelationship(name string) ValidationIssue {
	return ValidationIssue{Kind: KindUnknownRelationship, Subject: name}
}

// UnknownLabel reports a label outside the allow-list
func UnknownLabel(label string) ValidationIssue {
	return ValidationIssue{Kind: KindUnknownLabel, Subject: label}
}

// InvalidDepth reports a traversal depth outside the supported range
func InvalidDepth(depth int) ValidationIssue {
	return ValidationIssue{Kind: KindInvalidDepth, Subject: strconv.Itoa(depth)}
}

// ConflictingOperations reports an update that mixes add/remove/set on one field
func ConflictingOperations(field string) ValidationIssue {
	return ValidationIssue{Kind: KindConflictingOperations, Subject: field}
}

// ValidationError aggregates the rule violations for a single item
type ValidationError struct {
	Issues []ValidationIssue
}

// NewValidationError creates a validation error from one or more issues
func NewValidationError(issues ...ValidationIssue) *ValidationError {
	return &ValidationError{Issues: issues}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Contains reports whether the error includes an issue of the given kind
func (e *ValidationError) Contains(kind ValidationKind) bool {
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// BatchItem is the rejection record for one item of a batch operation
type BatchItem struct {
	Name   string
	Issues []ValidationIssue
}

// BatchError reports the rejected items of a batch operation. Items that
// validated cleanly were still forwarded to the repository.
type BatchError struct {
	Items []BatchItem
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		msgs := make([]string, 0, len(item.Issues))
		for _, issue := range item.Issues {
			msgs = append(msgs, issue.Error())
		}
		parts = append(parts, fmt.Sprintf("%q: %s", item.Name, strings.Join(msgs, "; ")))
	}
	return fmt.Sprintf("batch validation failed for %d item(s): %s", len(e.Items), strings.Join(parts, " | "))
}

// Item returns the rejection record for the named item, if present
func (e *BatchError) Item(name string) (BatchItem, bool) {
	for _, item := range e.Items {
		if item.Name == name {
			return item, true
		}
	}
	return BatchItem{}, false
}

// EntityNotFoundError is returned when a named entity does not exist
type EntityNotFoundError struct {
	Name string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity not found: %s", e.Name)
}

// MissingProjectError is returned when a task operation needs a project but
// none was supplied and no default project is configured
type MissingProjectError struct{}

func (e *MissingProjectError) Error() string {
	return "no project specified and no default project configured"
}

// ErrMissingProject is the shared instance used by task operations
var ErrMissingProject = &MissingProjectError{}
