package simplevault

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrResourceNotFound indicates a resource was not found
	ErrResourceNotFound = errors.New("resource not found")

	// ErrContentNotFound indicates a content item was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrThumbnailNotFound indicates a resource has no stored thumbnail
	ErrThumbnailNotFound = errors.New("thumbnail not found")

	// ErrUnsupportedOperation indicates the operation is not available for
	// the resource type or with the configured collaborators
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// ValidationError indicates a request carried bad or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DuplicateContentError indicates the uploaded bytes hash to a value already
// present in the resource's content list.
type DuplicateContentError struct {
	ResourceID string
	ContentID  int
	Hash       string
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("content with hash %s already exists in resource %s (content id %d)", e.Hash, e.ResourceID, e.ContentID)
}

// ResourceError represents an error related to resource operations
type ResourceError struct {
	ResourceID string
	Op         string
	Err        error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource operation %s failed for resource %s: %v", e.Op, e.ResourceID, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
