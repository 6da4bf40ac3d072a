// Package errors provides the structured error type used at indexer
// and CLI boundaries, classifying failures by how they propagate:
// skippable (per-file), propagating (embedding/storage transport), or
// degrading (corrupt persisted state).
package errors

import "fmt"

// Category classifies where in the pipeline an error originated.
type Category string

const (
	CategoryChunking  Category = "chunking"
	CategoryEmbedding Category = "embedding"
	CategoryStorage   Category = "storage"
	CategoryConfig    Category = "config"
	CategoryIO        Category = "io"
)

// Error is the structured error type for the indexing pipeline.
type Error struct {
	// Category is where the failure originated.
	Category Category

	// Message is the human-readable error message.
	Message string

	// Cause is the underlying error.
	Cause error

	// Skippable marks failures recovered by the indexer's
	// skip-and-continue policy (bad single file); non-skippable
	// failures abort the operation.
	Skippable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a structured error.
func New(category Category, message string, cause error) *Error {
	return &Error{Category: category, Message: message, Cause: cause}
}

// Skippable creates an error the indexer may recover from by skipping
// the current file.
func Skippable(category Category, message string, cause error) *Error {
	return &Error{Category: category, Message: message, Cause: cause, Skippable: true}
}

// IsSkippable reports whether err (anywhere in its chain) is a
// skippable pipeline error.
func IsSkippable(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Skippable
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
