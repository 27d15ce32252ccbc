// Package errors defines the categorised error type shared by every package
// in the module and the typed failures of the edit pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryDecode   Category = "decode"
	CategoryEncode   Category = "encode"
	CategoryEdit     Category = "edit"
	CategoryPipeline Category = "pipeline"
	CategoryExport   Category = "export"
	CategoryStorage  Category = "storage"
	CategoryConfig   Category = "config"
	CategoryInput    Category = "input"
)

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category Category
	Op       string // operation name
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Wrap wraps an existing error with context.  A nil err stays nil.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.  The typed errors below match
// their sentinel with errors.Is.
var (
	ErrUnsupportedFormat     = errors.New("unsupported image format")
	ErrInvalidDimensions     = errors.New("invalid dimensions")
	ErrEmptyInput            = errors.New("empty input")
	ErrInvalidEditParameters = errors.New("invalid edit parameters")
	ErrEmptyStack            = errors.New("edit stack is empty")
	ErrCropOutOfBounds       = errors.New("cannot crop to larger dimensions")
	ErrUnknownEdit           = errors.New("unknown edit")
)

// ── Edit errors ───────────────────────────────────────────────────────────────

// InvalidEditParametersError reports malformed parameters supplied when
// constructing an edit.
type InvalidEditParametersError struct {
	Edit   string // edit kind, e.g. "crop"
	Field  string // offending parameter; empty when the whole input is bad
	Reason string
}

func (e *InvalidEditParametersError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s parameters: %s", e.Edit, e.Reason)
	}
	return fmt.Sprintf("invalid %s parameters: %s: %s", e.Edit, e.Field, e.Reason)
}

func (e *InvalidEditParametersError) Is(target error) bool { return target == ErrInvalidEditParameters }

// EmptyStackError is returned when popping from an empty edit stack.
type EmptyStackError struct{}

func (e *EmptyStackError) Error() string { return ErrEmptyStack.Error() }

func (e *EmptyStackError) Is(target error) bool { return target == ErrEmptyStack }

// CropOutOfBoundsError reports a crop whose diagonal is longer than the
// diagonal of the image it is applied to.  ImageX and ImageY are the first
// and second buffer axes (height, width).
type CropOutOfBoundsError struct {
	ImageX, ImageY int
	StartX, StartY int
	EndX, EndY     int
}

func (e *CropOutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: image (%d, %d), crop (%d, %d) -> (%d, %d)",
		ErrCropOutOfBounds, e.ImageX, e.ImageY, e.StartX, e.StartY, e.EndX, e.EndY)
}

func (e *CropOutOfBoundsError) Is(target error) bool { return target == ErrCropOutOfBounds }

// UnknownEditError is returned when the pipeline meets an edit variant it
// has no kernel for.
type UnknownEditError struct {
	Name     string
	Property string
}

func (e *UnknownEditError) Error() string {
	return fmt.Sprintf("unknown edit: name = %s, property = %s", e.Name, e.Property)
}

func (e *UnknownEditError) Is(target error) bool { return target == ErrUnknownEdit }
