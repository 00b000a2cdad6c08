package model

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when an edit targets an id that is not in the draft
var ErrItemNotFound = errors.New("line item not found")

// InvalidFieldError represents a rejected field update. The previous value
// of the field is kept.
type InvalidFieldError struct {
	ItemID  string
	Field   string
	Value   interface{}
	Message string
	Cause   error
}

func (e *InvalidFieldError) Error() string {
	target := e.Field
	if e.ItemID != "" {
		target = fmt.Sprintf("%s[%s]", e.Field, e.ItemID)
	}
	if e.Value != nil {
		return fmt.Sprintf("invalid %s: %s (value=%v)", target, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", target, e.Message)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Cause
}

// NewInvalidFieldError creates a new invalid field error
func NewInvalidFieldError(itemID, field string, value interface{}, message string, cause error) *InvalidFieldError {
	return &InvalidFieldError{
		ItemID:  itemID,
		Field:   field,
		Value:   value,
		Message: message,
		Cause:   cause,
	}
}

// CaptureError reports a failure to rasterize the invoice preview.
// No file is produced.
type CaptureError struct {
	Message string
	Cause   error
}

func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("capture failed: %s (%v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("capture failed: %s", e.Message)
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// NewCaptureError creates a new capture error
func NewCaptureError(message string, cause error) *CaptureError {
	return &CaptureError{
		Message: message,
		Cause:   cause,
	}
}

// ExportError reports a failure in any export stage after capture
type ExportError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("export failed [%s]: %s", e.Stage, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new export error
func NewExportError(stage, message string, cause error) *ExportError {
	return &ExportError{
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}
