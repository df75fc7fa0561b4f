package domain

import "fmt"

// FetchError is returned when the feed could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the source document is not well-formed XML.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse source XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError names a required source field that is absent.
// Product is the source product code when it is known.
type MissingFieldError struct {
	Product string
	Field   string
}

func (e *MissingFieldError) Error() string {
	if e.Product != "" {
		return fmt.Sprintf("product %s: missing required field %q", e.Product, e.Field)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidFieldError is returned when a present source field cannot be converted.
type InvalidFieldError struct {
	Product string
	Field   string
	Value   string
	Err     error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("product %s: invalid %s value %q: %v", e.Product, e.Field, e.Value, e.Err)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when the produced document does not satisfy the output schema.
type ValidationError struct {
	Schema string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("output does not satisfy schema %s: %v", e.Schema, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DeliveryStage identifies the step of an upload that failed.
type DeliveryStage string

const (
	StageConfig   DeliveryStage = "config"
	StageStaging  DeliveryStage = "staging"
	StageConnect  DeliveryStage = "connect"
	StageLogin    DeliveryStage = "login"
	StageTransfer DeliveryStage = "transfer"
)

// DeliveryError is returned when the document could not be uploaded.
type DeliveryError struct {
	Host  string
	Stage DeliveryStage
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s (%s): %v", e.Host, e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// LocalWriteError is returned when the fallback copy could not be written.
type LocalWriteError struct {
	Path string
	Err  error
}

func (e *LocalWriteError) Error() string {
	return fmt.Sprintf("write fallback file %s: %v", e.Path, e.Err)
}

func (e *LocalWriteError) Unwrap() error {
	return e.Err
}
