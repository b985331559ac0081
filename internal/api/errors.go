package api

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by session operations attempted while no
// session is active.
var ErrNotConnected = errors.New("not connected to MCP server")

// IsNotConnected reports whether err is or wraps ErrNotConnected.
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// UnsupportedKindError is returned when a profile's connection kind, or a
// package profile's launcher, is not one of the recognized values.
type UnsupportedKindError struct {
	// Field is the offending field ("type" or "packageManager").
	Field string
	Value string
}

func (e *UnsupportedKindError) Error() string {
	if e.Field == "" || e.Field == "type" {
		return fmt.Sprintf("unsupported server type %q", e.Value)
	}
	return fmt.Sprintf("unsupported %s %q", e.Field, e.Value)
}

// IsUnsupportedKind reports whether err is or wraps an UnsupportedKindError.
func IsUnsupportedKind(err error) bool {
	var target *UnsupportedKindError
	return errors.As(err, &target)
}

// MissingParameterError is returned when the field required by a profile's
// kind is empty or unusable.
type MissingParameterError struct {
	Kind      ConnectionKind
	Parameter string
	// Reason is optional extra context, e.g. why a URL was rejected.
	Reason string
}

func (e *MissingParameterError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s is required for %s servers: %s", e.Parameter, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s is required for %s servers", e.Parameter, e.Kind)
}

// IsMissingParameter reports whether err is or wraps a MissingParameterError.
func IsMissingParameter(err error) bool {
	var target *MissingParameterError
	return errors.As(err, &target)
}

// ConnectFailedError wraps a failure raised while constructing or opening a
// transport. Its message is the underlying message, unchanged, so the front
// end can show it verbatim.
type ConnectFailedError struct {
	ProfileID string
	Err       error
}

func (e *ConnectFailedError) Error() string {
	if e.Err == nil {
		return "connection failed"
	}
	return e.Err.Error()
}

func (e *ConnectFailedError) Unwrap() error {
	return e.Err
}

// IsConnectFailed reports whether err is or wraps a ConnectFailedError.
func IsConnectFailed(err error) bool {
	var target *ConnectFailedError
	return errors.As(err, &target)
}

// NotFoundError represents a lookup against an unknown identifier.
type NotFoundError struct {
	// ResourceType categorizes the missing resource ("profile", "process", "service").
	ResourceType string
	ResourceName string
	// Message replaces the default text when set.
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

var (
	NewProfileNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("profile", id)
	}

	NewProcessNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("process", id)
	}

	NewServiceNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("service", id)
	}
)

// InvalidPayloadError is returned when invocation parameters are not a
// well-formed JSON object. It is raised before any I/O is attempted.
type InvalidPayloadError struct {
	Err error
}

func (e *InvalidPayloadError) Error() string {
	if e.Err == nil {
		return "invalid parameters: expected a JSON object"
	}
	return fmt.Sprintf("invalid parameters: %v", e.Err)
}

func (e *InvalidPayloadError) Unwrap() error {
	return e.Err
}

// IsInvalidPayload reports whether err is or wraps an InvalidPayloadError.
func IsInvalidPayload(err error) bool {
	var target *InvalidPayloadError
	return errors.As(err, &target)
}
