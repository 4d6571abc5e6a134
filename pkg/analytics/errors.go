package analytics

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/parse-analytics/pkg/async"
)

var (
	// ErrInvalidArgument is returned synchronously when a tracking call is rejected before submission
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTransportFailure is carried by handles whose delivery to the backend failed
	ErrTransportFailure = errors.New("transport failure")

	// ErrCancelled is carried by handles cancelled before completion
	ErrCancelled = async.ErrCancelled
)

// IsInvalidArgument checks if the error is or wraps ErrInvalidArgument
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsTransportFailure checks if the error is or wraps ErrTransportFailure
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}

// IsCancelled checks if the error is or wraps ErrCancelled
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// NewInvalidArgumentError creates an invalid argument error with a message
func NewInvalidArgumentError(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, message)
}

// NewTransportFailureError creates a transport failure error for an operation
func NewTransportFailureError(operation string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransportFailure, operation, cause)
}
