package device

import "errors"

var (
	// ErrNotFound indicates a display was not found
	ErrNotFound = errors.New("device not found")

	// ErrExists indicates a display with the same ID is already configured
	ErrExists = errors.New("device already exists")

	// ErrNotConnected indicates the display session is not connected
	ErrNotConnected = errors.New("device not connected")

	// ErrUnsupported indicates an operation is not supported by the display
	ErrUnsupported = errors.New("operation not supported")

	// ErrValidation indicates a state payload failed schema validation
	ErrValidation = errors.New("validation error")

	// ErrClosed indicates the controller has been shut down
	ErrClosed = errors.New("controller closed")
)
