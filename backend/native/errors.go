package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrBackendUnavailable is returned when the requested hal backend is
	// not compiled in.
	ErrBackendUnavailable = errors.New("native: hal backend not available")

	// ErrInvalidProvider is returned by FromProvider when the host does not
	// expose hal types.
	ErrInvalidProvider = errors.New("native: provider does not expose hal device and queue")

	// ErrInvalidDimensions is returned when width or height is zero.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrDataSize is returned when upload data does not match the region.
	ErrDataSize = errors.New("native: data size does not match region")

	// ErrTooManyDraws is returned by Finish when a command buffer pushes
	// constants for more draws than the constants buffer holds.
	ErrTooManyDraws = errors.New("native: too many draws in one command buffer")

	// ErrGPUTimeout is returned when a submission did not complete in time.
	ErrGPUTimeout = errors.New("native: GPU did not finish in time")
)
