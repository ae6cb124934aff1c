package gpucore

import (
	"errors"
	"fmt"
)

// Surface acquisition errors. Backends wrap their native errors so that
// errors.Is matches one of these.
var (
	// ErrSurfaceTimeout is returned when no frame became available in time.
	ErrSurfaceTimeout = errors.New("gpucore: surface acquire timed out")

	// ErrSurfaceOutdated is returned when the surface no longer matches its
	// configuration, typically after a window resize.
	ErrSurfaceOutdated = errors.New("gpucore: surface outdated")

	// ErrSurfaceLost is returned when the surface must be reconfigured.
	ErrSurfaceLost = errors.New("gpucore: surface lost")

	// ErrSurfaceOutOfMemory is returned when the device ran out of memory
	// while acquiring a frame.
	ErrSurfaceOutOfMemory = errors.New("gpucore: out of memory")
)

// Device errors.
var (
	// ErrMissingCapability is returned by Capabilities.Validate.
	ErrMissingCapability = errors.New("gpucore: device lacks required capability")

	// ErrUnsupportedTarget is returned by CreateSurface for an unknown window target.
	ErrUnsupportedTarget = errors.New("gpucore: unsupported surface target")

	// ErrResourceNotFound is returned when an ID does not name a live resource.
	ErrResourceNotFound = errors.New("gpucore: resource not found")

	// ErrEncoderFinished is returned when recording into a finished encoder.
	ErrEncoderFinished = errors.New("gpucore: encoder already finished")

	// ErrPassOpen is returned when an encoder command is recorded while a
	// render pass is still open.
	ErrPassOpen = errors.New("gpucore: render pass still open")
)

// NotFound returns an ErrResourceNotFound error naming the resource.
func NotFound(kind string, id uint64) error {
	return fmt.Errorf("%w: %s %d", ErrResourceNotFound, kind, id)
}

// IsRecoverableSurfaceError reports whether err can be fixed by recreating
// the surface resources and reconfiguring the surface.
func IsRecoverableSurfaceError(err error) bool {
	return errors.Is(err, ErrSurfaceOutdated) ||
		errors.Is(err, ErrSurfaceLost) ||
		errors.Is(err, ErrSurfaceOutOfMemory)
}
