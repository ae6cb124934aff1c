package backend

import (
	"errors"

	"github.com/gogpu/bedrock/gpucore"
)

// Backend name constants.
const (
	// BackendNative is the name of the gogpu/wgpu HAL backend.
	BackendNative = "native"
	// BackendSoftware is the name of the CPU backend.
	BackendSoftware = "software"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory opens a device. It is called once per Open.
type Factory func() (gpucore.Device, error)
