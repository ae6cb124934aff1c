package gpucore

import (
	"fmt"
	"strings"
)

// Minimum device requirements.
const (
	// MinPushConstantSize is the smallest push-constant range bedrock accepts.
	MinPushConstantSize = 256

	// SampleCount is the multisample count of every render target.
	SampleCount = 4
)

// Capabilities describes what a device can do.
type Capabilities struct {
	// MaxPushConstantSize is the largest push-constant range in bytes.
	MaxPushConstantSize uint32

	// VertexWritableStorage reports that vertex shaders may bind storage buffers.
	VertexWritableStorage bool

	// ClearTexture reports support for CommandEncoder.ClearTexture.
	ClearTexture bool

	// MaxSampleCount is the largest supported multisample count.
	MaxSampleCount uint32

	// MaxBufferSize is the maximum buffer size in bytes.
	MaxBufferSize uint64

	// MaxStorageBufferBindingSize is the maximum storage buffer binding size.
	MaxStorageBufferBindingSize uint64

	// MaxTextureDimension2D is the largest width or height of a 2D texture.
	MaxTextureDimension2D uint32
}

// Validate returns an error wrapping ErrMissingCapability that lists every
// requirement the device does not meet.
func (c Capabilities) Validate() error {
	var missing []string
	if c.MaxPushConstantSize < MinPushConstantSize {
		missing = append(missing, fmt.Sprintf("push constants %d < %d bytes", c.MaxPushConstantSize, MinPushConstantSize))
	}
	if !c.VertexWritableStorage {
		missing = append(missing, "vertex-stage storage buffers")
	}
	if !c.ClearTexture {
		missing = append(missing, "texture clear")
	}
	if c.MaxSampleCount < SampleCount {
		missing = append(missing, fmt.Sprintf("%dx multisampling", SampleCount))
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingCapability, strings.Join(missing, ", "))
}

// StorageLimit returns the largest storage buffer a drawable may bind.
func (c Capabilities) StorageLimit() uint64 {
	limit := c.MaxStorageBufferBindingSize
	if c.MaxBufferSize != 0 && (limit == 0 || c.MaxBufferSize < limit) {
		limit = c.MaxBufferSize
	}
	return limit
}
