package gpucore

import "slices"

// SurfaceConfig is the configuration applied to a presentable surface.
type SurfaceConfig struct {
	Format      TextureFormat
	Width       uint32
	Height      uint32
	Usage       TextureUsage
	PresentMode PresentMode

	// ViewFormats lists additional formats views of the surface texture may use.
	ViewFormats []TextureFormat
}

// Clone returns a copy that shares no memory with c.
func (c SurfaceConfig) Clone() SurfaceConfig {
	c.ViewFormats = slices.Clone(c.ViewFormats)
	return c
}

// Frame is an acquired surface image.
type Frame struct {
	// Texture is the presentable texture. It is valid until Present.
	Texture TextureID

	Width  uint32
	Height uint32

	// Suboptimal reports that the surface still works but should be reconfigured.
	Suboptimal bool
}

// Surface is a presentable render target backed by a window.
type Surface interface {
	// DefaultConfig returns the configuration the backend prefers for a
	// surface of the given size.
	DefaultConfig(width, height uint32) (SurfaceConfig, error)

	// Configure (re)configures the surface. Frames acquired earlier become invalid.
	Configure(cfg SurfaceConfig) error

	// Acquire returns the next frame to render into.
	Acquire() (*Frame, error)

	// Present queues an acquired frame for display.
	Present(frame *Frame) error

	// Destroy releases the surface.
	Destroy()
}
