// Package gpucore defines the device port bedrock renders through.
//
// The [Device] interface abstracts over the backends that can execute a
// frame, allowing the compositor and every drawable to work with:
//   - gogpu/wgpu HAL (backend/native)
//   - a CPU reference device (backend/software)
//
// # Architecture
//
//	               +-----------------+
//	               |   bedrock       |
//	               | (Renderer,      |
//	               |  drawables)     |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               |    gpucore      |
//	               |  Device, Pass,  |
//	               |  Surface        |
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	| backend/native  |          | backend/software|
//	|  (hal.Device)   |          |  (image.RGBA)   |
//	+-----------------+          +-----------------+
//
// # Resource Management
//
// GPU resources are referenced by opaque IDs ([BufferID], [TextureID], ...).
// Each backend maps IDs to its own resources. Resources are created and
// destroyed explicitly through the [Device]; an ID is never reused after
// its resource is destroyed.
//
// # Frames
//
// A frame is recorded with a [CommandEncoder], which can clear and copy
// textures and open [RenderPass] values. [CommandEncoder.Finish] produces a
// [CommandBuffer] that [Device.Submit] executes in order. Buffer writes made
// with [Device.WriteBuffer] take effect before the next submission.
//
// Presentable images come from a [Surface]. Acquisition failures are
// reported with [ErrSurfaceTimeout], [ErrSurfaceOutdated], [ErrSurfaceLost]
// and [ErrSurfaceOutOfMemory] so callers can decide how to recover.
package gpucore
