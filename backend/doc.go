// Package backend selects the gpucore.Device implementation bedrock renders with.
//
// Device backends register a factory from an init function and are opened
// by name, or by priority with OpenDefault:
//
//	import _ "github.com/gogpu/bedrock/backend/software"
//
//	dev, name, err := backend.OpenDefault()
//
// # Available Backends
//
//   - "native": Vulkan through gogpu/wgpu/hal (requires a capable GPU)
//   - "software": CPU device, always available
package backend
