//go:build !nogpu

package native

// Vulkan registers itself with hal on import; Open selects it by default.
import _ "github.com/gogpu/wgpu/hal/vulkan"
