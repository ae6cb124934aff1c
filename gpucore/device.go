package gpucore

// Device abstracts over the GPU backends bedrock can render with.
//
// Implementations need not be safe for concurrent use: the compositor drives
// a device from a single goroutine.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while in use is undefined behavior
//   - IDs become invalid after destruction and must not be reused
type Device interface {
	// === Capabilities ===

	// Capabilities reports the limits and features of the device.
	Capabilities() Capabilities

	// === Shader Compilation ===

	// CreateShaderModule creates a shader module from WGSL or SPIR-V.
	CreateShaderModule(src ShaderSource, label string) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// === Buffer Management ===

	// CreateBuffer creates a GPU buffer of size bytes.
	CreateBuffer(size uint64, usage BufferUsage, label string) (BufferID, error)

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer copies data into a buffer at offset. The write is visible
	// to every command buffer submitted after the call.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// === Texture Management ===

	// CreateTexture creates a 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// WriteTexture uploads tightly packed RGBA8 texels into region.
	WriteTexture(id TextureID, region Region, data []byte) error

	// ReadTexture reads the whole texture back as tightly packed RGBA8.
	// This may cause a GPU-CPU synchronization stall.
	ReadTexture(id TextureID) ([]byte, error)

	// CreateSampler creates a clamp-to-edge sampler.
	CreateSampler(desc *SamplerDesc) (SamplerID, error)

	// DestroySampler releases a sampler.
	DestroySampler(id SamplerID)

	// === Pipeline Management ===

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreateBindGroup binds resources to a layout.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// CreatePipelineLayout combines bind group layouts and a push-constant range.
	CreatePipelineLayout(desc *PipelineLayoutDesc) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDesc) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)

	// === Command Recording and Execution ===

	// CreateCommandEncoder starts recording a command buffer.
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit executes a finished command buffer. Command buffers execute in
	// submission order.
	Submit(cmd CommandBuffer) error

	// === Presentation ===

	// CreateSurface creates a presentable surface for a window-system target.
	// The accepted target types are backend specific; unknown targets return
	// ErrUnsupportedTarget.
	CreateSurface(target any) (Surface, error)

	// Close releases the device. Resources still alive are released with it.
	Close()
}

// CommandEncoder records commands into a command buffer.
//
// Usage:
//  1. Obtain an encoder from Device.CreateCommandEncoder()
//  2. Record clears, copies and render passes
//  3. Call Finish() and pass the result to Device.Submit()
//
// The encoder is single-use. Errors from recording are reported by Finish.
type CommandEncoder interface {
	// ClearTexture clears a texture to transparent black.
	ClearTexture(id TextureID) error

	// CopyTextureToTexture copies the top-left width x height texels of src
	// into dst. Both textures must share a format family.
	CopyTextureToTexture(src, dst TextureID, width, height uint32) error

	// BeginRenderPass starts a render pass. The pass must be ended before
	// any other command is recorded.
	BeginRenderPass(desc *RenderPassDesc) (RenderPass, error)

	// Finish ends recording.
	Finish() (CommandBuffer, error)

	// Discard abandons the recording.
	Discard()
}

// RenderPass records draw commands.
//
// The pass is single-use and cannot be reused after End(). Invalid commands
// are reported when the owning encoder is finished.
type RenderPass interface {
	// SetPipeline sets the active render pipeline.
	SetPipeline(pipeline RenderPipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// SetPushConstants updates the push-constant range of the active pipeline.
	SetPushConstants(stages ShaderStage, offset uint32, data []byte)

	// SetScissorRect restricts rasterization to a rectangle.
	SetScissorRect(x, y, width, height uint32)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// End finishes the render pass.
	End()
}

// CommandBuffer is a finished recording, ready for Device.Submit.
type CommandBuffer interface {
	// Label returns the encoder label.
	Label() string
}
