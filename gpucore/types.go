package gpucore

// Resource IDs
//
// These opaque IDs represent GPU resources. Each backend maintains a mapping
// between IDs and actual backend resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// RenderPipelineID is an opaque handle to a render pipeline.
type RenderPipelineID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 6

	// BufferUsageStorage indicates the buffer can be used as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 7
)

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm TextureFormat = iota + 1

	// TextureFormatRGBA8UnormSRGB is 8-bit RGBA, normalized unsigned integer in sRGB color space.
	TextureFormatRGBA8UnormSRGB

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	TextureFormatBGRA8Unorm

	// TextureFormatBGRA8UnormSRGB is 8-bit BGRA, normalized unsigned integer in sRGB color space.
	TextureFormatBGRA8UnormSRGB
)

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatRGBA8UnormSRGB:
		return "RGBA8UnormSrgb"
	case TextureFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case TextureFormatBGRA8UnormSRGB:
		return "BGRA8UnormSrgb"
	default:
		return "Undefined"
	}
}

// IsSRGB reports whether the format applies the sRGB transfer function.
func (f TextureFormat) IsSRGB() bool {
	return f == TextureFormatRGBA8UnormSRGB || f == TextureFormatBGRA8UnormSRGB
}

// Linear returns the format without its sRGB suffix.
func (f TextureFormat) Linear() TextureFormat {
	switch f {
	case TextureFormatRGBA8UnormSRGB:
		return TextureFormatRGBA8Unorm
	case TextureFormatBGRA8UnormSRGB:
		return TextureFormatBGRA8Unorm
	default:
		return f
	}
}

// SRGB returns the format with its sRGB suffix.
func (f TextureFormat) SRGB() TextureFormat {
	switch f {
	case TextureFormatRGBA8Unorm:
		return TextureFormatRGBA8UnormSRGB
	case TextureFormatBGRA8Unorm:
		return TextureFormatBGRA8UnormSRGB
	default:
		return f
	}
}

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopySrc indicates the texture can be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << 0

	// TextureUsageCopyDst indicates the texture can be used as a copy destination.
	TextureUsageCopyDst TextureUsage = 1 << 1

	// TextureUsageTextureBinding indicates the texture can be bound as a sampled texture.
	TextureUsageTextureBinding TextureUsage = 1 << 2

	// TextureUsageStorageBinding indicates the texture can be bound as a storage texture.
	TextureUsageStorageBinding TextureUsage = 1 << 3

	// TextureUsageRenderAttachment indicates the texture can be used as a render target.
	TextureUsageRenderAttachment TextureUsage = 1 << 4
)

// BindingType specifies the type of a shader binding.
type BindingType uint32

// Binding types.
const (
	// BindingTypeUniformBuffer is a uniform buffer binding.
	BindingTypeUniformBuffer BindingType = iota + 1

	// BindingTypeStorageBuffer is a storage buffer binding (read-write).
	BindingTypeStorageBuffer

	// BindingTypeReadOnlyStorageBuffer is a read-only storage buffer binding.
	BindingTypeReadOnlyStorageBuffer

	// BindingTypeSampler is a filtering sampler binding.
	BindingTypeSampler

	// BindingTypeSampledTexture is a filterable float 2D texture binding.
	BindingTypeSampledTexture
)

// ShaderStage is a bitmask of shader stages.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex   ShaderStage = 1 << 0
	ShaderStageFragment ShaderStage = 1 << 1

	ShaderStageAll = ShaderStageVertex | ShaderStageFragment
)

// FilterMode selects texture filtering.
type FilterMode uint8

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// BlendMode selects how fragment output is combined with the target.
type BlendMode uint8

// Blend modes.
const (
	// BlendAlpha is straight alpha blending: src*a + dst*(1-a).
	BlendAlpha BlendMode = iota

	// BlendPremultiplied expects premultiplied fragment colors: src + dst*(1-a).
	BlendPremultiplied

	// BlendReplace writes fragments unchanged.
	BlendReplace
)

// LoadOp is the action taken on a color attachment when a pass begins.
type LoadOp uint8

// Load operations.
const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
)

// StoreOp is the action taken on a color attachment when a pass ends.
type StoreOp uint8

// Store operations.
const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// PresentMode controls how acquired frames are queued for display.
type PresentMode uint8

// Present modes.
const (
	PresentModeFifo PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

// String returns the present mode name.
func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "fifo"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ShaderSource holds shader code in one of the supported encodings.
// Exactly one field should be set.
type ShaderSource struct {
	WGSL  string
	SPIRV []uint32
}

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage

	// SampleCount is 1 for ordinary textures and 4 for multisampled targets.
	// Zero means 1.
	SampleCount uint32
}

// Region is a rectangle of texels.
type Region struct {
	X, Y          uint32
	Width, Height uint32
}

// SamplerDesc describes a texture sampler. Addressing is always clamp-to-edge.
type SamplerDesc struct {
	// Label is an optional debug label.
	Label string

	Filter FilterMode
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindGroupLayoutEntry
}

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Type is the type of resource bound at this index.
	Type BindingType

	// Visibility lists the stages that can access the binding.
	Visibility ShaderStage

	// MinBindingSize is the minimum buffer size for buffer bindings.
	// Set to 0 for non-buffer bindings.
	MinBindingSize uint64
}

// BindGroupEntry describes a single binding in a bind group.
// Exactly one of Buffer, Texture and Sampler is set.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind (for buffer bindings).
	Buffer BufferID

	// Offset is the offset into the buffer.
	Offset uint64

	// Size is the size of the buffer range to bind.
	// Use 0 to bind the entire buffer from offset.
	Size uint64

	// Texture is the texture to bind (for texture bindings).
	Texture TextureID

	// Sampler is the sampler to bind (for sampler bindings).
	Sampler SamplerID
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the bind group layout.
	Layout BindGroupLayoutID

	// Entries are the resource bindings.
	Entries []BindGroupEntry
}

// PipelineLayoutDesc describes a pipeline layout.
type PipelineLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// BindGroupLayouts are indexed by group number.
	BindGroupLayouts []BindGroupLayoutID

	// PushConstantSize is the size in bytes of the push-constant range
	// visible to all stages. Zero declares no range.
	PushConstantSize uint32
}

// RenderPipelineDesc describes a render pipeline that draws triangle lists
// without vertex buffers, depth or stencil.
type RenderPipelineDesc struct {
	// Label is an optional debug label.
	Label string

	Layout        PipelineLayoutID
	Module        ShaderModuleID
	VertexEntry   string
	FragmentEntry string

	// Format is the color target format.
	Format TextureFormat
	Blend  BlendMode

	// SampleCount is the multisample count of the color target.
	SampleCount uint32
}

// ColorAttachment describes the color target of a render pass.
type ColorAttachment struct {
	// View is the texture rendered into.
	View TextureID

	// ResolveTarget receives the resolved image when View is multisampled.
	ResolveTarget TextureID

	LoadOp  LoadOp
	StoreOp StoreOp

	// ClearColor is used when LoadOp is LoadOpClear.
	ClearColor [4]float64
}

// RenderPassDesc describes a render pass with a single color attachment.
type RenderPassDesc struct {
	// Label is an optional debug label.
	Label string

	Color ColorAttachment
}
