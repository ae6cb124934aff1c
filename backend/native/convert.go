package native

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/bedrock/gpucore"
)

func convertTextureFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpucore.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case gpucore.TextureFormatRGBA8UnormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case gpucore.TextureFormatBGRA8UnormSRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb
	default:
		return gputypes.TextureFormatUndefined
	}
}

// textureFormatFromHAL returns the gpucore format for f, or 0 when bedrock
// cannot render into it.
func textureFormatFromHAL(f gputypes.TextureFormat) gpucore.TextureFormat {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return gpucore.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return gpucore.TextureFormatRGBA8UnormSRGB
	case gputypes.TextureFormatBGRA8Unorm:
		return gpucore.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return gpucore.TextureFormatBGRA8UnormSRGB
	default:
		return 0
	}
}

func isBGRA(f gpucore.TextureFormat) bool {
	return f.Linear() == gpucore.TextureFormatBGRA8Unorm
}

func convertBufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&gpucore.BufferUsageCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	if u&gpucore.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if u&gpucore.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&gpucore.BufferUsageStorage != 0 {
		out |= gputypes.BufferUsageStorage
	}
	return out
}

func convertTextureUsage(u gpucore.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&gpucore.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&gpucore.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&gpucore.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&gpucore.TextureUsageStorageBinding != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u&gpucore.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

func convertLayoutEntry(e gpucore.BindGroupLayoutEntry) gputypes.BindGroupLayoutEntry {
	out := gputypes.BindGroupLayoutEntry{Binding: e.Binding}
	if e.Visibility&gpucore.ShaderStageVertex != 0 {
		out.Visibility |= gputypes.ShaderStageVertex
	}
	if e.Visibility&gpucore.ShaderStageFragment != 0 {
		out.Visibility |= gputypes.ShaderStageFragment
	}
	switch e.Type {
	case gpucore.BindingTypeUniformBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: e.MinBindingSize}
	case gpucore.BindingTypeStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage, MinBindingSize: e.MinBindingSize}
	case gpucore.BindingTypeReadOnlyStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage, MinBindingSize: e.MinBindingSize}
	case gpucore.BindingTypeSampler:
		out.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case gpucore.BindingTypeSampledTexture:
		out.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	}
	return out
}

func convertFilter(f gpucore.FilterMode) gputypes.FilterMode {
	if f == gpucore.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func convertLoadOp(op gpucore.LoadOp) gputypes.LoadOp {
	if op == gpucore.LoadOpClear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

func convertStoreOp(op gpucore.StoreOp) gputypes.StoreOp {
	if op == gpucore.StoreOpDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

// blendState returns the color blend for mode. BlendReplace disables blending.
func blendState(mode gpucore.BlendMode) *gputypes.BlendState {
	switch mode {
	case gpucore.BlendPremultiplied:
		premul := gputypes.BlendStatePremultiplied()
		return &premul
	case gpucore.BlendAlpha:
		return &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}

// swizzleRB swaps the red and blue channels of tightly packed 8-bit texels.
func swizzleRB(px []byte) {
	for i := 0; i+3 < len(px); i += 4 {
		px[i], px[i+2] = px[i+2], px[i]
	}
}
