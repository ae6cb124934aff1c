// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/shaders"
)

// Pipeline is a drawable's render pipeline and its layout.
type Pipeline struct {
	device   gpucore.Device
	layout   gpucore.PipelineLayoutID
	pipeline gpucore.RenderPipelineID
}

// Rebuild replaces the pipeline with one for kind targeting the context's
// surface format. The pipeline layout combines the local layout with the
// universal layout and a push-constant range of shaders.ConstantsSize.
func (p *Pipeline) Rebuild(ctx *Context, kind Kind, local gpucore.BindGroupLayoutID) error {
	layout, err := ctx.Device.CreatePipelineLayout(&gpucore.PipelineLayoutDesc{
		Label:            kind.String() + " Pipeline Layout",
		BindGroupLayouts: []gpucore.BindGroupLayoutID{local, ctx.UniversalLayout},
		PushConstantSize: shaders.ConstantsSize,
	})
	if err != nil {
		return fmt.Errorf("render: %s pipeline layout: %w", kind, err)
	}
	pipeline, err := ctx.Device.CreateRenderPipeline(&gpucore.RenderPipelineDesc{
		Label:         kind.String() + " Pipeline",
		Layout:        layout,
		Module:        ctx.Module,
		VertexEntry:   ctx.Program.EntryPoint(kind.ShaderKind(), shaders.StageVertex),
		FragmentEntry: ctx.Program.EntryPoint(kind.ShaderKind(), shaders.StageFragment),
		Format:        ctx.SurfaceFormat,
		Blend:         gpucore.BlendAlpha,
		SampleCount:   gpucore.SampleCount,
	})
	if err != nil {
		ctx.Device.DestroyPipelineLayout(layout)
		return fmt.Errorf("render: %s pipeline: %w", kind, err)
	}

	p.Destroy()
	p.device, p.layout, p.pipeline = ctx.Device, layout, pipeline
	ctx.Log().Debug("render: pipeline built", "kind", kind, "format", ctx.SurfaceFormat)
	return nil
}

// ID returns the render pipeline, or gpucore.InvalidID before Rebuild.
func (p *Pipeline) ID() gpucore.RenderPipelineID { return p.pipeline }

// Ready reports whether Rebuild has succeeded.
func (p *Pipeline) Ready() bool { return p.pipeline != gpucore.InvalidID }

// Destroy releases the pipeline and its layout.
func (p *Pipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != gpucore.InvalidID {
		p.device.DestroyRenderPipeline(p.pipeline)
	}
	if p.layout != gpucore.InvalidID {
		p.device.DestroyPipelineLayout(p.layout)
	}
	p.pipeline, p.layout = gpucore.InvalidID, gpucore.InvalidID
}
