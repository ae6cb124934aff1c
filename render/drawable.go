// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

// DefaultCapacity is the initial instance capacity of a drawable.
const DefaultCapacity = 100_000

// DefaultAtlasSize is the edge length of glyph and sprite atlases.
const DefaultAtlasSize = 2048

// Drawable renders one content kind of a layer.
type Drawable interface {
	// Kind reports the content kind.
	Kind() Kind

	// SurfaceChanged rebuilds the render pipeline for the current surface
	// format. It runs once the surface is ready and after every resize.
	SurfaceChanged(ctx *Context) error

	// Draw records one instanced draw of the layer content into the pass.
	Draw(pass *Pass, layer *scene.Layer) error

	// Destroy releases GPU resources.
	Destroy()
}

// Factory creates a drawable. It must not depend on the surface format.
type Factory func(ctx *Context) (Drawable, error)

// Context carries the device handles shared by all drawables.
type Context struct {
	Device  gpucore.Device
	Program *shaders.Program

	// Module is the compiled Program.
	Module gpucore.ShaderModuleID

	// UniversalLayout is the layout of the bind group at index 1.
	UniversalLayout gpucore.BindGroupLayoutID

	// SurfaceFormat is the render target format. It is valid in
	// SurfaceChanged and Draw.
	SurfaceFormat gpucore.TextureFormat

	// Capacity is the initial instance capacity of each drawable.
	Capacity int

	// AtlasSize is the edge length of glyph and sprite atlases.
	AtlasSize uint32

	Logger *slog.Logger
}

// Log returns the context logger, or a discarding one.
func (c *Context) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Context) capacity() int {
	if c.Capacity <= 0 {
		return DefaultCapacity
	}
	return c.Capacity
}

// UniversalLayoutDesc describes the universal bind group layout:
// the backdrop texture at binding 0 and its sampler at binding 1.
func UniversalLayoutDesc() *gpucore.BindGroupLayoutDesc {
	return &gpucore.BindGroupLayoutDesc{
		Label: "Universal Bind Group Layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeSampledTexture, Visibility: gpucore.ShaderStageFragment},
			{Binding: 1, Type: gpucore.BindingTypeSampler, Visibility: gpucore.ShaderStageFragment},
		},
	}
}

// Pass is the per-draw state handed to Drawable.Draw.
type Pass struct {
	Context   *Context
	Encoder   gpucore.RenderPass
	Constants shaders.Constants

	// Universal is the bind group exposing the refreshed backdrop.
	Universal gpucore.BindGroupID
}

// SurfaceSize returns the surface size carried in the constants.
func (p *Pass) SurfaceSize() scene.Vec2 {
	return scene.V2(p.Constants.SurfaceSize[0], p.Constants.SurfaceSize[1])
}

// DrawInstances binds the pipeline and both bind groups, pushes the
// constants and draws count instances of 6 vertices.
func (p *Pass) DrawInstances(pipeline gpucore.RenderPipelineID, local gpucore.BindGroupID, count uint32) {
	p.Encoder.SetPipeline(pipeline)
	p.Encoder.SetBindGroup(0, local)
	p.Encoder.SetBindGroup(1, p.Universal)
	p.Encoder.SetPushConstants(gpucore.ShaderStageAll, 0, p.Constants.Bytes())
	p.Encoder.Draw(shaders.VerticesPerInstance, count, 0, 0)
}
