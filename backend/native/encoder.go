package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/bedrock/gpucore"
)

// Push-constant emulation. Every SetPushConstants call takes the next slot
// of a uniform buffer bound with a dynamic offset.
const (
	constantSlotSize = 256
	constantSlots    = 64
)

// constantsRing is the uniform buffer backing emulated push constants.
type constantsRing struct {
	buffer hal.Buffer
	layout hal.BindGroupLayout
	group  hal.BindGroup
}

func (a *HALAdapter) constantsRing() (*constantsRing, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.constants != nil {
		return a.constants, nil
	}
	buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "Push Constants",
		Size:  constantSlotSize * constantSlots,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create constants buffer: %w", err)
	}
	layout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "Push Constants Layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: true,
			},
		}},
	})
	if err != nil {
		a.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("native: create constants layout: %w", err)
	}
	group, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "Push Constants",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: constantSlotSize},
		}},
	})
	if err != nil {
		a.device.DestroyBindGroupLayout(layout)
		a.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("native: create constants bind group: %w", err)
	}
	a.constants = &constantsRing{buffer: buf, layout: layout, group: group}
	return a.constants, nil
}

func (r *constantsRing) destroy(device hal.Device) {
	device.DestroyBindGroup(r.group)
	device.DestroyBindGroupLayout(r.layout)
	device.DestroyBuffer(r.buffer)
}

// CreateCommandEncoder starts recording a command buffer.
func (a *HALAdapter) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	enc, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	return &commandEncoder{adapter: a, label: label, enc: enc}, nil
}

// commandEncoder implements gpucore.CommandEncoder. The first recording
// error is kept and reported by Finish.
type commandEncoder struct {
	adapter *HALAdapter
	label   string
	enc     hal.CommandEncoder

	constants []byte
	staging   []hal.Buffer

	err      error
	passOpen bool
	finished bool
}

func (e *commandEncoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *commandEncoder) check() error {
	switch {
	case e.finished:
		return gpucore.ErrEncoderFinished
	case e.passOpen:
		return gpucore.ErrPassOpen
	}
	return nil
}

// ClearTexture records a render pass that only clears the texture to
// transparent black.
func (e *commandEncoder) ClearTexture(id gpucore.TextureID) error {
	if err := e.check(); err != nil {
		return err
	}
	t, err := e.adapter.texture(id)
	if err != nil {
		return err
	}
	rp := e.enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "Clear Pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.End()
	return nil
}

// CopyTextureToTexture copies the top-left width x height texels of src
// into dst through a staging buffer with a 256-byte aligned row pitch.
func (e *commandEncoder) CopyTextureToTexture(src, dst gpucore.TextureID, width, height uint32) error {
	if err := e.check(); err != nil {
		return err
	}
	s, err := e.adapter.texture(src)
	if err != nil {
		return err
	}
	d, err := e.adapter.texture(dst)
	if err != nil {
		return err
	}
	if s.desc.Format.Linear() != d.desc.Format.Linear() {
		return fmt.Errorf("native: copy between %v and %v", s.desc.Format, d.desc.Format)
	}
	width = min(width, s.desc.Width, d.desc.Width)
	height = min(height, s.desc.Height, d.desc.Height)
	if width == 0 || height == 0 {
		return nil
	}
	pitch := alignedPitch(width)
	staging, err := e.adapter.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "Copy Staging",
		Size:  uint64(pitch) * uint64(height),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create copy staging buffer: %w", err)
	}
	e.staging = append(e.staging, staging)

	layout := hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: height}
	size := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}

	transition(e.enc, s.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageCopySrc)
	e.enc.CopyTextureToBuffer(s.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: layout,
		TextureBase:  hal.ImageCopyTexture{Texture: s.tex, MipLevel: 0},
		Size:         size,
	}})
	transition(e.enc, s.tex, gputypes.TextureUsageCopySrc, gputypes.TextureUsageRenderAttachment)

	transition(e.enc, d.tex, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageCopyDst)
	e.enc.CopyBufferToTexture(staging, d.tex, []hal.BufferTextureCopy{{
		BufferLayout: layout,
		TextureBase:  hal.ImageCopyTexture{Texture: d.tex, MipLevel: 0},
		Size:         size,
	}})
	transition(e.enc, d.tex, gputypes.TextureUsageCopyDst, gputypes.TextureUsageTextureBinding)
	return nil
}

// BeginRenderPass starts a render pass with one color attachment.
func (e *commandEncoder) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPass, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	view, err := e.adapter.texture(desc.Color.View)
	if err != nil {
		return nil, err
	}
	att := hal.RenderPassColorAttachment{
		View:    view.view,
		LoadOp:  convertLoadOp(desc.Color.LoadOp),
		StoreOp: convertStoreOp(desc.Color.StoreOp),
		ClearValue: gputypes.Color{
			R: desc.Color.ClearColor[0],
			G: desc.Color.ClearColor[1],
			B: desc.Color.ClearColor[2],
			A: desc.Color.ClearColor[3],
		},
	}
	if desc.Color.ResolveTarget != gpucore.InvalidID {
		resolve, err := e.adapter.texture(desc.Color.ResolveTarget)
		if err != nil {
			return nil, err
		}
		att.ResolveTarget = resolve.view
	}
	rp := e.enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{att},
	})
	e.passOpen = true
	return &renderPass{encoder: e, pass: rp, constantsGroup: -1}, nil
}

// Finish ends recording. Recording errors surface here.
func (e *commandEncoder) Finish() (gpucore.CommandBuffer, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.finished = true
	if e.err != nil {
		e.discard()
		return nil, fmt.Errorf("native: %s: %w", e.label, e.err)
	}
	cmd, err := e.enc.EndEncoding()
	if err != nil {
		e.releaseStaging()
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	return &commandBuffer{
		adapter:   e.adapter,
		label:     e.label,
		cmd:       cmd,
		constants: e.constants,
		staging:   e.staging,
	}, nil
}

// Discard abandons the recording.
func (e *commandEncoder) Discard() {
	if e.finished {
		return
	}
	e.finished = true
	e.discard()
}

func (e *commandEncoder) discard() {
	e.enc.DiscardEncoding()
	e.releaseStaging()
}

func (e *commandEncoder) releaseStaging() {
	for _, b := range e.staging {
		e.adapter.device.DestroyBuffer(b)
	}
	e.staging = nil
}

// pushConstants copies data into the next constants slot and returns the
// slot's dynamic offset.
func (e *commandEncoder) pushConstants(offset uint32, data []byte) (uint32, error) {
	slot := len(e.constants) / constantSlotSize
	if slot >= constantSlots {
		return 0, ErrTooManyDraws
	}
	if int(offset)+len(data) > constantSlotSize {
		return 0, fmt.Errorf("native: push constants [%d, %d) exceed %d bytes", offset, int(offset)+len(data), constantSlotSize)
	}
	start := len(e.constants)
	e.constants = append(e.constants, make([]byte, constantSlotSize)...)
	copy(e.constants[start+int(offset):], data)
	return uint32(start), nil
}

// renderPass implements gpucore.RenderPass.
type renderPass struct {
	encoder        *commandEncoder
	pass           hal.RenderPassEncoder
	constantsGroup int
	ended          bool
}

func (p *renderPass) SetPipeline(id gpucore.RenderPipelineID) {
	p.encoder.adapter.mu.RLock()
	pipe, ok := p.encoder.adapter.pipelines[id]
	p.encoder.adapter.mu.RUnlock()
	if !ok {
		p.encoder.fail(gpucore.NotFound("render pipeline", uint64(id)))
		return
	}
	p.pass.SetPipeline(pipe.pipeline)
	p.constantsGroup = pipe.constantsGroup
}

func (p *renderPass) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	p.encoder.adapter.mu.RLock()
	group, ok := p.encoder.adapter.bindGroups[id]
	p.encoder.adapter.mu.RUnlock()
	if !ok {
		p.encoder.fail(gpucore.NotFound("bind group", uint64(id)))
		return
	}
	p.pass.SetBindGroup(index, group, nil)
}

func (p *renderPass) SetPushConstants(_ gpucore.ShaderStage, offset uint32, data []byte) {
	if p.constantsGroup < 0 {
		p.encoder.fail(errors.New("native: pipeline declares no push constants"))
		return
	}
	dynamic, err := p.encoder.pushConstants(offset, data)
	if err != nil {
		p.encoder.fail(err)
		return
	}
	p.pass.SetBindGroup(uint32(p.constantsGroup), p.encoder.adapter.constants.group, []uint32{dynamic})
}

func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	p.pass.SetScissorRect(x, y, width, height)
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if instanceCount == 0 || vertexCount == 0 {
		return
	}
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.pass.End()
	p.encoder.passOpen = false
}

// commandBuffer is a finished recording with the constants and staging
// buffers it depends on.
type commandBuffer struct {
	adapter   *HALAdapter
	label     string
	cmd       hal.CommandBuffer
	constants []byte
	staging   []hal.Buffer
}

func (c *commandBuffer) Label() string { return c.label }

func (c *commandBuffer) release() {
	c.adapter.device.FreeCommandBuffer(c.cmd)
	for _, b := range c.staging {
		c.adapter.device.DestroyBuffer(b)
	}
	c.staging = nil
}
