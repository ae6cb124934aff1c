package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/shaders"
)

// command is one recorded encoder command. The caller holds d.mu.
type command interface {
	execute(d *Device) error
}

type encoder struct {
	dev      *Device
	label    string
	cmds     []command
	pass     *renderPass
	finished bool
}

func (e *encoder) checkRecording() error {
	switch {
	case e.finished:
		return gpucore.ErrEncoderFinished
	case e.pass != nil:
		return gpucore.ErrPassOpen
	}
	return nil
}

// ClearTexture implements gpucore.CommandEncoder.
func (e *encoder) ClearTexture(id gpucore.TextureID) error {
	if err := e.checkRecording(); err != nil {
		return fmt.Errorf("clear texture: %w", err)
	}
	e.cmds = append(e.cmds, clearCmd{id})
	return nil
}

// CopyTextureToTexture implements gpucore.CommandEncoder.
func (e *encoder) CopyTextureToTexture(src, dst gpucore.TextureID, width, height uint32) error {
	if err := e.checkRecording(); err != nil {
		return fmt.Errorf("copy texture: %w", err)
	}
	e.cmds = append(e.cmds, copyCmd{src: src, dst: dst, width: width, height: height})
	return nil
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *encoder) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPass, error) {
	if err := e.checkRecording(); err != nil {
		return nil, fmt.Errorf("begin render pass: %w", err)
	}
	if desc == nil {
		return nil, errors.New("begin render pass: descriptor is nil")
	}
	e.pass = &renderPass{enc: e, cmd: &passCmd{desc: *desc}}
	return e.pass, nil
}

// Finish implements gpucore.CommandEncoder.
func (e *encoder) Finish() (gpucore.CommandBuffer, error) {
	if err := e.checkRecording(); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	e.finished = true
	return &commandBuffer{dev: e.dev, label: e.label, cmds: e.cmds}, nil
}

// Discard implements gpucore.CommandEncoder.
func (e *encoder) Discard() {
	e.finished = true
	e.pass = nil
	e.cmds = nil
}

type commandBuffer struct {
	dev       *Device
	label     string
	cmds      []command
	submitted bool
}

func (cb *commandBuffer) Label() string { return cb.label }

type clearCmd struct {
	tex gpucore.TextureID
}

func (c clearCmd) execute(d *Device) error {
	t, ok := d.textures[c.tex]
	if !ok {
		return gpucore.NotFound("texture", uint64(c.tex))
	}
	clear(t.img.Pix)
	d.stats.Clears++
	return nil
}

type copyCmd struct {
	src, dst      gpucore.TextureID
	width, height uint32
}

func (c copyCmd) execute(d *Device) error {
	src, ok := d.textures[c.src]
	if !ok {
		return gpucore.NotFound("texture", uint64(c.src))
	}
	dst, ok := d.textures[c.dst]
	if !ok {
		return gpucore.NotFound("texture", uint64(c.dst))
	}
	r := image.Rect(0, 0, int(c.width), int(c.height))
	if !r.In(src.img.Rect) || !r.In(dst.img.Rect) {
		return fmt.Errorf("copy of %dx%d exceeds %v or %v", c.width, c.height, src.img.Rect, dst.img.Rect)
	}
	draw.Draw(dst.img, r, src.img, image.Point{}, draw.Src)
	d.stats.Copies++
	return nil
}

// passOp is one recorded render pass command.
type passOp struct {
	op       passOpKind
	pipeline gpucore.RenderPipelineID
	index    uint32
	group    gpucore.BindGroupID
	offset   uint32
	data     []byte
	scissor  gpucore.Region
	draw     [4]uint32
}

type passOpKind uint8

const (
	opSetPipeline passOpKind = iota
	opSetBindGroup
	opSetPushConstants
	opSetScissor
	opDraw
)

type renderPass struct {
	enc   *encoder
	cmd   *passCmd
	ended bool
}

func (p *renderPass) record(op passOp) {
	if !p.ended {
		p.cmd.ops = append(p.cmd.ops, op)
	}
}

func (p *renderPass) SetPipeline(pipeline gpucore.RenderPipelineID) {
	p.record(passOp{op: opSetPipeline, pipeline: pipeline})
}

func (p *renderPass) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	p.record(passOp{op: opSetBindGroup, index: index, group: group})
}

func (p *renderPass) SetPushConstants(_ gpucore.ShaderStage, offset uint32, data []byte) {
	p.record(passOp{op: opSetPushConstants, offset: offset, data: slices.Clone(data)})
}

func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	p.record(passOp{op: opSetScissor, scissor: gpucore.Region{X: x, Y: y, Width: width, Height: height}})
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record(passOp{op: opDraw, draw: [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance}})
}

func (p *renderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.enc.cmds = append(p.enc.cmds, p.cmd)
	p.enc.pass = nil
}

type passCmd struct {
	desc gpucore.RenderPassDesc
	ops  []passOp
}

type passState struct {
	pipeline  *pipeline
	groups    [4]*gpucore.BindGroupDesc
	push      [256]byte
	scissor   gpucore.Region
	scissored bool
}

func (c *passCmd) execute(d *Device) error {
	att := c.desc.Color
	target, ok := d.textures[att.View]
	if !ok {
		return gpucore.NotFound("texture", uint64(att.View))
	}
	var resolve *texture
	if att.ResolveTarget != gpucore.InvalidID {
		if resolve, ok = d.textures[att.ResolveTarget]; !ok {
			return gpucore.NotFound("texture", uint64(att.ResolveTarget))
		}
	}
	if att.LoadOp == gpucore.LoadOpClear {
		cc := att.ClearColor
		draw.Draw(target.img, target.img.Rect, image.NewUniform(color.RGBA{
			R: unit8(float32(cc[0] * cc[3])),
			G: unit8(float32(cc[1] * cc[3])),
			B: unit8(float32(cc[2] * cc[3])),
			A: unit8(float32(cc[3])),
		}), image.Point{}, draw.Src)
	}

	rec := PassRecord{Label: c.desc.Label, Load: att.LoadOp, Target: att.View, Resolve: att.ResolveTarget}
	var st passState
	for _, op := range c.ops {
		switch op.op {
		case opSetPipeline:
			p, ok := d.pipelines[op.pipeline]
			if !ok {
				return gpucore.NotFound("render pipeline", uint64(op.pipeline))
			}
			st.pipeline = p
		case opSetBindGroup:
			g, ok := d.bindGroups[op.group]
			if !ok {
				return gpucore.NotFound("bind group", uint64(op.group))
			}
			if int(op.index) >= len(st.groups) {
				return fmt.Errorf("bind group index %d out of range", op.index)
			}
			st.groups[op.index] = g
		case opSetPushConstants:
			if int(op.offset)+len(op.data) > len(st.push) {
				return fmt.Errorf("push constants overflow at %d+%d", op.offset, len(op.data))
			}
			copy(st.push[op.offset:], op.data)
		case opSetScissor:
			st.scissor, st.scissored = op.scissor, true
		case opDraw:
			dr, err := d.executeDraw(&st, target.img, op.draw)
			if err != nil {
				return err
			}
			rec.Draws = append(rec.Draws, dr)
		}
	}

	if resolve != nil {
		draw.Draw(resolve.img, resolve.img.Rect, target.img, image.Point{}, draw.Src)
	}
	d.stats.Passes = append(d.stats.Passes, rec)
	return nil
}

// executeDraw runs the bound program over the instance range of a draw.
func (d *Device) executeDraw(st *passState, target *image.RGBA, args [4]uint32) (DrawRecord, error) {
	vertexCount, instanceCount, firstInstance := args[0], args[1], args[3]
	if st.pipeline == nil {
		return DrawRecord{}, errors.New("draw without pipeline")
	}
	consts, err := shaders.DecodeConstants(st.push[:])
	if err != nil {
		return DrawRecord{}, err
	}
	rec := DrawRecord{
		Kind:          st.pipeline.kind,
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		Scissor:       st.scissor,
		Scissored:     st.scissored,
		Constants:     consts,
	}

	local, universal := st.groups[0], st.groups[1]
	if local == nil || universal == nil {
		return rec, errors.New("draw without bind groups 0 and 1")
	}
	storage, err := d.bindingBuffer(local, 0)
	if err != nil {
		return rec, err
	}
	start := uint64(firstInstance) * shaders.InstanceSize
	end := start + uint64(instanceCount)*shaders.InstanceSize
	if end > uint64(len(storage)) {
		return rec, fmt.Errorf("instances %d..%d exceed buffer of %d bytes", firstInstance, firstInstance+instanceCount, len(storage))
	}
	rec.Instances = slices.Clone(storage[start:end])
	if instanceCount == 0 || vertexCount < shaders.VerticesPerInstance {
		return rec, nil
	}

	clip := target.Rect
	if st.scissored {
		s := st.scissor
		clip = clip.Intersect(image.Rect(int(s.X), int(s.Y), int(s.X+s.Width), int(s.Y+s.Height)))
	}
	dc := &drawContext{
		target:    target,
		clip:      clip,
		constants: consts,
		instances: rec.Instances,
		backdrop:  d.bindingTexture(universal, 0),
		atlas:     d.bindingTexture(local, 1),
	}
	return rec, st.pipeline.run(dc)
}

func (d *Device) bindingBuffer(g *gpucore.BindGroupDesc, binding uint32) ([]byte, error) {
	e, ok := findEntry(g.Entries, binding)
	if !ok {
		return nil, fmt.Errorf("bind group %q has no binding %d", g.Label, binding)
	}
	buf, ok := d.buffers[e.Buffer]
	if !ok {
		return nil, gpucore.NotFound("buffer", uint64(e.Buffer))
	}
	buf = buf[min(e.Offset, uint64(len(buf))):]
	if e.Size != 0 && e.Size < uint64(len(buf)) {
		buf = buf[:e.Size]
	}
	return buf, nil
}

func (d *Device) bindingTexture(g *gpucore.BindGroupDesc, binding uint32) *image.RGBA {
	e, ok := findEntry(g.Entries, binding)
	if !ok {
		return nil
	}
	t, ok := d.textures[e.Texture]
	if !ok {
		return nil
	}
	return t.img
}
