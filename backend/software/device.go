package software

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/shaders"
)

// DefaultCapabilities are the capabilities reported by New.
var DefaultCapabilities = gpucore.Capabilities{
	MaxPushConstantSize:         256,
	VertexWritableStorage:       true,
	ClearTexture:                true,
	MaxSampleCount:              4,
	MaxBufferSize:               256 << 20,
	MaxStorageBufferBindingSize: 128 << 20,
	MaxTextureDimension2D:       8192,
}

type texture struct {
	desc gpucore.TextureDesc
	img  *image.RGBA
}

type pipeline struct {
	desc gpucore.RenderPipelineDesc
	kind string
	run  program
}

// Device is a CPU implementation of gpucore.Device.
// It is safe for concurrent use.
type Device struct {
	mu   sync.Mutex
	caps gpucore.Capabilities
	log  *slog.Logger
	next uint64

	buffers         map[gpucore.BufferID][]byte
	textures        map[gpucore.TextureID]*texture
	samplers        map[gpucore.SamplerID]gpucore.SamplerDesc
	modules         map[gpucore.ShaderModuleID]gpucore.ShaderSource
	bindLayouts     map[gpucore.BindGroupLayoutID]*gpucore.BindGroupLayoutDesc
	bindGroups      map[gpucore.BindGroupID]*gpucore.BindGroupDesc
	pipelineLayouts map[gpucore.PipelineLayoutID]*gpucore.PipelineLayoutDesc
	pipelines       map[gpucore.RenderPipelineID]*pipeline

	stats Stats
}

// Option configures a Device.
type Option func(*Device)

// WithCapabilities overrides the reported capabilities.
func WithCapabilities(caps gpucore.Capabilities) Option {
	return func(d *Device) { d.caps = caps }
}

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// New returns a CPU device.
func New(opts ...Option) *Device {
	d := &Device{
		caps:            DefaultCapabilities,
		log:             slog.New(slog.DiscardHandler),
		buffers:         make(map[gpucore.BufferID][]byte),
		textures:        make(map[gpucore.TextureID]*texture),
		samplers:        make(map[gpucore.SamplerID]gpucore.SamplerDesc),
		modules:         make(map[gpucore.ShaderModuleID]gpucore.ShaderSource),
		bindLayouts:     make(map[gpucore.BindGroupLayoutID]*gpucore.BindGroupLayoutDesc),
		bindGroups:      make(map[gpucore.BindGroupID]*gpucore.BindGroupDesc),
		pipelineLayouts: make(map[gpucore.PipelineLayoutID]*gpucore.PipelineLayoutDesc),
		pipelines:       make(map[gpucore.RenderPipelineID]*pipeline),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// newID returns a fresh nonzero ID. The caller must hold d.mu.
func (d *Device) newID() uint64 {
	d.next++
	return d.next
}

// Capabilities implements gpucore.Device.
func (d *Device) Capabilities() gpucore.Capabilities { return d.caps }

// Stats returns a copy of the execution log.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats.clone()
}

// ResetStats clears the execution log.
func (d *Device) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = Stats{}
}

// CreateShaderModule implements gpucore.Device. The source is kept only
// for inspection.
func (d *Device) CreateShaderModule(src gpucore.ShaderSource, label string) (gpucore.ShaderModuleID, error) {
	if src.WGSL == "" && len(src.SPIRV) == 0 {
		return gpucore.InvalidID, fmt.Errorf("software: shader module %q has no source", label)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.ShaderModuleID(d.newID())
	d.modules[id] = src
	return id, nil
}

// DestroyShaderModule implements gpucore.Device.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.modules, id)
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(size uint64, _ gpucore.BufferUsage, label string) (gpucore.BufferID, error) {
	if size == 0 || (d.caps.MaxBufferSize != 0 && size > d.caps.MaxBufferSize) {
		return gpucore.InvalidID, fmt.Errorf("software: buffer %q: invalid size %d", label, size)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.BufferID(d.newID())
	d.buffers[id] = make([]byte, size)
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, id)
}

// WriteBuffer implements gpucore.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return gpucore.NotFound("buffer", uint64(id))
	}
	if offset+uint64(len(data)) > uint64(len(buf)) {
		return fmt.Errorf("software: write of %d bytes at %d overflows buffer of %d", len(data), offset, len(buf))
	}
	copy(buf[offset:], data)
	return nil
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("software: texture %q: empty size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if lim := d.caps.MaxTextureDimension2D; lim != 0 && (desc.Width > lim || desc.Height > lim) {
		return gpucore.InvalidID, fmt.Errorf("software: texture %q: %dx%d exceeds %d", desc.Label, desc.Width, desc.Height, lim)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.TexturesCreated++
	return d.addTextureLocked(*desc), nil
}

func (d *Device) addTextureLocked(desc gpucore.TextureDesc) gpucore.TextureID {
	id := gpucore.TextureID(d.newID())
	d.textures[id] = &texture{
		desc: desc,
		img:  image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height))),
	}
	return id
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, id)
}

// TextureDesc returns the descriptor of a live texture.
func (d *Device) TextureDesc(id gpucore.TextureID) (gpucore.TextureDesc, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	if !ok {
		return gpucore.TextureDesc{}, false
	}
	return t.desc, true
}

// Image returns a copy of a texture's contents.
func (d *Device) Image(id gpucore.TextureID) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	if !ok {
		return nil, gpucore.NotFound("texture", uint64(id))
	}
	return cloneRGBA(t.img), nil
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, region gpucore.Region, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	if !ok {
		return gpucore.NotFound("texture", uint64(id))
	}
	r := image.Rect(int(region.X), int(region.Y), int(region.X+region.Width), int(region.Y+region.Height))
	if !r.In(t.img.Rect) {
		return fmt.Errorf("software: region %v outside texture %v", r, t.img.Rect)
	}
	stride := int(region.Width) * 4
	if len(data) < stride*int(region.Height) {
		return fmt.Errorf("software: %d bytes for region %v", len(data), r)
	}
	for y := 0; y < r.Dy(); y++ {
		off := t.img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(t.img.Pix[off:off+stride], data[y*stride:(y+1)*stride])
	}
	return nil
}

// ReadTexture implements gpucore.Device.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	img, err := d.Image(id)
	if err != nil {
		return nil, err
	}
	return img.Pix, nil
}

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.SamplerID(d.newID())
	d.samplers[id] = *desc
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.samplers, id)
}

// CreateBindGroupLayout implements gpucore.Device.
func (d *Device) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.BindGroupLayoutID(d.newID())
	cp := *desc
	d.bindLayouts[id] = &cp
	return id, nil
}

// DestroyBindGroupLayout implements gpucore.Device.
func (d *Device) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bindLayouts, id)
}

// CreateBindGroup implements gpucore.Device. Every layout entry must be
// bound to a live resource of the matching type.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	layout, ok := d.bindLayouts[desc.Layout]
	if !ok {
		return gpucore.InvalidID, gpucore.NotFound("bind group layout", uint64(desc.Layout))
	}
	for _, le := range layout.Entries {
		e, ok := findEntry(desc.Entries, le.Binding)
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("software: bind group %q: binding %d missing", desc.Label, le.Binding)
		}
		if err := d.checkEntryLocked(le, e); err != nil {
			return gpucore.InvalidID, fmt.Errorf("software: bind group %q: %w", desc.Label, err)
		}
	}
	id := gpucore.BindGroupID(d.newID())
	cp := *desc
	d.bindGroups[id] = &cp
	return id, nil
}

func (d *Device) checkEntryLocked(le gpucore.BindGroupLayoutEntry, e gpucore.BindGroupEntry) error {
	switch le.Type {
	case gpucore.BindingTypeSampledTexture:
		if _, ok := d.textures[e.Texture]; !ok {
			return gpucore.NotFound("texture", uint64(e.Texture))
		}
	case gpucore.BindingTypeSampler:
		if _, ok := d.samplers[e.Sampler]; !ok {
			return gpucore.NotFound("sampler", uint64(e.Sampler))
		}
	default:
		buf, ok := d.buffers[e.Buffer]
		if !ok {
			return gpucore.NotFound("buffer", uint64(e.Buffer))
		}
		if uint64(len(buf)) < le.MinBindingSize {
			return fmt.Errorf("buffer of %d bytes below minimum binding size %d", len(buf), le.MinBindingSize)
		}
	}
	return nil
}

func findEntry(entries []gpucore.BindGroupEntry, binding uint32) (gpucore.BindGroupEntry, bool) {
	for _, e := range entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return gpucore.BindGroupEntry{}, false
}

// DestroyBindGroup implements gpucore.Device.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bindGroups, id)
}

// CreatePipelineLayout implements gpucore.Device.
func (d *Device) CreatePipelineLayout(desc *gpucore.PipelineLayoutDesc) (gpucore.PipelineLayoutID, error) {
	if desc.PushConstantSize > d.caps.MaxPushConstantSize {
		return gpucore.InvalidID, fmt.Errorf("software: push constants %d exceed %d", desc.PushConstantSize, d.caps.MaxPushConstantSize)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range desc.BindGroupLayouts {
		if _, ok := d.bindLayouts[l]; !ok {
			return gpucore.InvalidID, gpucore.NotFound("bind group layout", uint64(l))
		}
	}
	id := gpucore.PipelineLayoutID(d.newID())
	cp := *desc
	d.pipelineLayouts[id] = &cp
	return id, nil
}

// DestroyPipelineLayout implements gpucore.Device.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pipelineLayouts, id)
}

// CreateRenderPipeline implements gpucore.Device. The vertex entry point
// selects the CPU program.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	kind, stage, ok := shaders.ParseEntryPoint(desc.VertexEntry)
	if !ok || stage != shaders.StageVertex {
		return gpucore.InvalidID, fmt.Errorf("software: pipeline %q: bad vertex entry point %q", desc.Label, desc.VertexEntry)
	}
	run, ok := programs[kind]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("software: pipeline %q: no program for kind %q", desc.Label, kind)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pipelineLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, gpucore.NotFound("pipeline layout", uint64(desc.Layout))
	}
	if _, ok := d.modules[desc.Module]; !ok {
		return gpucore.InvalidID, gpucore.NotFound("shader module", uint64(desc.Module))
	}
	id := gpucore.RenderPipelineID(d.newID())
	d.pipelines[id] = &pipeline{desc: *desc, kind: kind, run: run}
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Device.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pipelines, id)
}

// CreateCommandEncoder implements gpucore.Device.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	return &encoder{dev: d, label: label}, nil
}

// Submit implements gpucore.Device. Commands execute synchronously.
func (d *Device) Submit(cmd gpucore.CommandBuffer) error {
	cb, ok := cmd.(*commandBuffer)
	if !ok || cb.dev != d {
		return fmt.Errorf("software: foreign command buffer %T", cmd)
	}
	if cb.submitted {
		return fmt.Errorf("software: command buffer %q submitted twice", cb.label)
	}
	cb.submitted = true

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Submits++
	for _, c := range cb.cmds {
		if err := c.execute(d); err != nil {
			return fmt.Errorf("software: %s: %w", cb.label, err)
		}
	}
	return nil
}

// LiveTextures returns the number of textures not yet destroyed.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

// Close implements gpucore.Device.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.buffers)
	clear(d.textures)
	clear(d.samplers)
	clear(d.modules)
	clear(d.bindLayouts)
	clear(d.bindGroups)
	clear(d.pipelineLayouts)
	clear(d.pipelines)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
