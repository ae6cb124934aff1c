package native

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/bedrock/gpucore"
)

// submitTimeout bounds the wait for a submitted command buffer.
const submitTimeout = 5 * time.Second

// HALAdapter implements gpucore.Device using gogpu/wgpu/hal directly.
//
// Thread Safety: HALAdapter is safe for concurrent use from multiple
// goroutines. All resource maps are protected by a mutex.
type HALAdapter struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue
	limits gputypes.Limits
	log    *slog.Logger

	// instance is set when the adapter opened the device itself.
	instance hal.Instance
	external bool
	closed   bool

	nextID atomic.Uint64

	buffers          map[gpucore.BufferID]*halBuffer
	textures         map[gpucore.TextureID]*halTexture
	samplers         map[gpucore.SamplerID]hal.Sampler
	shaderModules    map[gpucore.ShaderModuleID]hal.ShaderModule
	bindGroupLayouts map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	bindGroups       map[gpucore.BindGroupID]hal.BindGroup
	pipelineLayouts  map[gpucore.PipelineLayoutID]*halPipelineLayout
	pipelines        map[gpucore.RenderPipelineID]*halPipeline

	constants *constantsRing
}

type halBuffer struct {
	buf  hal.Buffer
	size uint64
}

type halTexture struct {
	tex  hal.Texture
	view hal.TextureView
	desc gpucore.TextureDesc

	// borrowed textures belong to a Presenter and are never destroyed here.
	borrowed bool
}

type halPipelineLayout struct {
	layout hal.PipelineLayout

	// constantsGroup is the group index of the emulated push-constant
	// range, or -1 when the layout declares none.
	constantsGroup int
}

type halPipeline struct {
	pipeline       hal.RenderPipeline
	constantsGroup int
}

// Option configures a HALAdapter.
type Option func(*config)

type config struct {
	backend gputypes.Backend
	limits  gputypes.Limits
	log     *slog.Logger
}

// WithBackend selects the hal backend Open bootstraps. The default is Vulkan.
func WithBackend(b gputypes.Backend) Option {
	return func(c *config) { c.backend = b }
}

// WithLimits sets the limits the device is opened with.
func WithLimits(l gputypes.Limits) Option {
	return func(c *config) { c.limits = l }
}

// WithLogger sets the logger for adapter diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

func newConfig(opts []Option) config {
	c := config{
		backend: gputypes.BackendVulkan,
		limits:  gputypes.DefaultLimits(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Open creates an instance of the configured hal backend, selects an
// adapter (discrete, then integrated, then whatever is first) and opens a
// device on it. This is the only blocking step of startup.
func Open(opts ...Option) (*HALAdapter, error) {
	cfg := newConfig(opts)
	backend, ok := hal.GetBackend(cfg.backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, cfg.backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	a, err := openInstance(instance, cfg)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	return a, nil
}

func openInstance(instance hal.Instance, cfg config) (*HALAdapter, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoGPU
	}
	selected := selectAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), cfg.limits)
	if err != nil {
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	a := NewHALAdapter(openDev.Device, openDev.Queue, &cfg.limits, WithLogger(cfg.log))
	a.instance = instance
	a.external = false
	cfg.log.Info("native: device opened", "adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return a, nil
}

// selectAdapter prefers a discrete GPU, then an integrated one.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// NewHALAdapter wraps an open device and queue. The adapter does not take
// ownership: Close releases the resources it created but leaves the device
// alive. If limits is nil, default limits are assumed.
func NewHALAdapter(device hal.Device, queue hal.Queue, limits *gputypes.Limits, opts ...Option) *HALAdapter {
	cfg := newConfig(opts)
	lim := cfg.limits
	if limits != nil {
		lim = *limits
	}
	a := &HALAdapter{
		device:           device,
		queue:            queue,
		limits:           lim,
		log:              cfg.log,
		external:         true,
		buffers:          make(map[gpucore.BufferID]*halBuffer),
		textures:         make(map[gpucore.TextureID]*halTexture),
		samplers:         make(map[gpucore.SamplerID]hal.Sampler),
		shaderModules:    make(map[gpucore.ShaderModuleID]hal.ShaderModule),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		bindGroups:       make(map[gpucore.BindGroupID]hal.BindGroup),
		pipelineLayouts:  make(map[gpucore.PipelineLayoutID]*halPipelineLayout),
		pipelines:        make(map[gpucore.RenderPipelineID]*halPipeline),
	}
	// Start ID generation at 1 (0 is invalid)
	a.nextID.Store(1)
	return a
}

// newID generates a unique resource ID.
func (a *HALAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// HalDevice returns the underlying hal.Device.
func (a *HALAdapter) HalDevice() any { return a.device }

// HalQueue returns the underlying hal.Queue.
func (a *HALAdapter) HalQueue() any { return a.queue }

// === Capabilities ===

// Capabilities reports the device limits. Push constants are emulated with
// a dynamic uniform slot, so their size is the slot size.
func (a *HALAdapter) Capabilities() gpucore.Capabilities {
	return gpucore.Capabilities{
		MaxPushConstantSize:         constantSlotSize,
		VertexWritableStorage:       true,
		ClearTexture:                true,
		MaxSampleCount:              gpucore.SampleCount,
		MaxBufferSize:               uint64(a.limits.MaxBufferSize),
		MaxStorageBufferBindingSize: uint64(a.limits.MaxStorageBufferBindingSize),
		MaxTextureDimension2D:       uint32(a.limits.MaxTextureDimension2D),
	}
}

// === Shader Compilation ===

// CreateShaderModule creates a shader module from WGSL or SPIR-V.
func (a *HALAdapter) CreateShaderModule(src gpucore.ShaderSource, label string) (gpucore.ShaderModuleID, error) {
	if src.WGSL == "" && len(src.SPIRV) == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: empty shader source")
	}
	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: src.WGSL, SPIRV: src.SPIRV},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create shader module: %w", err)
	}
	id := gpucore.ShaderModuleID(a.newID())
	a.mu.Lock()
	a.shaderModules[id] = module
	a.mu.Unlock()
	return id, nil
}

// DestroyShaderModule releases a shader module.
func (a *HALAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.mu.Lock()
	module, ok := a.shaderModules[id]
	delete(a.shaderModules, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyShaderModule(module)
	}
}

// === Buffer Management ===

// CreateBuffer creates a GPU buffer.
func (a *HALAdapter) CreateBuffer(size uint64, usage gpucore.BufferUsage, label string) (gpucore.BufferID, error) {
	if size == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: buffer size must be positive")
	}
	buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer %q: %w", label, err)
	}
	id := gpucore.BufferID(a.newID())
	a.mu.Lock()
	a.buffers[id] = &halBuffer{buf: buf, size: size}
	a.mu.Unlock()
	return id, nil
}

// DestroyBuffer releases a GPU buffer.
func (a *HALAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	b, ok := a.buffers[id]
	delete(a.buffers, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyBuffer(b.buf)
	}
}

// WriteBuffer writes data to a buffer through the queue.
func (a *HALAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	a.mu.RLock()
	b, ok := a.buffers[id]
	a.mu.RUnlock()
	if !ok {
		return gpucore.NotFound("buffer", uint64(id))
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("native: write of %d bytes at %d overflows buffer of %d", len(data), offset, b.size)
	}
	if len(data) > 0 {
		a.queue.WriteBuffer(b.buf, offset, data)
	}
	return nil
}

// === Texture Management ===

// CreateTexture creates a 2D texture and its default view.
func (a *HALAdapter) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, desc.Width, desc.Height)
	}
	samples := max(desc.SampleCount, 1)
	format := convertTextureFormat(desc.Format)
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         convertTextureUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	view, err := a.createView(tex, format, desc.Label)
	if err != nil {
		a.device.DestroyTexture(tex)
		return gpucore.InvalidID, err
	}
	d := *desc
	d.SampleCount = samples
	id := gpucore.TextureID(a.newID())
	a.mu.Lock()
	a.textures[id] = &halTexture{tex: tex, view: view, desc: d}
	a.mu.Unlock()
	return id, nil
}

func (a *HALAdapter) createView(tex hal.Texture, format gputypes.TextureFormat, label string) (hal.TextureView, error) {
	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + " View",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create view of %q: %w", label, err)
	}
	return view, nil
}

// DestroyTexture releases a texture and its view.
func (a *HALAdapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	t, ok := a.textures[id]
	delete(a.textures, id)
	a.mu.Unlock()
	if ok {
		a.releaseTexture(t)
	}
}

func (a *HALAdapter) releaseTexture(t *halTexture) {
	a.device.DestroyTextureView(t.view)
	if !t.borrowed {
		a.device.DestroyTexture(t.tex)
	}
}

func (a *HALAdapter) texture(id gpucore.TextureID) (*halTexture, error) {
	a.mu.RLock()
	t, ok := a.textures[id]
	a.mu.RUnlock()
	if !ok {
		return nil, gpucore.NotFound("texture", uint64(id))
	}
	return t, nil
}

// WriteTexture uploads tightly packed RGBA8 texels into region.
func (a *HALAdapter) WriteTexture(id gpucore.TextureID, region gpucore.Region, data []byte) error {
	t, err := a.texture(id)
	if err != nil {
		return err
	}
	if want := int(region.Width) * int(region.Height) * 4; len(data) != want {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrDataSize, len(data), region.Width, region.Height)
	}
	if region.Width == 0 || region.Height == 0 {
		return nil
	}
	if isBGRA(t.desc.Format) {
		data = append([]byte(nil), data...)
		swizzleRB(data)
	}
	a.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: region.X, Y: region.Y, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  region.Width * 4,
			RowsPerImage: region.Height,
		},
		&hal.Extent3D{Width: region.Width, Height: region.Height, DepthOrArrayLayers: 1},
	)
	return nil
}

// ReadTexture copies a texture into a staging buffer, waits for the GPU and
// returns the texels as tightly packed RGBA8.
func (a *HALAdapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	t, err := a.texture(id)
	if err != nil {
		return nil, err
	}
	w, h := t.desc.Width, t.desc.Height
	pitch := alignedPitch(w)

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "Readback Staging",
		Size:  uint64(pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "Readback Encoder"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	transition(encoder, t.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageCopySrc)
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	transition(encoder, t.tex, gputypes.TextureUsageCopySrc, gputypes.TextureUsageRenderAttachment)
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmd)
	if err := a.submitAndWait(cmd); err != nil {
		return nil, err
	}

	readback := make([]byte, uint64(pitch)*uint64(h))
	if err := a.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("native: readback: %w", err)
	}
	out := make([]byte, int(w)*int(h)*4)
	for row := range int(h) {
		copy(out[row*int(w)*4:(row+1)*int(w)*4], readback[row*int(pitch):])
	}
	if isBGRA(t.desc.Format) {
		swizzleRB(out)
	}
	return out, nil
}

// alignedPitch returns the row pitch of a buffer-texture copy.
// WebGPU (and DX12) requires BytesPerRow aligned to 256 bytes.
func alignedPitch(width uint32) uint32 {
	const copyPitchAlignment = 256
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

func transition(encoder hal.CommandEncoder, tex hal.Texture, from, to gputypes.TextureUsage) {
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage:   hal.TextureUsageTransition{OldUsage: from, NewUsage: to},
	}})
}

// CreateSampler creates a clamp-to-edge sampler.
func (a *HALAdapter) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	filter := convertFilter(desc.Filter)
	sampler, err := a.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create sampler: %w", err)
	}
	id := gpucore.SamplerID(a.newID())
	a.mu.Lock()
	a.samplers[id] = sampler
	a.mu.Unlock()
	return id, nil
}

// DestroySampler releases a sampler.
func (a *HALAdapter) DestroySampler(id gpucore.SamplerID) {
	a.mu.Lock()
	s, ok := a.samplers[id]
	delete(a.samplers, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroySampler(s)
	}
}

// === Pipeline Management ===

// CreateBindGroupLayout creates a bind group layout.
func (a *HALAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = convertLayoutEntry(e)
	}
	layout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group layout %q: %w", desc.Label, err)
	}
	id := gpucore.BindGroupLayoutID(a.newID())
	a.mu.Lock()
	a.bindGroupLayouts[id] = layout
	a.mu.Unlock()
	return id, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (a *HALAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	a.mu.Lock()
	l, ok := a.bindGroupLayouts[id]
	delete(a.bindGroupLayouts, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyBindGroupLayout(l)
	}
}

// CreateBindGroup binds buffers, texture views and samplers to a layout.
func (a *HALAdapter) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	a.mu.RLock()
	layout, ok := a.bindGroupLayouts[desc.Layout]
	if !ok {
		a.mu.RUnlock()
		return gpucore.InvalidID, gpucore.NotFound("bind group layout", uint64(desc.Layout))
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry, err := a.convertBindGroupEntryLocked(e)
		if err != nil {
			a.mu.RUnlock()
			return gpucore.InvalidID, err
		}
		entries = append(entries, entry)
	}
	a.mu.RUnlock()

	group, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group %q: %w", desc.Label, err)
	}
	id := gpucore.BindGroupID(a.newID())
	a.mu.Lock()
	a.bindGroups[id] = group
	a.mu.Unlock()
	return id, nil
}

// convertBindGroupEntryLocked resolves the IDs of a bind group entry.
// Must be called with mu held.
func (a *HALAdapter) convertBindGroupEntryLocked(e gpucore.BindGroupEntry) (gputypes.BindGroupEntry, error) {
	out := gputypes.BindGroupEntry{Binding: e.Binding}
	switch {
	case e.Buffer != gpucore.InvalidID:
		b, ok := a.buffers[e.Buffer]
		if !ok {
			return out, gpucore.NotFound("buffer", uint64(e.Buffer))
		}
		size := e.Size
		if size == 0 {
			size = b.size - e.Offset
		}
		out.Resource = gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Offset: e.Offset, Size: size}
	case e.Texture != gpucore.InvalidID:
		t, ok := a.textures[e.Texture]
		if !ok {
			return out, gpucore.NotFound("texture", uint64(e.Texture))
		}
		out.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
	case e.Sampler != gpucore.InvalidID:
		s, ok := a.samplers[e.Sampler]
		if !ok {
			return out, gpucore.NotFound("sampler", uint64(e.Sampler))
		}
		out.Resource = gputypes.SamplerBinding{Sampler: s.NativeHandle()}
	default:
		return out, fmt.Errorf("native: bind group entry %d names no resource", e.Binding)
	}
	return out, nil
}

// DestroyBindGroup releases a bind group.
func (a *HALAdapter) DestroyBindGroup(id gpucore.BindGroupID) {
	a.mu.Lock()
	g, ok := a.bindGroups[id]
	delete(a.bindGroups, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyBindGroup(g)
	}
}

// CreatePipelineLayout creates a pipeline layout. A push-constant range is
// emulated by appending the constants group layout after the declared groups.
func (a *HALAdapter) CreatePipelineLayout(desc *gpucore.PipelineLayoutDesc) (gpucore.PipelineLayoutID, error) {
	if desc.PushConstantSize > constantSlotSize {
		return gpucore.InvalidID, fmt.Errorf("native: push constants of %d bytes exceed %d", desc.PushConstantSize, constantSlotSize)
	}
	layouts := make([]hal.BindGroupLayout, 0, len(desc.BindGroupLayouts)+1)
	a.mu.RLock()
	for _, id := range desc.BindGroupLayouts {
		l, ok := a.bindGroupLayouts[id]
		if !ok {
			a.mu.RUnlock()
			return gpucore.InvalidID, gpucore.NotFound("bind group layout", uint64(id))
		}
		layouts = append(layouts, l)
	}
	a.mu.RUnlock()

	constantsGroup := -1
	if desc.PushConstantSize > 0 {
		ring, err := a.constantsRing()
		if err != nil {
			return gpucore.InvalidID, err
		}
		constantsGroup = len(layouts)
		layouts = append(layouts, ring.layout)
	}
	layout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline layout %q: %w", desc.Label, err)
	}
	id := gpucore.PipelineLayoutID(a.newID())
	a.mu.Lock()
	a.pipelineLayouts[id] = &halPipelineLayout{layout: layout, constantsGroup: constantsGroup}
	a.mu.Unlock()
	return id, nil
}

// DestroyPipelineLayout releases a pipeline layout.
func (a *HALAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	a.mu.Lock()
	l, ok := a.pipelineLayouts[id]
	delete(a.pipelineLayouts, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyPipelineLayout(l.layout)
	}
}

// CreateRenderPipeline creates a triangle-list pipeline without vertex
// buffers, depth or stencil.
func (a *HALAdapter) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	a.mu.RLock()
	layout, okLayout := a.pipelineLayouts[desc.Layout]
	module, okModule := a.shaderModules[desc.Module]
	a.mu.RUnlock()
	if !okLayout {
		return gpucore.InvalidID, gpucore.NotFound("pipeline layout", uint64(desc.Layout))
	}
	if !okModule {
		return gpucore.InvalidID, gpucore.NotFound("shader module", uint64(desc.Module))
	}

	pipeline, err := a.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    convertTextureFormat(desc.Format),
				Blend:     blendState(desc.Blend),
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: max(desc.SampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create render pipeline %q: %w", desc.Label, err)
	}
	id := gpucore.RenderPipelineID(a.newID())
	a.mu.Lock()
	a.pipelines[id] = &halPipeline{pipeline: pipeline, constantsGroup: layout.constantsGroup}
	a.mu.Unlock()
	return id, nil
}

// DestroyRenderPipeline releases a render pipeline.
func (a *HALAdapter) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	a.mu.Lock()
	p, ok := a.pipelines[id]
	delete(a.pipelines, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyRenderPipeline(p.pipeline)
	}
}

// === Command Recording and Execution ===

// Submit writes the pushed constants of cmd, submits it and waits for the
// GPU to finish it. Waiting lets every command buffer reuse the constants
// buffer from offset zero.
func (a *HALAdapter) Submit(cmd gpucore.CommandBuffer) error {
	cb, ok := cmd.(*commandBuffer)
	if !ok || cb.adapter != a {
		return fmt.Errorf("native: foreign command buffer %q", cmd.Label())
	}
	defer cb.release()
	if len(cb.constants) > 0 {
		a.queue.WriteBuffer(a.constants.buffer, 0, cb.constants)
	}
	return a.submitAndWait(cb.cmd)
}

func (a *HALAdapter) submitAndWait(cmd hal.CommandBuffer) error {
	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)

	if err := a.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	done, err := a.device.Wait(fence, 1, submitTimeout)
	if err != nil {
		return fmt.Errorf("native: wait for GPU: %w", err)
	}
	if !done {
		return ErrGPUTimeout
	}
	return nil
}

// Close releases every resource the adapter still tracks. A device opened
// by Open is destroyed with its instance; a wrapped device stays alive.
func (a *HALAdapter) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	for id := range a.pipelines {
		a.DestroyRenderPipeline(id)
	}
	for id := range a.pipelineLayouts {
		a.DestroyPipelineLayout(id)
	}
	for id := range a.bindGroups {
		a.DestroyBindGroup(id)
	}
	for id := range a.bindGroupLayouts {
		a.DestroyBindGroupLayout(id)
	}
	for id := range a.samplers {
		a.DestroySampler(id)
	}
	for id := range a.textures {
		a.DestroyTexture(id)
	}
	for id := range a.buffers {
		a.DestroyBuffer(id)
	}
	for id := range a.shaderModules {
		a.DestroyShaderModule(id)
	}
	if a.constants != nil {
		a.constants.destroy(a.device)
		a.constants = nil
	}
	if !a.external {
		a.device.Destroy()
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
}

// Compile-time interface check.
var _ gpucore.Device = (*HALAdapter)(nil)
