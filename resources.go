package bedrock

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/shaders"
	"github.com/gogpu/bedrock/surface"
)

// Resources holds the device objects shared by every drawable: the shader
// module, the backdrop sampler, the universal bind group layout and the
// surface lifecycle manager.
type Resources struct {
	device  gpucore.Device
	program *shaders.Program
	module  gpucore.ShaderModuleID
	sampler gpucore.SamplerID
	layout  gpucore.BindGroupLayoutID
	surface *surface.Manager
	ctx     *render.Context
}

// newResources validates the device and creates the shared objects.
func newResources(device gpucore.Device, o *options, log *slog.Logger) (*Resources, error) {
	if err := device.Capabilities().Validate(); err != nil {
		return nil, err
	}
	program := o.program
	if program == nil {
		program = shaders.Builtin()
	}

	r := &Resources{device: device, program: program}
	var err error
	if r.module, err = device.CreateShaderModule(program.Source(), program.Label()); err != nil {
		return nil, fmt.Errorf("bedrock: shader module: %w", err)
	}
	if r.sampler, err = device.CreateSampler(&gpucore.SamplerDesc{Label: "Backdrop Sampler"}); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("bedrock: sampler: %w", err)
	}
	if r.layout, err = device.CreateBindGroupLayout(render.UniversalLayoutDesc()); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("bedrock: universal layout: %w", err)
	}

	sopts := []surface.Option{surface.WithSRGB(o.srgb), surface.WithLogger(log)}
	if o.hasPresentMode {
		sopts = append(sopts, surface.WithPresentMode(o.presentMode))
	}
	r.surface = surface.NewManager(device, r.sampler, r.layout, sopts...)

	r.ctx = &render.Context{
		Device:          device,
		Program:         program,
		Module:          r.module,
		UniversalLayout: r.layout,
		Capacity:        o.capacity,
		AtlasSize:       o.atlasSize,
		Logger:          log,
	}
	return r, nil
}

// Device returns the device the resources were created on.
func (r *Resources) Device() gpucore.Device { return r.device }

// Program returns the shader program.
func (r *Resources) Program() *shaders.Program { return r.program }

// Surface returns the surface lifecycle manager.
func (r *Resources) Surface() *surface.Manager { return r.surface }

// Context returns the drawable context. Its SurfaceFormat is current only
// while the surface is ready.
func (r *Resources) Context() *render.Context { return r.ctx }

// Destroy releases the surface and the shared objects. The device itself
// stays open.
func (r *Resources) Destroy() {
	if r.surface != nil {
		r.surface.Destroy()
	}
	if r.layout != gpucore.InvalidID {
		r.device.DestroyBindGroupLayout(r.layout)
		r.layout = gpucore.InvalidID
	}
	if r.sampler != gpucore.InvalidID {
		r.device.DestroySampler(r.sampler)
		r.sampler = gpucore.InvalidID
	}
	if r.module != gpucore.InvalidID {
		r.device.DestroyShaderModule(r.module)
		r.module = gpucore.InvalidID
	}
}
