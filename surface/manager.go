// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/bedrock/gpucore"
)

// ErrNotReady is the panic value of accessors called before the surface is ready.
var ErrNotReady = errors.New("surface: not ready")

// State is the lifecycle state of a Manager.
type State uint8

// Manager states.
const (
	StateUninitialized State = iota
	StateReady
)

// String returns the state name.
func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "uninitialized"
}

// auxTextureUsage is the usage of the backdrop and multisampled textures.
const auxTextureUsage = gpucore.TextureUsageTextureBinding |
	gpucore.TextureUsageCopyDst |
	gpucore.TextureUsageRenderAttachment

// Texture labels.
const (
	BackdropLabel     = "Offscreen Texture"
	MultisampledLabel = "Output Texture"
)

// Manager owns the presentable surface and its auxiliary resources.
// It is not safe for concurrent use.
type Manager struct {
	device  gpucore.Device
	sampler gpucore.SamplerID
	layout  gpucore.BindGroupLayoutID
	opts    options

	// ready is nil in StateUninitialized.
	ready *readyState
}

type readyState struct {
	surface gpucore.Surface
	config  gpucore.SurfaceConfig
	aux     auxiliary
}

type auxiliary struct {
	backdrop     gpucore.TextureID
	multisampled gpucore.TextureID
	universal    gpucore.BindGroupID
}

// NewManager returns an Uninitialized manager. The sampler and universal
// layout are owned by the caller and must outlive the manager.
func NewManager(device gpucore.Device, sampler gpucore.SamplerID, universal gpucore.BindGroupLayoutID, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{device: device, sampler: sampler, layout: universal, opts: o}
}

// State returns the current state.
func (m *Manager) State() State {
	if m.ready == nil {
		return StateUninitialized
	}
	return StateReady
}

// Ready reports whether the manager is in StateReady.
func (m *Manager) Ready() bool { return m.ready != nil }

// HandleResumed creates the surface for a window target of the given pixel
// size and moves to StateReady. A manager that is already ready replaces
// its surface. It reports whether drawables must rebuild their pipelines.
func (m *Manager) HandleResumed(target any, width, height int) (bool, error) {
	w, h := clampSize(width), clampSize(height)

	s, err := m.device.CreateSurface(target)
	if err != nil {
		return false, fmt.Errorf("surface: create: %w", err)
	}
	cfg, err := s.DefaultConfig(w, h)
	if err != nil {
		s.Destroy()
		return false, fmt.Errorf("surface: not supported by the device: %w", err)
	}
	cfg.Width, cfg.Height = w, h
	cfg.Usage = gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageCopySrc
	if m.opts.hasPresentMode {
		cfg.PresentMode = m.opts.presentMode
	}
	cfg = applySRGBPolicy(cfg, m.opts.srgb)

	r := &readyState{surface: s}
	if err := m.recreate(r, cfg); err != nil {
		s.Destroy()
		return false, err
	}

	m.Destroy()
	m.ready = r
	m.opts.logger.Info("surface: ready",
		"width", cfg.Width, "height", cfg.Height, "format", cfg.Format, "present", cfg.PresentMode)
	return true, nil
}

// HandleResized reconfigures the existing surface at the new size and
// recreates the auxiliary resources. On failure the previous size and
// resources stay in place. Resizing an Uninitialized manager is a no-op
// and reports false.
func (m *Manager) HandleResized(width, height int) (bool, error) {
	if m.ready == nil {
		return false, nil
	}
	cfg := m.ready.config.Clone()
	cfg.Width, cfg.Height = clampSize(width), clampSize(height)
	if err := m.recreate(m.ready, cfg); err != nil {
		return false, err
	}
	m.opts.logger.Info("surface: resized", "width", m.ready.config.Width, "height", m.ready.config.Height)
	return true, nil
}

// AcquireFrame returns the next frame. A timeout is retried once. An
// outdated, lost or out-of-memory surface is reconfigured with fresh
// auxiliary resources and retried once. Other errors are returned as is.
func (m *Manager) AcquireFrame() (*gpucore.Frame, error) {
	r := m.mustReady()

	frame, err := r.surface.Acquire()
	switch {
	case err == nil:
		return frame, nil
	case errors.Is(err, gpucore.ErrSurfaceTimeout):
		m.opts.logger.Warn("surface: acquire timed out, retrying")
		frame, err = r.surface.Acquire()
		if err != nil {
			return nil, fmt.Errorf("surface: acquire after timeout: %w", err)
		}
		return frame, nil
	case gpucore.IsRecoverableSurfaceError(err):
		m.opts.logger.Warn("surface: recreating resources", "err", err)
		if rerr := m.recreate(r, r.config); rerr != nil {
			return nil, rerr
		}
		frame, err = r.surface.Acquire()
		if err != nil {
			return nil, fmt.Errorf("surface: acquire after reconfiguring: %w", err)
		}
		return frame, nil
	default:
		return nil, fmt.Errorf("surface: acquire: %w", err)
	}
}

// Present queues an acquired frame for display.
func (m *Manager) Present(frame *gpucore.Frame) error {
	if err := m.mustReady().surface.Present(frame); err != nil {
		return fmt.Errorf("surface: present: %w", err)
	}
	return nil
}

// recreate configures the surface with cfg and replaces the auxiliary
// resources. r is only updated once both steps succeed.
func (m *Manager) recreate(r *readyState, cfg gpucore.SurfaceConfig) error {
	aux, err := m.createAuxiliary(cfg)
	if err != nil {
		return err
	}
	if err := r.surface.Configure(cfg.Clone()); err != nil {
		m.destroyAuxiliary(aux)
		return fmt.Errorf("surface: configure: %w", err)
	}
	m.destroyAuxiliary(r.aux)
	r.config = cfg
	r.aux = aux
	return nil
}

func (m *Manager) createAuxiliary(cfg gpucore.SurfaceConfig) (auxiliary, error) {
	var aux auxiliary
	var err error

	aux.backdrop, err = m.device.CreateTexture(&gpucore.TextureDesc{
		Label:       BackdropLabel,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       auxTextureUsage,
		SampleCount: 1,
	})
	if err != nil {
		return aux, fmt.Errorf("surface: backdrop texture: %w", err)
	}

	aux.multisampled, err = m.device.CreateTexture(&gpucore.TextureDesc{
		Label:       MultisampledLabel,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       auxTextureUsage,
		SampleCount: gpucore.SampleCount,
	})
	if err != nil {
		m.destroyAuxiliary(aux)
		return auxiliary{}, fmt.Errorf("surface: multisampled texture: %w", err)
	}

	aux.universal, err = m.device.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "Universal Bind Group",
		Layout: m.layout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, Texture: aux.backdrop},
			{Binding: 1, Sampler: m.sampler},
		},
	})
	if err != nil {
		m.destroyAuxiliary(aux)
		return auxiliary{}, fmt.Errorf("surface: universal bind group: %w", err)
	}
	return aux, nil
}

func (m *Manager) destroyAuxiliary(aux auxiliary) {
	if aux.universal != gpucore.InvalidID {
		m.device.DestroyBindGroup(aux.universal)
	}
	if aux.multisampled != gpucore.InvalidID {
		m.device.DestroyTexture(aux.multisampled)
	}
	if aux.backdrop != gpucore.InvalidID {
		m.device.DestroyTexture(aux.backdrop)
	}
}

// Destroy releases the surface and its resources and returns to
// StateUninitialized.
func (m *Manager) Destroy() {
	if m.ready == nil {
		return
	}
	m.destroyAuxiliary(m.ready.aux)
	m.ready.surface.Destroy()
	m.ready = nil
}

func (m *Manager) mustReady() *readyState {
	if m.ready == nil {
		panic(ErrNotReady)
	}
	return m.ready
}

// Backdrop returns the backdrop texture. It panics unless ready.
func (m *Manager) Backdrop() gpucore.TextureID { return m.mustReady().aux.backdrop }

// Multisampled returns the multisampled render target. It panics unless ready.
func (m *Manager) Multisampled() gpucore.TextureID { return m.mustReady().aux.multisampled }

// UniversalBindGroup returns the bind group exposing the backdrop. It
// panics unless ready.
func (m *Manager) UniversalBindGroup() gpucore.BindGroupID { return m.mustReady().aux.universal }

// Format returns the surface format. It panics unless ready.
func (m *Manager) Format() gpucore.TextureFormat { return m.mustReady().config.Format }

// Config returns a copy of the stored configuration. It panics unless ready.
func (m *Manager) Config() gpucore.SurfaceConfig { return m.mustReady().config.Clone() }

// Size returns the configured surface size. It panics unless ready.
func (m *Manager) Size() (width, height uint32) {
	r := m.mustReady()
	return r.config.Width, r.config.Height
}

func applySRGBPolicy(cfg gpucore.SurfaceConfig, srgb bool) gpucore.SurfaceConfig {
	cfg = cfg.Clone()
	if srgb {
		cfg.ViewFormats = appendFormat(cfg.ViewFormats, cfg.Format.SRGB())
	} else {
		cfg.Format = cfg.Format.Linear()
		cfg.ViewFormats = appendFormat(cfg.ViewFormats, cfg.Format)
	}
	return cfg
}

func appendFormat(fs []gpucore.TextureFormat, f gpucore.TextureFormat) []gpucore.TextureFormat {
	if slices.Contains(fs, f) {
		return fs
	}
	return append(fs, f)
}

func clampSize(v int) uint32 {
	if v < 1 {
		return 1
	}
	return uint32(v)
}
