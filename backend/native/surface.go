package native

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/bedrock/gpucore"
)

// acquireTimeout bounds the wait for the next swapchain image.
const acquireTimeout = time.Second

// Presenter is the window-system side of a native surface. A host
// application implements it on top of its windowing library and passes it
// to CreateSurface.
//
// Errors returned by Acquire should wrap one of the gpucore surface errors;
// deadline errors are reported as gpucore.ErrSurfaceTimeout.
type Presenter interface {
	// Formats lists the formats the window can present, preferred first.
	Formats() []gputypes.TextureFormat

	// Configure (re)creates the swapchain.
	Configure(device hal.Device, width, height uint32, format gputypes.TextureFormat, mode gpucore.PresentMode) error

	// Acquire returns the next swapchain texture.
	Acquire(timeout time.Duration) (hal.Texture, error)

	// Present queues an acquired texture for display.
	Present(queue hal.Queue, texture hal.Texture) error

	// Unconfigure releases the swapchain.
	Unconfigure(device hal.Device)
}

// CreateSurface creates a surface for a Presenter target.
func (a *HALAdapter) CreateSurface(target any) (gpucore.Surface, error) {
	p, ok := target.(Presenter)
	if !ok {
		return nil, fmt.Errorf("%w: %T", gpucore.ErrUnsupportedTarget, target)
	}
	return &surface{adapter: a, presenter: p}, nil
}

type surface struct {
	adapter    *HALAdapter
	presenter  Presenter
	cfg        gpucore.SurfaceConfig
	configured bool
	frame      gpucore.TextureID
}

func (s *surface) DefaultConfig(width, height uint32) (gpucore.SurfaceConfig, error) {
	for _, f := range s.presenter.Formats() {
		if format := textureFormatFromHAL(f); format != 0 {
			return gpucore.SurfaceConfig{
				Format:      format,
				Width:       width,
				Height:      height,
				Usage:       gpucore.TextureUsageRenderAttachment,
				PresentMode: gpucore.PresentModeFifo,
			}, nil
		}
	}
	return gpucore.SurfaceConfig{}, fmt.Errorf("native: window supports no 8-bit RGBA or BGRA format")
}

func (s *surface) Configure(cfg gpucore.SurfaceConfig) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	s.releaseFrame()
	err := s.presenter.Configure(s.adapter.device, cfg.Width, cfg.Height, convertTextureFormat(cfg.Format), cfg.PresentMode)
	if err != nil {
		return fmt.Errorf("native: configure surface: %w", err)
	}
	s.cfg = cfg.Clone()
	s.configured = true
	return nil
}

func (s *surface) Acquire() (*gpucore.Frame, error) {
	if !s.configured {
		return nil, fmt.Errorf("%w: not configured", gpucore.ErrSurfaceLost)
	}
	s.releaseFrame()
	tex, err := s.presenter.Acquire(acquireTimeout)
	if err != nil {
		return nil, surfaceError(err)
	}
	view, err := s.adapter.createView(tex, convertTextureFormat(s.cfg.Format), "Surface Frame")
	if err != nil {
		return nil, err
	}
	id := gpucore.TextureID(s.adapter.newID())
	s.adapter.mu.Lock()
	s.adapter.textures[id] = &halTexture{
		tex:  tex,
		view: view,
		desc: gpucore.TextureDesc{
			Label:       "Surface Frame",
			Width:       s.cfg.Width,
			Height:      s.cfg.Height,
			Format:      s.cfg.Format,
			Usage:       s.cfg.Usage,
			SampleCount: 1,
		},
		borrowed: true,
	}
	s.adapter.mu.Unlock()
	s.frame = id
	return &gpucore.Frame{Texture: id, Width: s.cfg.Width, Height: s.cfg.Height}, nil
}

func (s *surface) Present(frame *gpucore.Frame) error {
	if frame == nil || frame.Texture != s.frame {
		return fmt.Errorf("native: present of a frame that is not current")
	}
	t, err := s.adapter.texture(frame.Texture)
	if err != nil {
		return err
	}
	defer s.releaseFrame()
	if err := s.presenter.Present(s.adapter.queue, t.tex); err != nil {
		return surfaceError(err)
	}
	return nil
}

func (s *surface) Destroy() {
	s.releaseFrame()
	if s.configured {
		s.presenter.Unconfigure(s.adapter.device)
		s.configured = false
	}
}

// releaseFrame forgets the current frame. The swapchain texture itself
// belongs to the presenter.
func (s *surface) releaseFrame() {
	if s.frame != gpucore.InvalidID {
		s.adapter.DestroyTexture(s.frame)
		s.frame = gpucore.InvalidID
	}
}

// surfaceError maps presenter errors onto the gpucore surface errors.
func surfaceError(err error) error {
	switch {
	case errors.Is(err, gpucore.ErrSurfaceTimeout),
		errors.Is(err, gpucore.ErrSurfaceOutdated),
		errors.Is(err, gpucore.ErrSurfaceLost),
		errors.Is(err, gpucore.ErrSurfaceOutOfMemory):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %w", gpucore.ErrSurfaceTimeout, err)
	default:
		return fmt.Errorf("native: surface: %w", err)
	}
}
