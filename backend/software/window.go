package software

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/bedrock/gpucore"
)

// DefaultSurfaceFormat is the format of Window surfaces before the sRGB policy.
const DefaultSurfaceFormat = gpucore.TextureFormatRGBA8UnormSRGB

// Window is an offscreen window a Device can create a surface for.
type Window struct {
	mu        sync.Mutex
	width     int
	height    int
	fail      []error
	presented *image.RGBA
	acquires  int
	presents  int
}

// NewWindow returns a window of the given pixel size.
func NewWindow(width, height int) *Window {
	return &Window{width: width, height: height}
}

// Size returns the window size in pixels.
func (w *Window) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Resize changes the window size. The surface keeps its configured size
// until it is reconfigured.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
}

// FailNext makes the next len(errs) acquisitions fail with errs in order.
func (w *Window) FailNext(errs ...error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fail = append(w.fail, errs...)
}

// Image returns a copy of the last presented frame, or nil.
func (w *Window) Image() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.presented == nil {
		return nil
	}
	return cloneRGBA(w.presented)
}

// Acquires returns the number of acquisition attempts, failed ones included.
func (w *Window) Acquires() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acquires
}

// Presents returns the number of presented frames.
func (w *Window) Presents() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presents
}

func (w *Window) nextFailure() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.acquires++
	if len(w.fail) == 0 {
		return nil
	}
	err := w.fail[0]
	w.fail = w.fail[1:]
	return err
}

// CreateSurface implements gpucore.Device. The target must be a *Window.
func (d *Device) CreateSurface(target any) (gpucore.Surface, error) {
	w, ok := target.(*Window)
	if !ok || w == nil {
		return nil, fmt.Errorf("%w: %T", gpucore.ErrUnsupportedTarget, target)
	}
	return &windowSurface{dev: d, win: w}, nil
}

type windowSurface struct {
	dev       *Device
	win       *Window
	config    *gpucore.SurfaceConfig
	frame     gpucore.TextureID
	destroyed bool
}

var errNotConfigured = errors.New("software: surface not configured")

func (s *windowSurface) DefaultConfig(width, height uint32) (gpucore.SurfaceConfig, error) {
	return gpucore.SurfaceConfig{
		Format:      DefaultSurfaceFormat,
		Width:       width,
		Height:      height,
		Usage:       gpucore.TextureUsageRenderAttachment,
		PresentMode: gpucore.PresentModeFifo,
	}, nil
}

func (s *windowSurface) Configure(cfg gpucore.SurfaceConfig) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("software: configure %dx%d surface", cfg.Width, cfg.Height)
	}
	s.releaseFrame()
	c := cfg.Clone()
	s.config = &c
	s.dev.mu.Lock()
	s.dev.stats.Configures++
	s.dev.mu.Unlock()
	return nil
}

func (s *windowSurface) Acquire() (*gpucore.Frame, error) {
	if err := s.win.nextFailure(); err != nil {
		return nil, err
	}
	if s.destroyed {
		return nil, gpucore.ErrSurfaceLost
	}
	if s.config == nil {
		return nil, errNotConfigured
	}
	s.releaseFrame()

	s.dev.mu.Lock()
	s.frame = s.dev.addTextureLocked(gpucore.TextureDesc{
		Label:  "Surface Frame",
		Width:  s.config.Width,
		Height: s.config.Height,
		Format: s.config.Format,
		Usage:  s.config.Usage,
	})
	s.dev.mu.Unlock()
	return &gpucore.Frame{Texture: s.frame, Width: s.config.Width, Height: s.config.Height}, nil
}

func (s *windowSurface) Present(frame *gpucore.Frame) error {
	if frame == nil || frame.Texture != s.frame || s.frame == gpucore.InvalidID {
		return errors.New("software: present of a frame not acquired from this surface")
	}
	img, err := s.dev.Image(frame.Texture)
	if err != nil {
		return err
	}
	s.releaseFrame()

	s.win.mu.Lock()
	s.win.presented = img
	s.win.presents++
	s.win.mu.Unlock()
	return nil
}

func (s *windowSurface) Destroy() {
	s.releaseFrame()
	s.destroyed = true
}

func (s *windowSurface) releaseFrame() {
	if s.frame != gpucore.InvalidID {
		s.dev.DestroyTexture(s.frame)
		s.frame = gpucore.InvalidID
	}
}
