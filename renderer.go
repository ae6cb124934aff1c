package bedrock

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
	"github.com/gogpu/bedrock/surface"
)

// Renderer composites scenes onto a window surface.
//
// A Renderer is driven from a single goroutine: HandleEvent, Render and
// Close must not be called concurrently.
type Renderer struct {
	res       *Resources
	drawables []render.Drawable
	log       *slog.Logger
	closed    bool
}

// New creates the shared resources and the drawables. The renderer cannot
// draw until a Resumed event has been handled.
func New(device gpucore.Device, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	res, err := newResources(device, &o, log)
	if err != nil {
		return nil, err
	}
	r := &Renderer{res: res, log: log}
	for _, f := range o.drawables() {
		d, err := f(res.Context())
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("bedrock: create drawable: %w", err)
		}
		r.drawables = append(r.drawables, d)
	}
	if err := render.SortByKind(r.drawables); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Resources returns the shared device objects.
func (r *Renderer) Resources() *Resources { return r.res }

// Surface returns the surface lifecycle manager.
func (r *Renderer) Surface() *surface.Manager { return r.res.surface }

// Drawables returns the registered drawables in draw order.
func (r *Renderer) Drawables() []render.Drawable { return r.drawables }

// HandleEvent feeds a window event to the surface manager. Resumed and
// Resized events (by value or pointer) are handled; everything else is
// ignored. When the surface changes every drawable rebuilds its pipeline
// before HandleEvent returns.
func (r *Renderer) HandleEvent(event any) error {
	if r.closed {
		return ErrClosed
	}
	var (
		changed bool
		err     error
	)
	switch e := event.(type) {
	case Resumed:
		changed, err = r.res.surface.HandleResumed(e.Target, e.Width, e.Height)
	case *Resumed:
		changed, err = r.res.surface.HandleResumed(e.Target, e.Width, e.Height)
	case Resized:
		changed, err = r.res.surface.HandleResized(e.Width, e.Height)
	case *Resized:
		changed, err = r.res.surface.HandleResized(e.Width, e.Height)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if changed {
		return r.surfaceChanged()
	}
	return nil
}

func (r *Renderer) surfaceChanged() error {
	ctx := r.res.Context()
	ctx.SurfaceFormat = r.res.surface.Format()
	for _, d := range r.drawables {
		if err := d.SurfaceChanged(ctx); err != nil {
			return fmt.Errorf("bedrock: %s pipeline: %w", d.Kind(), err)
		}
	}
	return nil
}

// DrawScene renders s and reports success. A failure is logged at Error
// level; the caller may simply try again with the next frame.
func (r *Renderer) DrawScene(s *scene.Scene) bool {
	if err := r.Render(s); err != nil {
		r.log.Error("bedrock: render failed", "err", err)
		return false
	}
	return true
}

// Render composites every layer of s into the next surface frame and
// presents it.
//
// Each layer is recorded into its own encoder and submitted before the
// next layer starts. For every drawable of a layer the backdrop texture is
// first refreshed, cleared on the first draw of the frame and otherwise
// copied from the frame, so it always holds everything composited so far.
// A scene without layers renders as one default layer. A nil layer is
// rejected with ErrNilLayer before any frame is acquired.
func (r *Renderer) Render(s *scene.Scene) error {
	if r.closed {
		return ErrClosed
	}
	if s == nil {
		return ErrNilScene
	}
	sm := r.res.surface
	if !sm.Ready() {
		return ErrNotReady
	}
	layers := s.Layers
	if len(layers) == 0 {
		layers = scene.New().Layers
	}
	for i, layer := range layers {
		if layer == nil {
			return fmt.Errorf("%w: layers[%d]", ErrNilLayer, i)
		}
	}

	frame, err := sm.AcquireFrame()
	if err != nil {
		return err
	}
	ctx := r.res.Context()
	constants := shaders.Constants{
		SurfaceSize: [2]float32{float32(frame.Width), float32(frame.Height)},
		AtlasSize:   [2]float32{float32(ctx.AtlasSize), float32(ctx.AtlasSize)},
	}

	first := true
	for i, layer := range layers {
		if err := r.renderLayer(frame, constants, layer, &first); err != nil {
			return fmt.Errorf("bedrock: layer %d: %w", i, err)
		}
	}
	return sm.Present(frame)
}

// renderLayer records and submits one layer.
func (r *Renderer) renderLayer(frame *gpucore.Frame, constants shaders.Constants, layer *scene.Layer, first *bool) error {
	dev := r.res.device
	sm := r.res.surface
	ctx := r.res.Context()

	enc, err := dev.CreateCommandEncoder("Render Encoder")
	if err != nil {
		return err
	}
	for _, d := range r.drawables {
		if *first {
			err = enc.ClearTexture(sm.Backdrop())
		} else {
			err = enc.CopyTextureToTexture(frame.Texture, sm.Backdrop(), frame.Width, frame.Height)
		}
		if err != nil {
			enc.Discard()
			return err
		}

		load := gpucore.LoadOpLoad
		if *first {
			load = gpucore.LoadOpClear
		}
		rp, err := enc.BeginRenderPass(&gpucore.RenderPassDesc{
			Label: "Render Pass",
			Color: gpucore.ColorAttachment{
				View:          sm.Multisampled(),
				ResolveTarget: frame.Texture,
				LoadOp:        load,
				StoreOp:       gpucore.StoreOpStore,
				ClearColor:    [4]float64{1, 1, 1, 1},
			},
		})
		if err != nil {
			enc.Discard()
			return err
		}
		if layer.Clip != nil {
			sc := ClipScissor(*layer.Clip, frame.Width, frame.Height)
			rp.SetScissorRect(sc.X, sc.Y, sc.Width, sc.Height)
			r.log.Debug("bedrock: scissor", "kind", d.Kind(), "x", sc.X, "y", sc.Y, "w", sc.Width, "h", sc.Height)
		}

		pass := &render.Pass{
			Context:   ctx,
			Encoder:   rp,
			Constants: constants,
			Universal: sm.UniversalBindGroup(),
		}
		err = d.Draw(pass, layer)
		rp.End()
		if err != nil {
			enc.Discard()
			return fmt.Errorf("%s: %w", d.Kind(), err)
		}
		*first = false
	}

	cb, err := enc.Finish()
	if err != nil {
		return err
	}
	return dev.Submit(cb)
}

// ClipScissor converts a layer clip into a scissor rectangle inside a
// width x height frame: the origin is clamped to the frame and the extent
// is clamped so the rectangle does not leave it.
func ClipScissor(clip scene.Rect, width, height uint32) gpucore.Region {
	x := min(toPixels(clip.X), width)
	y := min(toPixels(clip.Y), height)
	return gpucore.Region{
		X:      x,
		Y:      y,
		Width:  min(toPixels(clip.Width), width-x),
		Height: min(toPixels(clip.Height), height-y),
	}
}

func toPixels(v float32) uint32 {
	switch {
	case v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

// Close releases the drawables and the shared resources. The device stays
// open and is owned by the caller.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	for _, d := range r.drawables {
		d.Destroy()
	}
	r.drawables = nil
	r.res.Destroy()
	return nil
}

// IsNotReady reports whether err means the surface has not been resumed.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady) || errors.Is(err, surface.ErrNotReady)
}
