// Package quad draws the rectangles of a layer, including the layer backdrop.
//
// Every batch starts with one synthetic backdrop instance covering the
// layer clip, or the whole surface when the layer has no clip. It carries
// the layer background color (opaque white when unset) and the layer blur
// radius, so a blurred layer samples everything composited before it.
package quad

import (
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

// Drawable is the quad-kind drawable.
type Drawable struct {
	instances *render.InstanceBuffer
	pipeline  render.Pipeline
	scratch   []byte
}

// New allocates the instance buffer. It satisfies render.Factory.
func New(ctx *render.Context) (render.Drawable, error) {
	buf, err := render.NewInstanceBuffer(ctx, "Quad", 0)
	if err != nil {
		return nil, err
	}
	return &Drawable{instances: buf}, nil
}

// Kind implements render.Drawable.
func (d *Drawable) Kind() render.Kind { return render.KindQuad }

// SurfaceChanged implements render.Drawable.
func (d *Drawable) SurfaceChanged(ctx *render.Context) error {
	return d.pipeline.Rebuild(ctx, render.KindQuad, d.instances.Layout())
}

// Draw implements render.Drawable.
func (d *Drawable) Draw(pass *render.Pass, layer *scene.Layer) error {
	if !d.pipeline.Ready() {
		return render.ErrNoPipeline
	}
	d.scratch = AppendInstances(d.scratch[:0], layer, pass.SurfaceSize())
	n, err := d.instances.Upload(d.scratch)
	if err != nil {
		return err
	}
	pass.DrawInstances(d.pipeline.ID(), d.instances.BindGroup(), n)
	pass.Context.Log().Debug("quad: draw", "instances", n)
	return nil
}

// Capacity returns the current instance capacity.
func (d *Drawable) Capacity() int { return d.instances.Capacity() }

// Destroy implements render.Drawable.
func (d *Drawable) Destroy() {
	d.pipeline.Destroy()
	d.instances.Destroy()
}

// Backdrop returns the synthetic backdrop instance of a layer.
func Backdrop(layer *scene.Layer, surface scene.Vec2) shaders.QuadInstance {
	pos, size := scene.Vec2{}, surface
	if layer.Clip != nil {
		pos, size = layer.Clip.Origin(), layer.Clip.Size()
	}
	return shaders.QuadInstance{
		Position: [2]float32{pos.X, pos.Y},
		Size:     [2]float32{size.X, size.Y},
		Color:    layer.BackgroundColor().Array(),
		Blur:     layer.BlurRadius,
	}
}

// Instance converts a layer quad.
func Instance(q scene.Quad) shaders.QuadInstance {
	return shaders.QuadInstance{
		Position:     [2]float32{q.Position.X, q.Position.Y},
		Size:         [2]float32{q.Size.X, q.Size.Y},
		Color:        q.Color.Array(),
		CornerRadius: q.CornerRadius,
		Blur:         q.Blur,
	}
}

// AppendInstances appends the encoded batch of a layer to dst: the
// backdrop, then the layer quads in order.
func AppendInstances(dst []byte, layer *scene.Layer, surface scene.Vec2) []byte {
	dst = Backdrop(layer, surface).Append(dst)
	for _, q := range layer.Quads {
		dst = Instance(q).Append(dst)
	}
	return dst
}
