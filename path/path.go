// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package path draws the vector paths of a layer.
//
// Each path is flattened to a polyline. A fill is triangulated by ear
// clipping; a stroke becomes two triangles per segment. Fills draw
// before strokes, and paths draw in layer order.
package path

import (
	ipath "github.com/gogpu/bedrock/internal/path"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

// Drawable is the path-kind drawable.
type Drawable struct {
	instances *render.InstanceBuffer
	pipeline  render.Pipeline
	scratch   []byte
}

// New allocates the instance buffer. It satisfies render.Factory.
func New(ctx *render.Context) (render.Drawable, error) {
	buf, err := render.NewInstanceBuffer(ctx, "Path", 0)
	if err != nil {
		return nil, err
	}
	return &Drawable{instances: buf}, nil
}

// Kind implements render.Drawable.
func (d *Drawable) Kind() render.Kind { return render.KindPath }

// SurfaceChanged implements render.Drawable.
func (d *Drawable) SurfaceChanged(ctx *render.Context) error {
	return d.pipeline.Rebuild(ctx, render.KindPath, d.instances.Layout())
}

// Draw implements render.Drawable.
func (d *Drawable) Draw(pass *render.Pass, layer *scene.Layer) error {
	if !d.pipeline.Ready() {
		return render.ErrNoPipeline
	}
	d.scratch = AppendInstances(d.scratch[:0], layer)
	n, err := d.instances.Upload(d.scratch)
	if err != nil {
		return err
	}
	pass.DrawInstances(d.pipeline.ID(), d.instances.BindGroup(), n)
	pass.Context.Log().Debug("path: draw", "triangles", n)
	return nil
}

// Destroy implements render.Drawable.
func (d *Drawable) Destroy() {
	d.pipeline.Destroy()
	d.instances.Destroy()
}

// Flatten returns the polyline of a path.
func Flatten(p scene.Path) []ipath.Point {
	elems := make([]ipath.Element, 0, len(p.Commands)+1)
	elems = append(elems, ipath.MoveTo{Point: point(p.Start)})
	for _, c := range p.Commands {
		switch c.Kind {
		case scene.CommandLineTo:
			elems = append(elems, ipath.LineTo{Point: point(c.To)})
		case scene.CommandQuadraticBezierTo:
			elems = append(elems, ipath.QuadTo{Control: point(c.Control1), Point: point(c.To)})
		case scene.CommandCubicBezierTo:
			elems = append(elems, ipath.CubicTo{Control1: point(c.Control1), Control2: point(c.Control2), Point: point(c.To)})
		}
	}
	return ipath.Flatten(elems)
}

func point(v scene.Vec2) ipath.Point { return ipath.Point{X: v.X, Y: v.Y} }

// AppendInstances appends one triangle instance per fill and stroke
// triangle of the layer paths to dst.
func AppendInstances(dst []byte, layer *scene.Layer) []byte {
	for _, p := range layer.Paths {
		if p.Fill == nil && p.Stroke == nil {
			continue
		}
		pts := Flatten(p)
		if p.Fill != nil {
			dst = appendTriangles(dst, ipath.Fill(pts), *p.Fill)
		}
		if p.Stroke != nil {
			dst = appendTriangles(dst, ipath.Stroke(pts, p.Stroke.Width), p.Stroke.Color)
		}
	}
	return dst
}

func appendTriangles(dst []byte, ts []ipath.Triangle, c scene.Color) []byte {
	color := c.Array()
	for _, t := range ts {
		dst = shaders.TriangleInstance{
			P0:    [2]float32{t[0].X, t[0].Y},
			P1:    [2]float32{t[1].X, t[1].Y},
			P2:    [2]float32{t[2].X, t[2].Y},
			Color: color,
		}.Append(dst)
	}
	return dst
}
