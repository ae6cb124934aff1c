// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package path_test

import (
	"image/color"
	"testing"

	"github.com/gogpu/bedrock"
	"github.com/gogpu/bedrock/backend/software"
	"github.com/gogpu/bedrock/path"
	"github.com/gogpu/bedrock/quad"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

func square(p scene.Path) scene.Path {
	return p.LineTo(scene.V2(20, 0)).LineTo(scene.V2(20, 20)).LineTo(scene.V2(0, 20))
}

func TestAppendInstances(t *testing.T) {
	red := scene.RGB(1, 0, 0)
	tests := []struct {
		name string
		path scene.Path
		want int
	}{
		{"fill", square(scene.NewFill(red, scene.V2(0, 0))), 2},
		{"stroke", square(scene.NewStroke(2, red, scene.V2(0, 0))), 6},
		{"fill and stroke", square(scene.NewFill(red, scene.V2(0, 0)).WithStroke(1, scene.Black)), 8},
		{"invisible", square(scene.NewPath(scene.V2(0, 0))), 0},
		{"single point", scene.NewFill(red, scene.V2(5, 5)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := scene.NewLayer().WithPath(tt.path)
			got := path.AppendInstances(nil, l)
			if n := len(got) / shaders.InstanceSize; n != tt.want {
				t.Errorf("instances = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestFillColorsFirstThenStroke(t *testing.T) {
	l := scene.NewLayer().WithPath(square(scene.NewFill(scene.RGB(1, 0, 0), scene.V2(0, 0)).WithStroke(1, scene.Black)))
	b := path.AppendInstances(nil, l)
	first := shaders.DecodeTriangle(b)
	last := shaders.DecodeTriangle(b[len(b)-shaders.InstanceSize:])
	if first.Color != [4]float32{1, 0, 0, 1} || last.Color != [4]float32{0, 0, 0, 1} {
		t.Errorf("colors = %v then %v, want fill then stroke", first.Color, last.Color)
	}
}

func TestFlattenCurve(t *testing.T) {
	p := scene.NewFill(scene.Black, scene.V2(0, 0)).
		QuadraticBezierTo(scene.V2(50, 100), scene.V2(100, 0)).
		CubicBezierTo(scene.V2(100, -50), scene.V2(0, -50), scene.V2(0, 0))
	pts := path.Flatten(p)
	if len(pts) < 10 {
		t.Errorf("Flatten() = %d points, want curves subdivided", len(pts))
	}
}

func TestRenderFilledPath(t *testing.T) {
	dev := software.New()
	defer dev.Close()
	r, err := bedrock.New(dev, bedrock.WithDrawables(quad.New, path.New))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	win := software.NewWindow(40, 40)
	if err := r.HandleEvent(bedrock.Resumed{Target: win, Width: 40, Height: 40}); err != nil {
		t.Fatal(err)
	}

	s := scene.New().WithPath(square(scene.NewFill(scene.RGB(0, 1, 0), scene.V2(0, 0))))
	if err := r.Render(s); err != nil {
		t.Fatal(err)
	}
	img := win.Image()
	if got := img.RGBAAt(10, 10); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("inside pixel = %v, want green", got)
	}
	if got := img.RGBAAt(30, 30); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("outside pixel = %v, want white", got)
	}
}
