// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package path

// Stroke expands each segment of a polyline into a quad of the given
// width, as two triangles. Joins and caps are not drawn.
func Stroke(points []Point, width float32) []Triangle {
	if width <= 0 || len(points) < 2 {
		return nil
	}
	out := make([]Triangle, 0, 2*(len(points)-1))
	half := width / 2
	for i := 1; i < len(points); i++ {
		p0, p1 := points[i-1], points[i]
		d := p1.Sub(p0)
		l := d.Length()
		if l < 1e-6 {
			continue
		}
		n := Point{X: -d.Y / l * half, Y: d.X / l * half}
		a, b := p0.Add(n), p1.Add(n)
		c, e := p1.Sub(n), p0.Sub(n)
		out = append(out, Triangle{a, b, c}, Triangle{a, c, e})
	}
	return out
}
