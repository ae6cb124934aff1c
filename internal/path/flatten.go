// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package path turns vector outlines into triangles.
package path

import "github.com/chewxy/math32"

// Point is a 2D point in pixels.
type Point struct {
	X, Y float32
}

// Tolerance is the maximum distance between a curve and its flattening.
const Tolerance = 0.1

// Element is one step of an outline.
type Element interface {
	isElement()
}

// MoveTo starts the outline at a point.
type MoveTo struct{ Point Point }

func (MoveTo) isElement() {}

// LineTo draws a line.
type LineTo struct{ Point Point }

func (LineTo) isElement() {}

// QuadTo draws a quadratic curve.
type QuadTo struct{ Control, Point Point }

func (QuadTo) isElement() {}

// CubicTo draws a cubic curve.
type CubicTo struct{ Control1, Control2, Point Point }

func (CubicTo) isElement() {}

// Flatten converts an outline into a polyline within Tolerance.
func Flatten(elements []Element) []Point {
	var points []Point
	var current Point

	for _, elem := range elements {
		switch e := elem.(type) {
		case MoveTo:
			current = e.Point
			points = append(points, current)
		case LineTo:
			current = e.Point
			points = append(points, current)
		case QuadTo:
			flattenQuadratic(current, e.Control, e.Point, Tolerance, &points)
			current = e.Point
		case CubicTo:
			flattenCubic(current, e.Control1, e.Control2, e.Point, Tolerance, &points)
			current = e.Point
		}
	}
	return points
}

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float32) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Mul returns p*s.
func (p Point) Mul(s float32) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Dot returns the dot product.
func (p Point) Dot(q Point) float32 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the cross product.
func (p Point) Cross(q Point) float32 { return p.X*q.Y - p.Y*q.X }

// Length returns the distance from the origin.
func (p Point) Length() float32 { return math32.Hypot(p.X, p.Y) }

// Distance returns the distance between p and q.
func (p Point) Distance(q Point) float32 { return p.Sub(q).Length() }

func flattenQuadratic(p0, p1, p2 Point, tolerance float32, points *[]Point) {
	if distanceToLine(p1, p0, p2) < tolerance {
		*points = append(*points, p2)
		return
	}
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)
	flattenQuadratic(p0, q0, q2, tolerance, points)
	flattenQuadratic(q2, q1, p2, tolerance, points)
}

func flattenCubic(p0, p1, p2, p3 Point, tolerance float32, points *[]Point) {
	d := math32.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if d < tolerance {
		*points = append(*points, p3)
		return
	}
	// de Casteljau split at t = 0.5.
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)
	flattenCubic(p0, q0, r0, s, tolerance, points)
	flattenCubic(s, r1, q2, p3, tolerance, points)
}

// distanceToLine returns the distance from p to the segment (a, b).
func distanceToLine(p, a, b Point) float32 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < 1e-12 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t < 0:
		return p.Distance(a)
	case t > 1:
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Mul(t)))
}
