// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package path

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
)

func area(ts []Triangle) float32 {
	var a float32
	for _, t := range ts {
		a += abs(t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))) / 2
	}
	return a
}

func TestFlattenLines(t *testing.T) {
	got := Flatten([]Element{
		MoveTo{Point{0, 0}},
		LineTo{Point{10, 0}},
		LineTo{Point{10, 10}},
	})
	want := []Point{{0, 0}, {10, 0}, {10, 10}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenCurvesWithinTolerance(t *testing.T) {
	p0, c, p2 := Point{0, 0}, Point{50, 100}, Point{100, 0}
	pts := Flatten([]Element{MoveTo{p0}, QuadTo{c, p2}})
	if len(pts) < 8 {
		t.Fatalf("Flatten(quad) = %d points, want a subdivided curve", len(pts))
	}
	if pts[len(pts)-1] != p2 {
		t.Errorf("last point = %v, want %v", pts[len(pts)-1], p2)
	}
	// The curve peaks at y = 50 for t = 0.5.
	var peak float32
	for _, p := range pts {
		peak = math32.Max(peak, p.Y)
	}
	if math32.Abs(peak-50) > Tolerance {
		t.Errorf("peak = %v, want 50 within %v", peak, Tolerance)
	}

	cubic := Flatten([]Element{MoveTo{p0}, CubicTo{Point{0, 100}, Point{100, 100}, p2}})
	if len(cubic) < 8 || cubic[len(cubic)-1] != p2 {
		t.Errorf("Flatten(cubic) = %v", cubic)
	}
}

func TestFillConvex(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	ts := Fill(square)
	if len(ts) != 2 {
		t.Fatalf("Fill(square) = %d triangles, want 2", len(ts))
	}
	if a := area(ts); math32.Abs(a-100) > 1e-3 {
		t.Errorf("area = %v, want 100", a)
	}
}

func TestFillConcave(t *testing.T) {
	// An L shape of area 300, wound both ways.
	l := []Point{{0, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 20}, {0, 20}}
	for _, poly := range [][]Point{l, reversed(l)} {
		ts := Fill(poly)
		if len(ts) != 4 {
			t.Errorf("Fill(L) = %d triangles, want 4", len(ts))
		}
		if a := area(ts); math32.Abs(a-300) > 1e-3 {
			t.Errorf("area = %v, want 300", a)
		}
	}
}

func TestFillDegenerate(t *testing.T) {
	tests := [][]Point{
		nil,
		{{0, 0}, {1, 1}},
		{{0, 0}, {5, 5}, {10, 10}},
		{{1, 1}, {1, 1}, {1, 1}, {1, 1}},
	}
	for _, pts := range tests {
		if ts := Fill(pts); len(ts) != 0 {
			t.Errorf("Fill(%v) = %v, want none", pts, ts)
		}
	}
}

func TestStroke(t *testing.T) {
	ts := Stroke([]Point{{0, 0}, {10, 0}, {10, 0}, {10, 10}}, 2)
	if len(ts) != 4 {
		t.Fatalf("Stroke() = %d triangles, want 2 per non-empty segment", len(ts))
	}
	if a := area(ts); math32.Abs(a-40) > 1e-3 {
		t.Errorf("area = %v, want 40", a)
	}
	if got := Stroke([]Point{{0, 0}, {1, 0}}, 0); got != nil {
		t.Errorf("Stroke(width 0) = %v, want nil", got)
	}
}

func reversed(ps []Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[len(ps)-1-i] = p
	}
	return out
}
