// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package path

// Triangle is three points in pixels.
type Triangle [3]Point

// Fill triangulates the polygon enclosed by points with ear clipping. The
// polygon is closed implicitly. Self-intersecting input still yields
// triangles covering its outline, though not always its exact interior.
func Fill(points []Point) []Triangle {
	poly := simplify(points)
	if len(poly) < 3 {
		return nil
	}
	if signedArea(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}

	out := make([]Triangle, 0, len(poly)-2)
	for len(poly) > 3 {
		ear := findEar(poly)
		if ear < 0 {
			// No ear in a degenerate polygon: cut the first vertex anyway.
			ear = 0
		}
		prev := (ear + len(poly) - 1) % len(poly)
		next := (ear + 1) % len(poly)
		out = append(out, Triangle{poly[prev], poly[ear], poly[next]})
		poly = append(poly[:ear], poly[ear+1:]...)
	}
	return append(out, Triangle{poly[0], poly[1], poly[2]})
}

// simplify drops repeated points, the closing point and collinear vertices.
func simplify(points []Point) []Point {
	poly := make([]Point, 0, len(points))
	for _, p := range points {
		if n := len(poly); n > 0 && poly[n-1].Distance(p) < 1e-4 {
			continue
		}
		poly = append(poly, p)
	}
	for len(poly) > 1 && poly[0].Distance(poly[len(poly)-1]) < 1e-4 {
		poly = poly[:len(poly)-1]
	}
	for changed := true; changed && len(poly) >= 3; {
		changed = false
		for i := 0; i < len(poly) && len(poly) >= 3; i++ {
			prev := poly[(i+len(poly)-1)%len(poly)]
			next := poly[(i+1)%len(poly)]
			if abs(poly[i].Sub(prev).Cross(next.Sub(poly[i]))) < 1e-6 {
				poly = append(poly[:i], poly[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return poly
}

// signedArea is positive for counter-clockwise polygons in a y-up frame.
func signedArea(poly []Point) float32 {
	var a float32
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += p.Cross(q)
	}
	return a / 2
}

func findEar(poly []Point) int {
	n := len(poly)
	for i := range n {
		a, b, c := poly[(i+n-1)%n], poly[i], poly[(i+1)%n]
		if b.Sub(a).Cross(c.Sub(b)) <= 0 {
			continue
		}
		ear := true
		for j := range n {
			if j == i || j == (i+n-1)%n || j == (i+1)%n {
				continue
			}
			if inTriangle(poly[j], a, b, c) {
				ear = false
				break
			}
		}
		if ear {
			return i
		}
	}
	return -1
}

func inTriangle(p, a, b, c Point) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
