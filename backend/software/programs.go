package software

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"

	"github.com/gogpu/bedrock/shaders"
)

// drawContext is the input of a CPU program.
type drawContext struct {
	target    *image.RGBA
	clip      image.Rectangle
	constants shaders.Constants
	instances []byte

	// backdrop is the universal texture; atlas is the optional local texture.
	backdrop *image.RGBA
	atlas    *image.RGBA
}

// each calls fn for every encoded instance.
func (dc *drawContext) each(fn func(b []byte)) {
	for i := 0; i+shaders.InstanceSize <= len(dc.instances); i += shaders.InstanceSize {
		fn(dc.instances[i : i+shaders.InstanceSize])
	}
}

// bounds returns the pixels touched by a rectangle, clipped.
func (dc *drawContext) bounds(x, y, w, h float32) image.Rectangle {
	r := image.Rect(
		int(math32.Floor(x)), int(math32.Floor(y)),
		int(math32.Ceil(x+w)), int(math32.Ceil(y+h)),
	)
	return r.Intersect(dc.clip)
}

type program func(dc *drawContext) error

var programs = map[string]program{
	shaders.KindQuad:   drawQuads,
	shaders.KindGlyph:  drawGlyphs,
	shaders.KindSprite: drawSprites,
	shaders.KindPath:   drawTriangles,
}

func drawQuads(dc *drawContext) error {
	blurred := make(map[float32]*image.RGBA)
	dc.each(func(b []byte) {
		q := shaders.DecodeQuad(b)
		x, y, w, h := q.Position[0], q.Position[1], q.Size[0], q.Size[1]
		if w <= 0 || h <= 0 {
			return
		}
		var behind *image.RGBA
		if q.Blur > 0 && dc.backdrop != nil {
			if behind = blurred[q.Blur]; behind == nil {
				behind = blur.Gaussian(dc.backdrop, float64(q.Blur))
				blurred[q.Blur] = behind
			}
		}
		r := dc.bounds(x, y, w, h)
		for py := r.Min.Y; py < r.Max.Y; py++ {
			for px := r.Min.X; px < r.Max.X; px++ {
				cov := roundedRectCoverage(float32(px)+0.5-x, float32(py)+0.5-y, w, h, q.CornerRadius)
				if cov == 0 {
					continue
				}
				c := q.Color
				if behind != nil {
					br, bg, bb, _ := straight(behind, px, py)
					c = [4]float32{
						mix(br, c[0], c[3]),
						mix(bg, c[1], c[3]),
						mix(bb, c[2], c[3]),
						1,
					}
				}
				blend(dc.target, px, py, c[0], c[1], c[2], c[3]*cov)
			}
		}
	})
	return nil
}

// roundedRectCoverage returns the antialiased coverage of a pixel centred
// at (lx, ly) relative to the rectangle origin.
func roundedRectCoverage(lx, ly, w, h, radius float32) float32 {
	r := math32.Max(0, math32.Min(radius, math32.Min(w, h)*0.5))
	dx := math32.Abs(lx-w*0.5) - (w*0.5 - r)
	dy := math32.Abs(ly-h*0.5) - (h*0.5 - r)
	dist := math32.Hypot(math32.Max(dx, 0), math32.Max(dy, 0)) + math32.Min(math32.Max(dx, dy), 0) - r
	return clamp01(0.5 - dist)
}

func drawGlyphs(dc *drawContext) error {
	if dc.atlas == nil {
		return errMissingAtlas
	}
	dc.each(func(b []byte) {
		g := shaders.DecodeTextured(b)
		dc.sampleRect(g, func(px, py, tx, ty int) {
			cov := float32(dc.atlas.Pix[dc.atlas.PixOffset(tx, ty)+3]) / 255
			if cov > 0 {
				blend(dc.target, px, py, g.Color[0], g.Color[1], g.Color[2], g.Color[3]*cov)
			}
		})
	})
	return nil
}

func drawSprites(dc *drawContext) error {
	if dc.atlas == nil {
		return errMissingAtlas
	}
	dc.each(func(b []byte) {
		s := shaders.DecodeTextured(b)
		dc.sampleRect(s, func(px, py, tx, ty int) {
			// Atlas texels hold straight alpha.
			p := dc.atlas.Pix[dc.atlas.PixOffset(tx, ty):]
			a := float32(p[3]) / 255 * s.Color[3]
			if a > 0 {
				blend(dc.target, px, py,
					float32(p[0])/255*s.Color[0],
					float32(p[1])/255*s.Color[1],
					float32(p[2])/255*s.Color[2],
					a)
			}
		})
	})
	return nil
}

// sampleRect maps every covered pixel of a textured instance to its
// nearest atlas texel.
func (dc *drawContext) sampleRect(t shaders.TexturedInstance, fn func(px, py, tx, ty int)) {
	x, y, w, h := t.Position[0], t.Position[1], t.Size[0], t.Size[1]
	if w <= 0 || h <= 0 {
		return
	}
	ab := dc.atlas.Rect
	r := dc.bounds(x, y, w, h)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		v := t.UVPos[1] + (float32(py)+0.5-y)/h*t.UVSize[1]
		ty := clampInt(int(math32.Floor(v)), ab.Min.Y, ab.Max.Y-1)
		for px := r.Min.X; px < r.Max.X; px++ {
			u := t.UVPos[0] + (float32(px)+0.5-x)/w*t.UVSize[0]
			tx := clampInt(int(math32.Floor(u)), ab.Min.X, ab.Max.X-1)
			fn(px, py, tx, ty)
		}
	}
}

func drawTriangles(dc *drawContext) error {
	dc.each(func(b []byte) {
		t := shaders.DecodeTriangle(b)
		p0, p1, p2 := t.P0, t.P1, t.P2
		area := edge(p0, p1, p2)
		if area == 0 {
			return
		}
		if area < 0 {
			p1, p2 = p2, p1
		}
		minX := math32.Min(p0[0], math32.Min(p1[0], p2[0]))
		minY := math32.Min(p0[1], math32.Min(p1[1], p2[1]))
		maxX := math32.Max(p0[0], math32.Max(p1[0], p2[0]))
		maxY := math32.Max(p0[1], math32.Max(p1[1], p2[1]))
		r := dc.bounds(minX, minY, maxX-minX, maxY-minY)
		for py := r.Min.Y; py < r.Max.Y; py++ {
			for px := r.Min.X; px < r.Max.X; px++ {
				c := [2]float32{float32(px) + 0.5, float32(py) + 0.5}
				if inside(p1, p2, c) && inside(p2, p0, c) && inside(p0, p1, c) {
					blend(dc.target, px, py, t.Color[0], t.Color[1], t.Color[2], t.Color[3])
				}
			}
		}
	})
	return nil
}

// edge returns twice the signed area of (a, b, c).
func edge(a, b, c [2]float32) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// inside applies the top-left fill rule to the edge a->b, so pixels on an
// edge shared by two triangles are filled once.
func inside(a, b, c [2]float32) bool {
	e := edge(a, b, c)
	if e != 0 {
		return e > 0
	}
	dy := b[1] - a[1]
	return dy < 0 || (dy == 0 && b[0] > a[0])
}

// blend composites a straight-alpha color over a premultiplied pixel.
func blend(dst *image.RGBA, x, y int, r, g, b, a float32) {
	a = clamp01(a)
	if a == 0 {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	inv := 1 - a
	p[0] = unit8(r*a + float32(p[0])/255*inv)
	p[1] = unit8(g*a + float32(p[1])/255*inv)
	p[2] = unit8(b*a + float32(p[2])/255*inv)
	p[3] = unit8(a + float32(p[3])/255*inv)
}

// straight returns the unpremultiplied color of a pixel, clamped to the image.
func straight(img *image.RGBA, x, y int) (r, g, b, a float32) {
	x = clampInt(x, img.Rect.Min.X, img.Rect.Max.X-1)
	y = clampInt(y, img.Rect.Min.Y, img.Rect.Max.Y-1)
	p := img.Pix[img.PixOffset(x, y):]
	a = float32(p[3]) / 255
	if a == 0 {
		return 0, 0, 0, 0
	}
	return float32(p[0]) / 255 / a, float32(p[1]) / 255 / a, float32(p[2]) / 255 / a, a
}

func mix(a, b, t float32) float32 { return a + (b-a)*t }

func clamp01(v float32) float32 { return math32.Max(0, math32.Min(1, v)) }

func unit8(v float32) uint8 { return uint8(clamp01(v)*255 + 0.5) }

func clampInt(v, lo, hi int) int { return max(lo, min(v, hi)) }
