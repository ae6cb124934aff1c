package scene

import "fmt"

// Vec2 is a point or size in device pixels.
type Vec2 struct {
	X, Y float32
}

// V2 is shorthand for Vec2{X: x, Y: y}.
func V2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Color is a straight (non-premultiplied) RGBA color with components in 0..1.
type Color struct {
	R, G, B, A float32
}

// RGBA returns a Color from its components.
func RGBA(r, g, b, a float32) Color { return Color{R: r, G: g, B: b, A: a} }

// RGB returns an opaque Color.
func RGB(r, g, b float32) Color { return Color{R: r, G: g, B: b, A: 1} }

// Premultiplied returns the color with RGB multiplied by alpha.
func (c Color) Premultiplied() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Array returns the components as [r, g, b, a].
func (c Color) Array() [4]float32 { return [4]float32{c.R, c.G, c.B, c.A} }

// String returns the color as "rgba(r, g, b, a)".
func (c Color) String() string {
	return fmt.Sprintf("rgba(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

// Common colors.
var (
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Black       = Color{A: 1}
	Transparent = Color{}
)

// Rect is an axis-aligned rectangle: origin plus extent, in device pixels.
type Rect struct {
	X, Y, Width, Height float32
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float32) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// Origin returns the top-left corner.
func (r Rect) Origin() Vec2 { return Vec2{X: r.X, Y: r.Y} }

// Size returns the extent.
func (r Rect) Size() Vec2 { return Vec2{X: r.Width, Y: r.Height} }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }
