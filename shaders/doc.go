// Package shaders holds the draw programs shared by every drawable kind.
//
// A Program is a single shader module exposing one vertex and one fragment
// entry point per content kind. The built-in program is WGSL embedded in the
// binary and compiled to SPIR-V with naga; hosts may instead Load a
// precompiled SPIR-V binary whose entry points follow the "<kind>::vertex"
// naming convention.
//
// All drawables share one instance layout of 48 bytes (three vec4<f32>) read
// from a storage buffer, and one 32-byte Constants block supplied as push
// constants:
//
//	kind    a                      b                        color
//	quad    x, y, width, height    radius, blur, 0, 0       r, g, b, a
//	glyph   x, y, width, height    u, v, uv width, height   r, g, b, a
//	sprite  x, y, width, height    u, v, uv width, height   r, g, b, a
//	path    p0.x, p0.y, p1.x, p1.y p2.x, p2.y, 0, 0         r, g, b, a
//
// Every instance is drawn as 6 vertices. Path triangles repeat p2 for the
// last three vertices, producing a degenerate second triangle.
package shaders
