// Package software implements gpucore.Device on the CPU.
//
// Textures are *image.RGBA. Multisampled textures are stored single-sample,
// so resolving a pass is a copy. sRGB formats are treated as their linear
// counterparts and BGRA formats are stored in RGBA order.
//
// Render pipelines do not execute shader code: each pipeline is bound to a
// built-in CPU program selected by the kind in its vertex entry point
// ("quad_vertex", "glyph::vertex", ...). The programs read the same instance
// layouts as the WGSL program in package shaders.
//
// Window is an offscreen surface target. It records the last presented
// frame and can inject acquisition errors for tests:
//
//	dev := software.New()
//	win := software.NewWindow(800, 600)
//	win.FailNext(gpucore.ErrSurfaceOutdated)
//
// Every submission is logged in Stats.
package software
